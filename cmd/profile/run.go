package main

import (
	"fmt"
	"io"
	"os"

	"dataprofile/domain/core"
	"dataprofile/domain/profile"
	"dataprofile/internal/config"
	"dataprofile/internal/report"
	"dataprofile/internal/session"
)

const chunkSize = 256 * 1024

// runProfile drives one session end to end: init, chunked process_chunk,
// finalize, report render, quality-gate check (spec.md §4.9, §6).
func runProfile(path, outputPath, outputFormat string, failOnMissing, tolerance float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return exitError, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sess, err := session.New(path, config.DefaultSessionConfig())
	if err != nil {
		return exitError, fmt.Errorf("create session: %w", err)
	}

	buf := make([]byte, chunkSize)
	for {
		n, readErr := f.Read(buf)
		atEOF := readErr == io.EOF
		if readErr != nil && readErr != io.EOF {
			return exitError, fmt.Errorf("read %s: %w", path, readErr)
		}
		if n > 0 || atEOF {
			if _, err := sess.ProcessChunk(buf[:n], atEOF); err != nil && core.IsFatal(err) {
				return exitError, fmt.Errorf("process chunk: %w", err)
			}
		}
		if atEOF {
			break
		}
	}

	result, err := sess.Finalize()
	if err != nil {
		return exitError, fmt.Errorf("finalize: %w", err)
	}

	out, err := report.Render(result, report.Format(outputFormat))
	if err != nil {
		return exitError, err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0o644); err != nil {
			return exitError, fmt.Errorf("write %s: %w", outputPath, err)
		}
	} else {
		fmt.Println(string(out))
	}

	if failsQualityGate(result, failOnMissing, tolerance) {
		return exitQualityFailed, nil
	}
	return exitPass, nil
}

// failsQualityGate reports whether any column's missing percent exceeds
// failOnMissing, or any column's outlier rate exceeds tolerance (spec.md §6
// names both flags but leaves their pass/fail predicate to the CLI
// collaborator; this is the decision recorded in DESIGN.md).
func failsQualityGate(result profile.Result, failOnMissing, tolerance float64) bool {
	for _, c := range result.ColumnProfiles {
		total := c.BaseStats.Count + c.BaseStats.Missing
		if total > 0 {
			missingPct := float64(c.BaseStats.Missing) / float64(total) * 100
			if missingPct > failOnMissing {
				return true
			}
		}
		if outlier, ok := c.AnomalyIndices[profile.AnomalyOutlier]; ok && c.BaseStats.Count > 0 {
			outlierPct := float64(outlier.TotalCount) / float64(c.BaseStats.Count) * 100
			if outlierPct > tolerance {
				return true
			}
		}
	}
	return false
}
