// Package detect implements the Format Detector (spec.md §4.2): given a
// filename hint and the first chunk of a stream, it decides format,
// delimiter, and header presence before the session wires up a Record
// Extractor.
package detect

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"dataprofile/internal/config"
)

// Result is the detector's output, consumed by the session controller to
// select and configure a Record Extractor.
type Result struct {
	Format    config.Format
	Delimiter byte
	HasHeader bool
}

var candidateDelimiters = []byte{',', '\t', ';', '|'}

// Detect inspects up to the first 64 KiB of a stream (sample) plus a
// filename hint and returns the detected format, delimiter and header
// presence, in the priority order spec.md §4.2 specifies: filename
// extension, then magic bytes, then text heuristics.
func Detect(filename string, sample []byte, headerMode config.HeaderMode) Result {
	format := detectByExtension(filename)
	if format == "" {
		format = detectByMagicBytes(sample)
	}
	if format == "" {
		format = detectTextShape(sample)
	}

	res := Result{Format: format}
	switch format {
	case config.FormatCSV, config.FormatTSV:
		res.Delimiter = detectDelimiter(sample)
		if format == config.FormatTSV {
			res.Delimiter = '\t'
		}
		res.HasHeader = resolveHeader(headerMode, sample, res.Delimiter)
	case config.FormatJSONArray, config.FormatJSONLines:
		res.HasHeader = true // object keys are the header; no detection needed
	default:
		res.HasHeader = headerMode != config.HeaderNo
	}
	return res
}

func detectByExtension(filename string) config.Format {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return config.FormatCSV
	case strings.HasSuffix(lower, ".tsv"):
		return config.FormatTSV
	case strings.HasSuffix(lower, ".parquet"):
		return config.FormatParquet
	case strings.HasSuffix(lower, ".xlsx"):
		return config.FormatXLSX
	case strings.HasSuffix(lower, ".xls"):
		return config.FormatXLSLegacy
	case strings.HasSuffix(lower, ".avro"):
		return config.FormatAvro
	case strings.HasSuffix(lower, ".jsonl") || strings.HasSuffix(lower, ".ndjson"):
		return config.FormatJSONLines
	case strings.HasSuffix(lower, ".json"):
		return config.FormatJSONArray
	}
	return ""
}

// detectByMagicBytes checks the signatures spec.md §4.2 names explicitly,
// falling back to gabriel-vasile/mimetype's broader sniffing table for
// anything it doesn't special-case (notably distinguishing legacy .xls
// CFB containers from other OLE2 documents).
func detectByMagicBytes(sample []byte) config.Format {
	if len(sample) >= 4 && string(sample[len(sample)-4:]) == "PAR1" {
		return config.FormatParquet
	}
	if len(sample) >= 4 && string(sample[:4]) == "PAR1" {
		return config.FormatParquet
	}
	if len(sample) >= 4 && string(sample[:4]) == "PK\x03\x04" {
		return config.FormatXLSX
	}
	if len(sample) >= 4 && string(sample[:4]) == "Obj\x01" {
		return config.FormatAvro
	}

	mtype := mimetype.Detect(sample)
	for m := mtype; m != nil; m = m.Parent() {
		switch m.String() {
		case "application/vnd.ms-excel", "application/x-ole-storage":
			return config.FormatXLSLegacy
		case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
			return config.FormatXLSX
		}
	}
	return ""
}

// detectTextShape handles step (4) of spec.md §4.2: JSON array vs. JSON
// Lines vs. delimited text, based on the first non-whitespace byte and a
// per-line parse check.
func detectTextShape(sample []byte) config.Format {
	trimmed := strings.TrimLeft(string(sample), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		return config.FormatJSONArray
	}
	if looksLikeJSONLines(trimmed) {
		return config.FormatJSONLines
	}
	return config.FormatCSV
}

func looksLikeJSONLines(sample string) bool {
	lines := strings.Split(sample, "\n")
	seen := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			return false
		}
		seen++
		if seen >= 3 {
			break
		}
	}
	return seen > 0
}

// detectDelimiter counts occurrences of each candidate delimiter over the
// first ~20 lines and picks the one with the most consistent per-line
// count, tie-broken by the highest average count >= 2, tie-broken again
// by candidateDelimiters' declared order (spec.md §4.2 step 3).
func detectDelimiter(sample []byte) byte {
	lines := strings.SplitN(string(sample), "\n", 21)
	if len(lines) > 20 {
		lines = lines[:20]
	}

	type stats struct {
		variance float64
		average  float64
	}
	best := byte(',')
	var bestStats stats
	haveBest := false

	for _, d := range candidateDelimiters {
		counts := make([]float64, 0, len(lines))
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			counts = append(counts, float64(strings.Count(line, string(d))))
		}
		if len(counts) == 0 {
			continue
		}
		sum := 0.0
		for _, c := range counts {
			sum += c
		}
		avg := sum / float64(len(counts))
		if avg < 2 {
			continue
		}
		var variance float64
		for _, c := range counts {
			diff := c - avg
			variance += diff * diff
		}
		variance /= float64(len(counts))

		s := stats{variance: variance, average: avg}
		if !haveBest || s.variance < bestStats.variance ||
			(s.variance == bestStats.variance && s.average > bestStats.average) {
			best = d
			bestStats = s
			haveBest = true
		}
	}
	return best
}

// resolveHeader implements spec.md §4.2's header-detection rule when the
// caller leaves has_header on auto: row 0 is a header if every cell in it
// is a non-empty string and at least one subsequent row has a
// differently-typed value in the same position.
func resolveHeader(mode config.HeaderMode, sample []byte, delimiter byte) bool {
	switch mode {
	case config.HeaderYes:
		return true
	case config.HeaderNo:
		return false
	}

	lines := strings.SplitN(string(sample), "\n", 4)
	if len(lines) < 2 {
		return false
	}
	header := splitRow(lines[0], delimiter)
	for _, cell := range header {
		if strings.TrimSpace(cell) == "" || looksNumericOrBool(cell) {
			return false
		}
	}
	for _, line := range lines[1:] {
		row := splitRow(line, delimiter)
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			if looksNumericOrBool(cell) {
				return true
			}
		}
	}
	return false
}

func splitRow(line string, delimiter byte) []string {
	return strings.Split(strings.TrimRight(line, "\r"), string(delimiter))
}

func looksNumericOrBool(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	if strings.EqualFold(cell, "true") || strings.EqualFold(cell, "false") {
		return true
	}
	for _, r := range cell {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return false
		}
	}
	return true
}
