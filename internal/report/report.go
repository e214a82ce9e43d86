// Package report renders a frozen domain/profile.Result into the export
// formats the CLI/HTTP hosts surface (spec.md §6 "Serialization surface").
// The JSON report is canonical: every other format is derived deterministically
// from the same rounded data rather than from a second code path.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"

	"dataprofile/domain/profile"
)

// Format names one of the CLI's -f/--format choices.
type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

const roundDecimals = 6

// Meta carries the non-column-scoped header of the JSON report.
type Meta struct {
	TotalRows  uint64 `json:"total_rows"`
	ComputedAt string `json:"computed_at"`
}

// Summary carries the aggregate diagnostics of the JSON report.
type Summary struct {
	ColumnCount   int    `json:"column_count"`
	MalformedRows uint64 `json:"malformed_rows"`
	EncodingDrops uint64 `json:"encoding_drops"`
}

// JSONReport is the canonical `{meta, summary, columns[]}` shape (spec.md
// §6). Every column is rounded to 6 decimal places before encoding.
type JSONReport struct {
	Meta    Meta                    `json:"meta"`
	Summary Summary                 `json:"summary"`
	Columns []profile.ColumnProfile `json:"columns"`
}

// BuildJSONReport converts a profile result into the canonical report shape,
// rounding every float field to 6 decimal places (spec.md §6: "must
// round-trip ... except for the 6-decimal rounding").
func BuildJSONReport(result profile.Result) JSONReport {
	columns := make([]profile.ColumnProfile, len(result.ColumnProfiles))
	for i, c := range result.ColumnProfiles {
		columns[i] = roundColumn(c)
	}
	return JSONReport{
		Meta: Meta{
			TotalRows:  result.TotalRows,
			ComputedAt: result.ComputedAt.Time().Format("2006-01-02T15:04:05.000Z07:00"),
		},
		Summary: Summary{
			ColumnCount:   len(columns),
			MalformedRows: result.Diagnostics.MalformedRows,
			EncodingDrops: result.Diagnostics.EncodingDrops,
		},
		Columns: columns,
	}
}

func round6(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	pow := math.Pow(10, roundDecimals)
	return math.Round(f*pow) / pow
}

func roundColumn(c profile.ColumnProfile) profile.ColumnProfile {
	if c.NumericStats != nil {
		ns := *c.NumericStats
		ns.Min, ns.Max, ns.Sum = round6(ns.Min), round6(ns.Max), round6(ns.Sum)
		ns.Mean, ns.Variance, ns.StdDev = round6(ns.Mean), round6(ns.Variance), round6(ns.StdDev)
		ns.Skewness, ns.Kurtosis = round6(ns.Skewness), round6(ns.Kurtosis)
		ns.Median, ns.P25, ns.P75, ns.P90, ns.P95, ns.P99 =
			round6(ns.Median), round6(ns.P25), round6(ns.P75), round6(ns.P90), round6(ns.P95), round6(ns.P99)
		c.NumericStats = &ns
	}
	if c.Histogram != nil {
		h := *c.Histogram
		bins := make([]profile.HistogramBin, len(h.Bins))
		for i, b := range h.Bins {
			bins[i] = profile.HistogramBin{Start: round6(b.Start), End: round6(b.End), Count: b.Count}
		}
		h.Bins = bins
		h.Min, h.Max, h.BinWidth = round6(h.Min), round6(h.Max), round6(h.BinWidth)
		c.Histogram = &h
	}
	if c.CategoricalStats != nil {
		cs := *c.CategoricalStats
		values := make([]profile.ValueCount, len(cs.TopValues))
		for i, v := range cs.TopValues {
			values[i] = profile.ValueCount{Value: v.Value, Count: v.Count, Percentage: round6(v.Percentage)}
		}
		cs.TopValues = values
		c.CategoricalStats = &cs
	}
	return c
}

// Render produces the requested export format's bytes from a profile
// result. HTML and Markdown are both derived from the same column table;
// HTML additionally passes that table through gomarkdown so the CLI's -f
// html output needs no separate template.
func Render(result profile.Result, format Format) ([]byte, error) {
	rep := BuildJSONReport(result)
	switch format {
	case "", FormatJSON:
		return json.MarshalIndent(rep, "", "  ")
	case FormatMarkdown:
		return []byte(buildMarkdown(rep)), nil
	case FormatHTML:
		body := markdown.ToHTML([]byte(buildMarkdown(rep)), nil, nil)
		return []byte(wrapHTML(rep, body)), nil
	default:
		return nil, fmt.Errorf("report: unsupported format %q", format)
	}
}

func buildMarkdown(rep JSONReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Data Profile Report\n\n")
	fmt.Fprintf(&b, "- Total rows: %d\n", rep.Meta.TotalRows)
	fmt.Fprintf(&b, "- Computed at: %s\n", rep.Meta.ComputedAt)
	fmt.Fprintf(&b, "- Columns: %d\n", rep.Summary.ColumnCount)
	fmt.Fprintf(&b, "- Malformed rows: %d\n", rep.Summary.MalformedRows)
	fmt.Fprintf(&b, "- Encoding drops: %d\n\n", rep.Summary.EncodingDrops)

	b.WriteString("| Column | Type | Count | Missing | Distinct | Mean | Std Dev |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, c := range rep.Columns {
		mean, std := "-", "-"
		if c.NumericStats != nil {
			mean = fmt.Sprintf("%v", c.NumericStats.Mean)
			std = fmt.Sprintf("%v", c.NumericStats.StdDev)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %s | %s |\n",
			c.Name, c.BaseStats.InferredType, c.BaseStats.Count, c.BaseStats.Missing,
			c.BaseStats.DistinctEstimate, mean, std)
	}

	notes := collectNotes(rep.Columns)
	if len(notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func collectNotes(columns []profile.ColumnProfile) []string {
	var notes []string
	for _, c := range columns {
		for _, n := range c.Notes {
			notes = append(notes, fmt.Sprintf("%s: %s", c.Name, n))
		}
	}
	sort.Strings(notes)
	return notes
}

func wrapHTML(rep JSONReport, body []byte) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Data Profile Report</title></head>
<body>
%s
</body></html>
`, body)
}
