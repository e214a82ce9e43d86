// Package compare implements Comparison & Aggregation (spec.md §4.8):
// pairwise column diffs, N-way deltas, trend classification, pooled
// merges, and schema-compatibility checks over two or more frozen profile
// results. NWayDelta fans out one goroutine per candidate via errgroup
// since each candidate's deltas against the baseline are independent.
package compare

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"dataprofile/domain/profile"
)

const relativeEpsilon = 1e-4

// DiffStatus classifies one column across a baseline/candidate pair.
type DiffStatus string

const (
	Unchanged DiffStatus = "unchanged"
	Added     DiffStatus = "added"
	Removed   DiffStatus = "removed"
	Modified  DiffStatus = "modified"
)

// ColumnDiff is one entry of a pairwise diff.
type ColumnDiff struct {
	Name   string     `json:"name"`
	Status DiffStatus `json:"status"`
}

// PairwiseDiff computes the baseline-vs-candidate column diff (spec.md
// §4.8). Output order is removed, then added, then modified, then
// unchanged; stable by name within each group.
func PairwiseDiff(baseline, candidate profile.Result) []ColumnDiff {
	baseCols := indexByName(baseline)
	candCols := indexByName(candidate)

	names := unionNames(baseCols, candCols)
	sort.Strings(names)

	var removed, added, modified, unchanged []ColumnDiff
	for _, name := range names {
		b, inBase := baseCols[name]
		c, inCand := candCols[name]
		switch {
		case inBase && !inCand:
			removed = append(removed, ColumnDiff{Name: name, Status: Removed})
		case !inBase && inCand:
			added = append(added, ColumnDiff{Name: name, Status: Added})
		case columnsDiffer(b, c):
			modified = append(modified, ColumnDiff{Name: name, Status: Modified})
		default:
			unchanged = append(unchanged, ColumnDiff{Name: name, Status: Unchanged})
		}
	}

	out := make([]ColumnDiff, 0, len(names))
	out = append(out, removed...)
	out = append(out, added...)
	out = append(out, modified...)
	out = append(out, unchanged...)
	return out
}

// columnsDiffer reports whether any of {inferred_type, mean, std_dev,
// missing%, distinct_estimate} differ beyond spec.md §4.8's epsilons
// (absolute 0 for type, relative 1e-4 for numeric fields).
func columnsDiffer(a, b profile.ColumnProfile) bool {
	if a.BaseStats.InferredType != b.BaseStats.InferredType {
		return true
	}
	if relativeDiffers(float64(a.BaseStats.DistinctEstimate), float64(b.BaseStats.DistinctEstimate)) {
		return true
	}
	if relativeDiffers(missingPercent(a), missingPercent(b)) {
		return true
	}
	aMean, aStd, aOK := numericMoments(a)
	bMean, bStd, bOK := numericMoments(b)
	if aOK != bOK {
		return true
	}
	if aOK && (relativeDiffers(aMean, bMean) || relativeDiffers(aStd, bStd)) {
		return true
	}
	return false
}

func missingPercent(c profile.ColumnProfile) float64 {
	total := c.BaseStats.Count + c.BaseStats.Missing
	if total == 0 {
		return 0
	}
	return float64(c.BaseStats.Missing) / float64(total) * 100
}

func numericMoments(c profile.ColumnProfile) (mean, std float64, ok bool) {
	if c.NumericStats == nil {
		return 0, 0, false
	}
	return c.NumericStats.Mean, c.NumericStats.StdDev, true
}

func relativeDiffers(a, b float64) bool {
	if a == b {
		return false
	}
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return false
	}
	return math.Abs(a-b)/denom > relativeEpsilon
}

// Direction classifies an N-way delta's movement relative to a metric's
// polarity (spec.md §4.8 N-way delta).
type Direction string

const (
	Improved Direction = "improved"
	Degraded Direction = "degraded"
	SameDir  Direction = "unchanged"
	NotApplicable Direction = "na"
)

// MetricDelta is one (column, metric) comparison between a baseline and a
// single candidate.
type MetricDelta struct {
	Column        string    `json:"column"`
	Metric        string    `json:"metric"`
	Baseline      float64   `json:"baseline"`
	Candidate     float64   `json:"candidate"`
	Delta         float64   `json:"delta"`
	PercentChange *float64  `json:"percent_change"`
	Direction     Direction `json:"direction"`
}

// lowerIsBetter names the metrics whose polarity is inverted (spec.md
// §4.8: "lower-is-better for null-rate and std_dev; higher-is-better
// otherwise").
var lowerIsBetter = map[string]bool{
	"missing_percent": true,
	"std_dev":         true,
}

const deltaStableThreshold = 0.01

// NWayDelta computes, per column and per metric, the delta/percent_change/
// direction of each candidate relative to baseline (spec.md §4.8). Work
// fans out concurrently per candidate, since each candidate's metric set is
// derived independently from the frozen baseline and that candidate.
func NWayDelta(baseline profile.Result, candidates []profile.Result) ([][]MetricDelta, error) {
	baseCols := indexByName(baseline)

	results := make([][]MetricDelta, len(candidates))
	g, _ := errgroup.WithContext(context.Background())
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			candCols := indexByName(cand)
			var deltas []MetricDelta
			for name, b := range baseCols {
				c, ok := candCols[name]
				if !ok {
					continue
				}
				deltas = append(deltas, metricDeltas(name, b, c)...)
			}
			sort.Slice(deltas, func(i, j int) bool {
				if deltas[i].Column != deltas[j].Column {
					return deltas[i].Column < deltas[j].Column
				}
				return deltas[i].Metric < deltas[j].Metric
			})
			results[i] = deltas
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func metricDeltas(column string, base, cand profile.ColumnProfile) []MetricDelta {
	var out []MetricDelta
	out = append(out, buildDelta(column, "missing_percent", missingPercent(base), missingPercent(cand)))
	out = append(out, buildDelta(column, "distinct_estimate", float64(base.BaseStats.DistinctEstimate), float64(cand.BaseStats.DistinctEstimate)))

	if base.NumericStats != nil && cand.NumericStats != nil {
		out = append(out, buildDelta(column, "mean", base.NumericStats.Mean, cand.NumericStats.Mean))
		out = append(out, buildDelta(column, "std_dev", base.NumericStats.StdDev, cand.NumericStats.StdDev))
	}
	return out
}

func buildDelta(column, metric string, a, b float64) MetricDelta {
	delta := b - a
	var pct *float64
	if a != 0 {
		p := delta / math.Abs(a) * 100
		pct = &p
	}

	direction := NotApplicable
	relative := 0.0
	if a != 0 {
		relative = delta / math.Abs(a)
	} else if delta != 0 {
		relative = 1 // treat baseline-zero, candidate-nonzero as a full-magnitude change
	}

	switch {
	case math.Abs(relative) < deltaStableThreshold:
		direction = SameDir
	case lowerIsBetter[metric]:
		if relative < 0 {
			direction = Improved
		} else {
			direction = Degraded
		}
	default:
		if relative > 0 {
			direction = Improved
		} else {
			direction = Degraded
		}
	}

	return MetricDelta{
		Column: column, Metric: metric,
		Baseline: a, Candidate: b, Delta: delta,
		PercentChange: pct, Direction: direction,
	}
}

// Trend classifies a (column, metric) series across K candidates relative
// to the baseline (spec.md §4.8 Trend classification).
type Trend string

const (
	TrendStable    Trend = "stable"
	TrendVolatile  Trend = "volatile"
	TrendImproving Trend = "improving"
	TrendDegrading Trend = "degrading"
)

// ClassifyTrend derives the trend for one (column, metric) from its
// per-candidate relative changes (signed, against the baseline).
func ClassifyTrend(metric string, relativeChanges []float64) Trend {
	if len(relativeChanges) == 0 {
		return TrendStable
	}

	significant := 0
	positive := 0
	negative := 0
	sum := 0.0
	for _, r := range relativeChanges {
		sum += r
		if math.Abs(r) >= deltaStableThreshold {
			significant++
			if r > 0 {
				positive++
			} else {
				negative++
			}
		}
	}
	if significant == 0 {
		return TrendStable
	}

	lesser := positive
	if negative < lesser {
		lesser = negative
	}
	if float64(lesser) >= 0.5*float64(positive+negative) {
		return TrendVolatile
	}

	meanRelative := sum / float64(len(relativeChanges))
	improves := meanRelative > 0
	if lowerIsBetter[metric] {
		improves = meanRelative < 0
	}
	if improves {
		return TrendImproving
	}
	return TrendDegrading
}

// SchemaDiffKind classifies one schema-incompatibility cause.
type SchemaDiffKind string

const (
	SchemaAdded       SchemaDiffKind = "added"
	SchemaRemoved     SchemaDiffKind = "removed"
	SchemaTypeChanged SchemaDiffKind = "type-changed"
)

// SchemaDiff is one incompatibility entry.
type SchemaDiff struct {
	Column string         `json:"column"`
	Kind   SchemaDiffKind `json:"kind"`
}

// SchemaCompatible reports whether two profiles share the same column set
// and inferred types, and the incompatibilities if not (spec.md §4.8
// Schema validation).
func SchemaCompatible(a, b profile.Result) (bool, []SchemaDiff) {
	aCols := indexByName(a)
	bCols := indexByName(b)
	names := unionNames(aCols, bCols)
	sort.Strings(names)

	var diffs []SchemaDiff
	for _, name := range names {
		ca, inA := aCols[name]
		cb, inB := bCols[name]
		switch {
		case inA && !inB:
			diffs = append(diffs, SchemaDiff{Column: name, Kind: SchemaRemoved})
		case !inA && inB:
			diffs = append(diffs, SchemaDiff{Column: name, Kind: SchemaAdded})
		case ca.BaseStats.InferredType != cb.BaseStats.InferredType:
			diffs = append(diffs, SchemaDiff{Column: name, Kind: SchemaTypeChanged})
		}
	}
	return len(diffs) == 0, diffs
}

// PooledStats is the merged numeric summary for one column name across K
// profiles (spec.md §4.8 Pooled merge).
type PooledStats struct {
	Column           string  `json:"column"`
	CountTotal       uint64  `json:"count_total"`
	MeanPooled       float64 `json:"mean_pooled"`
	VariancePooled   float64 `json:"variance_pooled"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	DistinctEstimate uint64  `json:"distinct_estimate"`
}

// PooledMerge combines same-named numeric columns across profiles using
// the parallel-variance pooling formula. A profile whose column has no
// numeric_stats contributes nothing to that column's pool; a column with
// numeric_stats in no profile is omitted.
func PooledMerge(results []profile.Result) []PooledStats {
	type entry struct {
		count    uint64
		mean     float64
		variance float64
		min, max float64
		distinct uint64
	}
	entriesByName := make(map[string][]entry)
	var order []string

	for _, res := range results {
		for _, col := range res.ColumnProfiles {
			if col.NumericStats == nil {
				continue
			}
			if _, ok := entriesByName[col.Name]; !ok {
				order = append(order, col.Name)
			}
			entriesByName[col.Name] = append(entriesByName[col.Name], entry{
				count: col.NumericStats.Count, mean: col.NumericStats.Mean,
				variance: col.NumericStats.Variance,
				min: col.NumericStats.Min, max: col.NumericStats.Max,
				distinct: col.BaseStats.DistinctEstimate,
			})
		}
	}

	sort.Strings(order)
	out := make([]PooledStats, 0, len(order))
	for _, name := range order {
		entries := entriesByName[name]

		var countTotal, distinctSum uint64
		weightedMeanSum := 0.0
		min, max := math.Inf(1), math.Inf(-1)
		for _, e := range entries {
			countTotal += e.count
			weightedMeanSum += float64(e.count) * e.mean
			distinctSum += e.distinct
			if e.min < min {
				min = e.min
			}
			if e.max > max {
				max = e.max
			}
		}
		if countTotal == 0 {
			continue
		}
		meanPooled := weightedMeanSum / float64(countTotal)

		// spec.md E6: pooled variance = (sum of n_i*var_i + n_i*(mean_i -
		// mean_pooled)^2) / count_total -- weighted by n_i, not n_i-1, and
		// normalized by the total count rather than count-1.
		varianceSum := 0.0
		for _, e := range entries {
			diff := e.mean - meanPooled
			varianceSum += float64(e.count)*e.variance + float64(e.count)*diff*diff
		}
		variancePooled := varianceSum / float64(countTotal)

		distinctEstimate := distinctSum
		if countTotal < distinctEstimate {
			distinctEstimate = countTotal
		}

		out = append(out, PooledStats{
			Column: name, CountTotal: countTotal,
			MeanPooled: meanPooled, VariancePooled: variancePooled,
			Min: min, Max: max, DistinctEstimate: distinctEstimate,
		})
	}
	return out
}

func indexByName(r profile.Result) map[string]profile.ColumnProfile {
	m := make(map[string]profile.ColumnProfile, len(r.ColumnProfiles))
	for _, c := range r.ColumnProfiles {
		m[c.Name] = c
	}
	return m
}

func unionNames(a, b map[string]profile.ColumnProfile) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var names []string
	for name := range a {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range b {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
