package stats

import (
	"math"
	"strconv"

	"dataprofile/domain/values"
)

// ColumnAccumulator bundles the full estimator set updated once per
// non-null value of a single column (spec.md §4.5). It holds no reference
// back to the session; anomaly hits are reported to the caller-owned
// anomaly index via row index only.
type ColumnAccumulator struct {
	Name string

	count   uint64
	missing uint64

	distinct *HyperLogLog
	moments  *Moments
	digest   *TDigest
	topK     *TopK
	reservoir *Reservoir
	lengths  *LengthBounds
	pii      *PIIDetector
	outliers *OutlierIndex

	nonFiniteDropped uint64
}

// NewColumnAccumulator allocates a fresh bundle for one column.
func NewColumnAccumulator(name string, hllPrecision uint8, tdigestCompression float64) *ColumnAccumulator {
	return &ColumnAccumulator{
		Name:      name,
		distinct:  NewHyperLogLog(hllPrecision),
		moments:   NewMoments(),
		digest:    NewTDigest(tdigestCompression),
		topK:      NewTopK(topKSize),
		reservoir: NewReservoir(reservoirSizeDefault),
		lengths:   NewLengthBounds(),
		pii:       NewPIIDetector(),
		outliers:  NewOutlierIndex(),
	}
}

// ObserveMissing records a missing/null occurrence.
func (a *ColumnAccumulator) ObserveMissing() {
	a.missing++
}

// ObserveNonFinite records a NaN/+-Inf value, treated as missing
// (spec.md §4.5 numeric semantics).
func (a *ColumnAccumulator) ObserveNonFinite() {
	a.missing++
	a.nonFiniteDropped++
}

// Observe folds one non-null value into every relevant estimator. rowIndex
// is 1-based per spec.md's anomaly_indices convention.
func (a *ColumnAccumulator) Observe(rowIndex uint64, v values.RawField) {
	a.count++

	canon := canonicalForm(v)
	a.distinct.Add(canon)

	f, ok := v.Float64Value()
	if !ok {
		// Text formats (CSV/TSV) deliver numbers as strings; a string that
		// parses as a finite number feeds the numeric estimators too.
		if s, isStr := v.StringValue(); isStr {
			if parsed, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
				f, ok = parsed, true
			}
		}
	}
	if ok {
		a.moments.Update(f)
		a.digest.Add(f)
		a.outliers.Check(rowIndex, f, a.moments)
	}

	if s, ok := v.StringValue(); ok {
		a.topK.Add(s)
		a.reservoir.Add(s)
		a.lengths.Update(s)
	}
}

// CheckPII evaluates a string value for PII patterns and returns the
// matched pattern name, or "" if none matched.
func (a *ColumnAccumulator) CheckPII(s string) string {
	return a.pii.Check(s)
}

// Count returns the non-missing value count.
func (a *ColumnAccumulator) Count() uint64 { return a.count }

// Missing returns the missing-value count.
func (a *ColumnAccumulator) Missing() uint64 { return a.missing }

// DistinctEstimate returns the HyperLogLog cardinality estimate.
func (a *ColumnAccumulator) DistinctEstimate() uint64 { return a.distinct.Estimate() }

// Moments exposes the Welford bundle for finalize-time derivation.
func (a *ColumnAccumulator) Moments() *Moments { return a.moments }

// Digest exposes the t-digest for quantile/histogram derivation.
func (a *ColumnAccumulator) Digest() *TDigest { return a.digest }

// TopKCandidates exposes the sketch-tracked candidates.
func (a *ColumnAccumulator) TopKCandidates() []Candidate { return a.topK.Candidates() }

// ReservoirExactCounts exposes the exact recount sample.
func (a *ColumnAccumulator) ReservoirExactCounts() map[string]uint64 { return a.reservoir.ExactCounts() }

// LengthBounds exposes rolling min/max character length.
func (a *ColumnAccumulator) LengthBounds() (min, max int, ok bool) {
	lo, ok1 := a.lengths.Min()
	hi, ok2 := a.lengths.Max()
	return lo, hi, ok1 && ok2
}

// PIINotes returns the "potential PII: ..." notes accrued for this column.
func (a *ColumnAccumulator) PIINotes() []string { return a.pii.Notes() }

// FinalizeOutliers re-filters candidates against the final mean/std_dev.
func (a *ColumnAccumulator) FinalizeOutliers() []uint64 {
	return a.outliers.Finalize(a.moments.Mean(), a.moments.StdDev())
}

// canonicalForm renders a RawField to the stable byte form HyperLogLog
// hashes, keeping boolean/integer/string paths cross-type stable
// (spec.md §4.5).
func canonicalForm(v values.RawField) string {
	switch v.Kind() {
	case values.KindBool:
		b, _ := v.BoolValue()
		if b {
			return "true"
		}
		return "false"
	case values.KindInt64:
		i, _ := v.Int64Value()
		return strconv.FormatInt(i, 10)
	case values.KindFloat64:
		f, _ := v.Float64Value()
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		s, _ := v.StringValue()
		return s
	}
}
