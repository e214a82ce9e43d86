// Package profiler implements the Profile Builder (spec.md §4.7): it owns
// one Column per source column (type inferencer + statistics accumulator +
// anomaly index), folds extractor events into them as a session runs, and
// produces the immutable domain/profile.Result at finalize without
// mutating accumulator state.
package profiler

import (
	"math"
	"sort"

	"dataprofile/domain/core"
	"dataprofile/domain/profile"
	"dataprofile/domain/values"
	"dataprofile/internal/anomaly"
	"dataprofile/internal/config"
	"dataprofile/internal/stats"
	"dataprofile/internal/typeinfer"
)

// Column bundles one source column's inferencer, accumulator, and anomaly
// index.
type Column struct {
	Name      string
	FSM       *typeinfer.FSM
	Acc       *stats.ColumnAccumulator
	Anomalies *anomaly.Index

	malformedRowNoted bool
}

func newColumn(name string, cfg config.SessionConfig) *Column {
	return &Column{
		Name:      name,
		FSM:       typeinfer.New(),
		Acc:       stats.NewColumnAccumulator(name, cfg.HLLPrecision, cfg.TDigestCompression),
		Anomalies: anomaly.New(int(cfg.AnomalyCap)),
	}
}

// Builder is the session-scoped set of columns plus session-wide
// diagnostics, built up by Observe/RecordRowError calls and read out,
// non-destructively, by Finalize.
type Builder struct {
	cfg    config.SessionConfig
	order  []*Column
	byName map[string]*Column

	totalRows     uint64
	malformedRows uint64
	encodingDrops uint64
}

// NewBuilder returns an empty builder for one session.
func NewBuilder(cfg config.SessionConfig) *Builder {
	return &Builder{cfg: cfg, byName: make(map[string]*Column)}
}

// Column returns the named column, creating it (and recording its
// first-observation order) if this is the first sighting.
func (b *Builder) Column(name string) *Column {
	if c, ok := b.byName[name]; ok {
		return c
	}
	c := newColumn(name, b.cfg)
	b.byName[name] = c
	b.order = append(b.order, c)
	return c
}

// Columns returns the columns in first-observation order.
func (b *Builder) Columns() []*Column { return b.order }

// NoteRow advances the builder's row counter; rowIndex is the 0-based
// index the extractor emitted, so total rows is rowIndex+1 for the
// highest-numbered row seen so far.
func (b *Builder) NoteRow(rowIndex uint64) {
	if rowIndex+1 > b.totalRows {
		b.totalRows = rowIndex + 1
	}
}

// Observe folds one cell value into colName's column. rowIndex is the
// extractor's 0-based row index; anomaly indices are recorded 1-based
// per spec.md's anomaly_indices convention.
func (b *Builder) Observe(colName string, rowIndex uint64, v values.RawField) {
	col := b.Column(colName)
	row1 := rowIndex + 1

	if v.IsNull() {
		col.FSM.ObserveNull()
		col.Acc.ObserveMissing()
		col.Anomalies.Record(anomaly.Missing, row1)
		return
	}

	if f, ok := v.Float64Value(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		col.Acc.ObserveNonFinite()
		col.Anomalies.Record(anomaly.Missing, row1)
		return
	}

	if after := col.FSM.Observe(v); after == profile.TypeMixed {
		col.Anomalies.Record(anomaly.Format, row1)
	}

	col.Acc.Observe(row1, v)

	if s, ok := v.StringValue(); ok && s != "" {
		if pattern := col.Acc.CheckPII(s); pattern != "" {
			col.Anomalies.Record(anomaly.PII, row1)
		}
	}
}

// RecordRowError applies one extractor-reported malformed/encoding row
// drop to every known column (CSV/TSV "malformed row" semantics, spec.md
// §4.3) and bumps the matching diagnostics counter.
func (b *Builder) RecordRowError(rowIndex uint64, encoding bool) {
	if encoding {
		b.encodingDrops++
	} else {
		b.malformedRows++
	}
	row1 := rowIndex + 1
	for _, col := range b.order {
		col.Anomalies.Record(anomaly.Format, row1)
		col.malformedRowNoted = true
	}
}

// Finalize derives the frozen profile result from current accumulator
// state. It is idempotent and non-mutating: calling it twice (e.g. once
// for a diagnostic peek mid-failure, once at real finalize) yields
// equivalent results and never perturbs the live accumulators.
func (b *Builder) Finalize() profile.Result {
	result := profile.Result{
		TotalRows:  b.totalRows,
		ComputedAt: core.Now(),
		Diagnostics: profile.Diagnostics{
			MalformedRows: b.malformedRows,
			EncodingDrops: b.encodingDrops,
		},
	}

	for _, col := range b.order {
		result.ColumnProfiles = append(result.ColumnProfiles, finalizeColumn(col, b.cfg))
	}
	return result
}

func finalizeColumn(col *Column, cfg config.SessionConfig) profile.ColumnProfile {
	inferredType := col.FSM.State()
	if inferredType == "" {
		inferredType = profile.TypeEmpty
	}

	cp := profile.ColumnProfile{
		Name: col.Name,
		BaseStats: profile.BaseStats{
			Count:            col.Acc.Count(),
			Missing:          col.Acc.Missing(),
			DistinctEstimate: col.Acc.DistinctEstimate(),
			InferredType:     inferredType,
		},
	}

	if col.FSM.HasMixedNote() {
		cp.Notes = append(cp.Notes, "mixed types: numeric with exceptions")
	}

	if col.malformedRowNoted {
		cp.Notes = append(cp.Notes, "malformed row")
	}

	if isNumericType(inferredType) && col.Acc.Moments().Count() > 0 {
		cp.NumericStats = buildNumericStats(col)
		if hist := stats.BuildHistogram(col.Acc.Digest(), col.Acc.Moments().Min(), col.Acc.Moments().Max(), col.Acc.Moments().Count()); len(hist) > 0 {
			cp.Histogram = convertHistogram(hist)
		}
		if note := stats.NormalityNote(cp.NumericStats.Skewness, cp.NumericStats.Kurtosis, cp.NumericStats.Count); note != "" {
			cp.Notes = append(cp.Notes, note)
		}
	}

	if isCategoricalType(inferredType) && col.Acc.DistinctEstimate() <= cfg.CardinalityBudget {
		cp.CategoricalStats = buildCategoricalStats(col)
	}

	if inferredType == profile.TypeString {
		if lo, hi, ok := col.Acc.LengthBounds(); ok {
			cp.MinLength = &lo
			cp.MaxLength = &hi
		}
	}

	cp.Notes = append(cp.Notes, col.Acc.PIINotes()...)

	anomalies := make(map[profile.AnomalyClass]profile.AnomalyIndex)
	anomalies[profile.AnomalyMissing] = toProfileAnomaly(col.Anomalies, anomaly.Missing)
	anomalies[profile.AnomalyPII] = toProfileAnomaly(col.Anomalies, anomaly.PII)
	anomalies[profile.AnomalyFormat] = toProfileAnomaly(col.Anomalies, anomaly.Format)

	outlierRows := col.Acc.FinalizeOutliers()
	outlierIdx := anomaly.New(int(cfg.AnomalyCap))
	for _, r := range outlierRows {
		outlierIdx.Record(anomaly.Outlier, r)
	}
	anomalies[profile.AnomalyOutlier] = toProfileAnomaly(outlierIdx, anomaly.Outlier)

	cp.AnomalyIndices = anomalies
	return cp
}

func isNumericType(t profile.InferredType) bool {
	return t == profile.TypeInteger || t == profile.TypeNumeric
}

func isCategoricalType(t profile.InferredType) bool {
	return t == profile.TypeString || t == profile.TypeBoolean
}

func buildNumericStats(col *Column) *profile.NumericStats {
	m := col.Acc.Moments()
	d := col.Acc.Digest()
	return &profile.NumericStats{
		Min:      m.Min(),
		Max:      m.Max(),
		Sum:      m.Sum(),
		Count:    m.Count(),
		Mean:     m.Mean(),
		Variance: m.Variance(),
		StdDev:   m.StdDev(),
		Skewness: m.Skewness(),
		Kurtosis: m.Kurtosis(),
		Median:   d.Quantile(0.5),
		P25:      d.Quantile(0.25),
		P75:      d.Quantile(0.75),
		P90:      d.Quantile(0.90),
		P95:      d.Quantile(0.95),
		P99:      d.Quantile(0.99),
	}
}

func convertHistogram(bins []stats.HistogramBin) *profile.Histogram {
	out := make([]profile.HistogramBin, len(bins))
	for i, b := range bins {
		out[i] = profile.HistogramBin{Start: b.Start, End: b.End, Count: b.Count}
	}
	width := 0.0
	if len(bins) > 0 {
		width = bins[0].End - bins[0].Start
	}
	return &profile.Histogram{
		Bins:     out,
		Min:      bins[0].Start,
		Max:      bins[len(bins)-1].End,
		BinWidth: width,
	}
}

// buildCategoricalStats re-counts the sketch-tracked top-k exactly against
// the retained reservoir sample before freezing it (spec.md §4.5 Top-k).
func buildCategoricalStats(col *Column) *profile.CategoricalStats {
	candidates := col.Acc.TopKCandidates()
	exact := col.Acc.ReservoirExactCounts()

	type ranked struct {
		value string
		count uint64
		seq   int
	}
	ranks := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		count := c.Count
		if exactCount, ok := exact[c.Value]; ok {
			count = exactCount
		}
		ranks = append(ranks, ranked{value: c.Value, count: count, seq: c.Seq})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].count != ranks[j].count {
			return ranks[i].count > ranks[j].count
		}
		return ranks[i].seq < ranks[j].seq
	})
	if len(ranks) > 10 {
		ranks = ranks[:10]
	}

	total := col.Acc.Count()
	topValues := make([]profile.ValueCount, len(ranks))
	for i, r := range ranks {
		pct := 0.0
		if total > 0 {
			pct = float64(r.count) / float64(total) * 100
		}
		topValues[i] = profile.ValueCount{Value: r.value, Count: r.count, Percentage: pct}
	}

	return &profile.CategoricalStats{
		TopValues:   topValues,
		UniqueCount: col.Acc.DistinctEstimate(),
	}
}

func toProfileAnomaly(idx *anomaly.Index, class anomaly.Class) profile.AnomalyIndex {
	return profile.AnomalyIndex{
		Indices:    idx.Stored(class),
		TotalCount: idx.Total(class),
	}
}
