// Package profile holds the frozen, immutable result types a session
// produces at finalize. Nothing in this package mutates after construction;
// Comparison & Aggregation consumes these types without copying.
package profile

import "dataprofile/domain/core"

// InferredType is a node in the type-inference lattice. Transitions widen
// one-way toward Mixed.
type InferredType string

const (
	TypeEmpty    InferredType = "Empty"
	TypeNull     InferredType = "Null"
	TypeBoolean  InferredType = "Boolean"
	TypeInteger  InferredType = "Integer"
	TypeNumeric  InferredType = "Numeric"
	TypeDate     InferredType = "Date"
	TypeDateTime InferredType = "DateTime"
	TypeString   InferredType = "String"
	TypeMixed    InferredType = "Mixed"
)

// AnomalyClass names one of the four anomaly-index buckets.
type AnomalyClass string

const (
	AnomalyMissing AnomalyClass = "missing"
	AnomalyPII     AnomalyClass = "pii"
	AnomalyOutlier AnomalyClass = "outlier"
	AnomalyFormat  AnomalyClass = "format"
)

// BaseStats is present on every column.
type BaseStats struct {
	Count            uint64       `json:"count"`
	Missing          uint64       `json:"missing"`
	DistinctEstimate uint64       `json:"distinct_estimate"`
	InferredType     InferredType `json:"inferred_type"`
}

// NumericStats is present iff the column's inferred type is numeric-
// compatible and at least one numeric value was observed.
type NumericStats struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Sum      float64 `json:"sum"`
	Count    uint64  `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Median   float64 `json:"median"`
	P25      float64 `json:"p25"`
	P75      float64 `json:"p75"`
	P90      float64 `json:"p90"`
	P95      float64 `json:"p95"`
	P99      float64 `json:"p99"`
}

// ValueCount is one ranked entry in a categorical top-k.
type ValueCount struct {
	Value      string  `json:"value"`
	Count      uint64  `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoricalStats is present iff the inferred type is String/Boolean and
// distinct_estimate is within the configured cardinality budget.
type CategoricalStats struct {
	TopValues   []ValueCount `json:"top_values"`
	UniqueCount uint64       `json:"unique_count"`
}

// HistogramBin is one contiguous equi-width bucket.
type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count uint64  `json:"count"`
}

// Histogram is present for numeric columns with at least two distinct
// values.
type Histogram struct {
	Bins     []HistogramBin `json:"bins"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	BinWidth float64        `json:"bin_width"`
}

// AnomalyIndex reports the stored (capped) row indices for one class plus
// the true total count of hits, which may exceed len(Indices).
type AnomalyIndex struct {
	Indices    []uint64 `json:"indices"`
	TotalCount uint64   `json:"total_count"`
}

// ColumnProfile is the frozen per-column result.
type ColumnProfile struct {
	Name             string                              `json:"name"`
	BaseStats        BaseStats                            `json:"base_stats"`
	NumericStats     *NumericStats                        `json:"numeric_stats,omitempty"`
	CategoricalStats *CategoricalStats                    `json:"categorical_stats,omitempty"`
	Histogram        *Histogram                           `json:"histogram,omitempty"`
	MinLength        *int                                 `json:"min_length,omitempty"`
	MaxLength        *int                                 `json:"max_length,omitempty"`
	Notes            []string                             `json:"notes,omitempty"`
	AnomalyIndices   map[AnomalyClass]AnomalyIndex        `json:"anomaly_indices,omitempty"`
}

// Diagnostics carries session-wide, non-fatal counters surfaced alongside
// the profile result.
type Diagnostics struct {
	MalformedRows uint64 `json:"malformed_rows"`
	EncodingDrops uint64 `json:"encoding_drops"`
}

// Result is the immutable profile produced at finalize. ColumnProfiles is
// ordered by first-observation order of the source columns.
type Result struct {
	TotalRows      uint64          `json:"total_rows"`
	ColumnProfiles []ColumnProfile `json:"column_profiles"`
	Diagnostics    Diagnostics     `json:"diagnostics"`
	ComputedAt     core.Timestamp  `json:"computed_at"`
}

// ColumnByName returns the profile for name and whether it was found.
func (r Result) ColumnByName(name string) (ColumnProfile, bool) {
	for _, c := range r.ColumnProfiles {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}
