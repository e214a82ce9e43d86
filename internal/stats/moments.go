// Package stats implements the online statistical estimators that back
// the per-column accumulator bundle (spec.md §4.5): Welford moments,
// HyperLogLog cardinality, t-digest quantiles, Count-Min Sketch top-k,
// reservoir sampling, histograms, length bounds, PII detection, and the
// running-sigma outlier index.
package stats

import "math"

// Moments accumulates Welford's online mean/variance extended with M3/M4
// for skewness and kurtosis (spec.md §4.5 "Numeric moments").
type Moments struct {
	count uint64
	mean  float64
	m2    float64
	m3    float64
	m4    float64
	min   float64
	max   float64
	sum   float64
}

// NewMoments returns an empty accumulator.
func NewMoments() *Moments {
	return &Moments{min: math.Inf(1), max: math.Inf(-1)}
}

// Update folds one finite value into the running moments. Callers must
// filter NaN/±Inf before calling (spec.md §4.5 numeric semantics treats
// non-finite input as missing).
func (m *Moments) Update(x float64) {
	n1 := float64(m.count)
	m.count++
	n := float64(m.count)

	delta := x - m.mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1

	m.mean += deltaN
	m.m4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*m.m2 - 4*deltaN*m.m3
	m.m3 += term1*deltaN*(n-2) - 3*deltaN*m.m2
	m.m2 += term1

	m.sum += x
	if x < m.min {
		m.min = x
	}
	if x > m.max {
		m.max = x
	}
}

// Count returns the number of values folded in.
func (m *Moments) Count() uint64 { return m.count }

// Sum returns the running sum.
func (m *Moments) Sum() float64 { return m.sum }

// Mean returns the running mean, or 0 if no values were observed.
func (m *Moments) Mean() float64 {
	if m.count == 0 {
		return 0
	}
	return m.mean
}

// Min returns the running minimum, or 0 if no values were observed.
func (m *Moments) Min() float64 {
	if m.count == 0 {
		return 0
	}
	return m.min
}

// Max returns the running maximum, or 0 if no values were observed.
func (m *Moments) Max() float64 {
	if m.count == 0 {
		return 0
	}
	return m.max
}

// Variance returns the sample variance (Bessel-corrected), 0 for n < 2.
func (m *Moments) Variance() float64 {
	if m.count < 2 {
		return 0
	}
	return m.m2 / float64(m.count-1)
}

// PopulationVariance returns the biased (population) variance.
func (m *Moments) PopulationVariance() float64 {
	if m.count == 0 {
		return 0
	}
	return m.m2 / float64(m.count)
}

// StdDev returns the sample standard deviation.
func (m *Moments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

// Skewness returns the sample skewness derived from M2/M3, 0 for n < 2 or
// zero variance.
func (m *Moments) Skewness() float64 {
	if m.count < 2 || m.m2 == 0 {
		return 0
	}
	n := float64(m.count)
	return (math.Sqrt(n) * m.m3) / math.Pow(m.m2, 1.5)
}

// Kurtosis returns the excess kurtosis derived from M2/M4, 0 for n < 2 or
// zero variance.
func (m *Moments) Kurtosis() float64 {
	if m.count < 2 || m.m2 == 0 {
		return 0
	}
	n := float64(m.count)
	return (n*m.m4)/(m.m2*m.m2) - 3
}

// Merge pools another Moments accumulator into m using the parallel-
// variance combination formula (spec.md §4.8 pooled merge). Its caller
// here is the moments merge test; Comparison & Aggregation pools from
// frozen numeric_stats instead.
func (m *Moments) Merge(other *Moments) *Moments {
	if other.count == 0 {
		return m
	}
	if m.count == 0 {
		return other
	}

	na, nb := float64(m.count), float64(other.count)
	n := na + nb
	delta := other.mean - m.mean

	merged := &Moments{
		count: m.count + other.count,
		mean:  (na*m.mean + nb*other.mean) / n,
		sum:   m.sum + other.sum,
		min:   math.Min(m.min, other.min),
		max:   math.Max(m.max, other.max),
	}
	merged.m2 = m.m2 + other.m2 + delta*delta*na*nb/n
	delta2 := delta * delta
	delta3 := delta2 * delta
	merged.m3 = m.m3 + other.m3 +
		delta3*na*nb*(na-nb)/(n*n) +
		3*delta*(na*other.m2-nb*m.m2)/n
	delta4 := delta2 * delta2
	merged.m4 = m.m4 + other.m4 +
		delta4*na*nb*(na*na-na*nb+nb*nb)/(n*n*n) +
		6*delta2*(na*na*other.m2+nb*nb*m.m2)/(n*n) +
		4*delta*(na*other.m3-nb*m.m3)/n
	return merged
}
