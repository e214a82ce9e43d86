package stats

import (
	"math"
	"sort"
)

// tdigestCompressionDefault is t-digest's delta/compression parameter
// (spec.md §4.5: delta = 500, ~16 KiB/column).
const tdigestCompressionDefault = 500

type centroid struct {
	mean   float64
	weight float64
}

// TDigest is a mergeable approximate-quantile sketch (Dunning's t-digest,
// clustered variant). Centroids are kept sorted by mean; Add buffers new
// points and periodically recompresses.
type TDigest struct {
	compression float64
	centroids   []centroid
	unmerged    []centroid
	count       float64
	min         float64
	max         float64
}

// NewTDigest returns an empty digest at the given compression.
func NewTDigest(compression float64) *TDigest {
	if compression <= 0 {
		compression = tdigestCompressionDefault
	}
	return &TDigest{
		compression: compression,
		min:         math.Inf(1),
		max:         math.Inf(-1),
	}
}

// Add folds one value into the digest with unit weight.
func (t *TDigest) Add(x float64) {
	t.unmerged = append(t.unmerged, centroid{mean: x, weight: 1})
	t.count++
	if x < t.min {
		t.min = x
	}
	if x > t.max {
		t.max = x
	}
	if len(t.unmerged) > int(t.compression)*4 {
		t.compress()
	}
}

func (t *TDigest) compress() {
	if len(t.unmerged) == 0 {
		return
	}
	all := make([]centroid, 0, len(t.centroids)+len(t.unmerged))
	all = append(all, t.centroids...)
	all = append(all, t.unmerged...)
	t.unmerged = nil

	sort.Slice(all, func(i, j int) bool { return all[i].mean < all[j].mean })

	total := 0.0
	for _, c := range all {
		total += c.weight
	}
	if total == 0 {
		return
	}

	merged := make([]centroid, 0, len(all))
	var cur centroid
	have := false
	soFar := 0.0

	qLimit := func(q float64) float64 {
		// Scale function k1 (Dunning): allows larger clusters near the
		// median, tighter clusters at the tails.
		return total * (math.Sin((2*q-1)*math.Pi/2) + 1) / 2
	}

	for _, c := range all {
		if !have {
			cur = c
			have = true
			continue
		}
		projected := soFar + cur.weight + c.weight
		if projected <= qLimit((soFar+cur.weight+c.weight)/total)+c.weight {
			// conservative: merge only while staying under the
			// compression-derived cluster size bound
			maxSize := total / t.compression
			if cur.weight+c.weight <= maxSize || len(merged) == 0 {
				w := cur.weight + c.weight
				cur.mean = (cur.mean*cur.weight + c.mean*c.weight) / w
				cur.weight = w
				continue
			}
		}
		soFar += cur.weight
		merged = append(merged, cur)
		cur = c
	}
	if have {
		merged = append(merged, cur)
	}
	t.centroids = merged
}

// Quantile returns an approximate value at quantile q in [0, 1].
func (t *TDigest) Quantile(q float64) float64 {
	t.compress()
	if len(t.centroids) == 0 {
		return 0
	}
	if len(t.centroids) == 1 {
		return t.centroids[0].mean
	}
	if q <= 0 {
		return t.min
	}
	if q >= 1 {
		return t.max
	}

	total := 0.0
	for _, c := range t.centroids {
		total += c.weight
	}
	target := q * total

	cum := 0.0
	for i, c := range t.centroids {
		next := cum + c.weight
		if target <= next || i == len(t.centroids)-1 {
			if c.weight <= 1 {
				return c.mean
			}
			// Linear interpolation within the centroid.
			frac := (target - cum) / c.weight
			left := c.mean
			right := c.mean
			if i > 0 {
				left = (t.centroids[i-1].mean + c.mean) / 2
			}
			if i < len(t.centroids)-1 {
				right = (c.mean + t.centroids[i+1].mean) / 2
			}
			return left + frac*(right-left)
		}
		cum = next
	}
	return t.centroids[len(t.centroids)-1].mean
}

// CDF returns the fraction of observed mass at or below x, used by the
// histogram builder to derive bin counts without re-scanning the stream.
func (t *TDigest) CDF(x float64) float64 {
	t.compress()
	if len(t.centroids) == 0 {
		return 0
	}
	if x < t.min {
		return 0
	}
	if x >= t.max {
		return 1
	}

	total := 0.0
	for _, c := range t.centroids {
		total += c.weight
	}

	cum := 0.0
	for i, c := range t.centroids {
		if x < c.mean {
			if i == 0 {
				return cum / total
			}
			prev := t.centroids[i-1]
			span := c.mean - prev.mean
			if span <= 0 {
				return cum / total
			}
			frac := (x - prev.mean) / span
			return (cum + frac*c.weight) / total
		}
		cum += c.weight
	}
	return 1
}

// Count returns the number of values added.
func (t *TDigest) Count() uint64 { return uint64(t.count) }

// Min returns the minimum value observed.
func (t *TDigest) Min() float64 {
	if math.IsInf(t.min, 1) {
		return 0
	}
	return t.min
}

// Max returns the maximum value observed.
func (t *TDigest) Max() float64 {
	if math.IsInf(t.max, -1) {
		return 0
	}
	return t.max
}
