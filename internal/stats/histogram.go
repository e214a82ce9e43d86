package stats

import "math"

// BinCount returns the Sturges'-rule-derived bin count clamped to
// [10, 50] (spec.md §4.5 Histogram).
func BinCount(n uint64) int {
	if n == 0 {
		return 10
	}
	bins := int(math.Ceil(math.Log2(float64(n)) + 1))
	if bins < 10 {
		bins = 10
	}
	if bins > 50 {
		bins = 50
	}
	return bins
}

// HistogramBin is one contiguous equi-width bucket prior to freezing into
// domain/profile.HistogramBin.
type HistogramBin struct {
	Start float64
	End   float64
	Count uint64
}

// BuildHistogram constructs bins at finalize by re-using the t-digest CDF
// rather than re-scanning the stream (spec.md §4.5: "two-pass-free
// strategy"). Bin counts are adjusted so they sum exactly to numericCount,
// assigning any rounding remainder to the last bin.
func BuildHistogram(digest *TDigest, min, max float64, numericCount uint64) []HistogramBin {
	if numericCount == 0 || max <= min {
		return nil
	}

	n := BinCount(numericCount)
	width := (max - min) / float64(n)
	if width <= 0 {
		return nil
	}

	bins := make([]HistogramBin, n)
	assigned := uint64(0)
	for i := 0; i < n; i++ {
		start := min + float64(i)*width
		end := start + width
		if i == n-1 {
			end = max
		}
		count := uint64(math.Round((digest.CDF(end) - digest.CDF(start)) * float64(numericCount)))
		bins[i] = HistogramBin{Start: start, End: end, Count: count}
		assigned += count
	}

	if assigned != numericCount && len(bins) > 0 {
		diff := int64(numericCount) - int64(assigned)
		last := &bins[len(bins)-1]
		adjusted := int64(last.Count) + diff
		if adjusted < 0 {
			adjusted = 0
		}
		last.Count = uint64(adjusted)
	}

	return bins
}
