package compare

import (
	"math"
	"testing"

	gonumstat "gonum.org/v1/gonum/stat"

	"dataprofile/domain/profile"
)

func numericResult(col string, count uint64, mean, variance float64) profile.Result {
	return profile.Result{
		ColumnProfiles: []profile.ColumnProfile{{
			Name:      col,
			BaseStats: profile.BaseStats{Count: count, InferredType: profile.TypeNumeric, DistinctEstimate: count},
			NumericStats: &profile.NumericStats{
				Count: count, Mean: mean, Variance: variance,
			},
		}},
	}
}

// TestPooledMergeE6 reproduces spec.md §8 E6 literally: two profiles with
// count=100/mean=10/var=4 and count=100/mean=20/var=4 pool to
// count=200, mean=15, var=29.
func TestPooledMergeE6(t *testing.T) {
	results := []profile.Result{
		numericResult("x", 100, 10, 4),
		numericResult("x", 100, 20, 4),
	}
	pooled := PooledMerge(results)
	if len(pooled) != 1 {
		t.Fatalf("expected 1 pooled column, got %d", len(pooled))
	}
	got := pooled[0]
	if got.CountTotal != 200 {
		t.Errorf("count_total = %d, want 200", got.CountTotal)
	}
	if math.Abs(got.MeanPooled-15) > 1e-9 {
		t.Errorf("mean_pooled = %v, want 15", got.MeanPooled)
	}
	if math.Abs(got.VariancePooled-29) > 1e-9 {
		t.Errorf("variance_pooled = %v, want 29", got.VariancePooled)
	}
}

// TestPooledMergeWeightedMeanAgainstGonum cross-checks pooled_merge's
// weighted mean against gonum/stat's direct weighted mean over the
// concatenated sample (SPEC_FULL.md's DOMAIN STACK section reserves
// gonum.org/v1/gonum/stat for this cross-check).
func TestPooledMergeWeightedMeanAgainstGonum(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{10, 20, 30}

	meanA, varA := gonumstat.MeanVariance(a, nil)
	meanB, varB := gonumstat.MeanVariance(b, nil)

	results := []profile.Result{
		numericResult("x", uint64(len(a)), meanA, varA),
		numericResult("x", uint64(len(b)), meanB, varB),
	}
	pooled := PooledMerge(results)
	if len(pooled) != 1 {
		t.Fatalf("expected 1 pooled column, got %d", len(pooled))
	}

	whole := append(append([]float64{}, a...), b...)
	wantMean, _ := gonumstat.MeanVariance(whole, nil)

	if math.Abs(pooled[0].MeanPooled-wantMean) > 1e-9 {
		t.Errorf("mean_pooled = %v, want %v", pooled[0].MeanPooled, wantMean)
	}
}
