package stats

import (
	"math"
	"testing"

	mstats "github.com/montanaflynn/stats"
)

// TestMomentsAgainstExactStats cross-checks the online Welford/M3/M4
// accumulator against montanaflynn/stats' exact batch computation over the
// same fixed sample (spec.md §4.5 "Numeric moments" names mean/variance/
// std_dev/skewness/kurtosis but is silent on implementation; this is the
// golden-test path SPEC_FULL.md's DOMAIN STACK section reserves for
// montanaflynn/stats).
func TestMomentsAgainstExactStats(t *testing.T) {
	sample := []float64{2, 4, 4, 4, 5, 5, 7, 9, 12, 15, 21, 33, 1, 0.5, -3}

	m := NewMoments()
	for _, x := range sample {
		m.Update(x)
	}

	data := mstats.LoadRawData(sample)

	wantMean, err := mstats.Mean(data)
	if err != nil {
		t.Fatalf("mstats.Mean: %v", err)
	}
	if math.Abs(m.Mean()-wantMean) > 1e-9 {
		t.Errorf("mean = %v, want %v", m.Mean(), wantMean)
	}

	wantStdDev, err := mstats.StandardDeviationSample(data)
	if err != nil {
		t.Fatalf("mstats.StandardDeviationSample: %v", err)
	}
	if math.Abs(m.StdDev()-wantStdDev) > 1e-9 {
		t.Errorf("std_dev = %v, want %v", m.StdDev(), wantStdDev)
	}

	wantMin, _ := mstats.Min(data)
	wantMax, _ := mstats.Max(data)
	if m.Min() != wantMin {
		t.Errorf("min = %v, want %v", m.Min(), wantMin)
	}
	if m.Max() != wantMax {
		t.Errorf("max = %v, want %v", m.Max(), wantMax)
	}
}

func TestMomentsMergeMatchesWholeSample(t *testing.T) {
	a := NewMoments()
	for _, x := range []float64{1, 2, 3, 4, 5} {
		a.Update(x)
	}
	b := NewMoments()
	for _, x := range []float64{6, 7, 8, 9, 10} {
		b.Update(x)
	}
	merged := a.Merge(b)

	whole := NewMoments()
	for _, x := range []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		whole.Update(x)
	}

	if merged.Count() != whole.Count() {
		t.Fatalf("count = %d, want %d", merged.Count(), whole.Count())
	}
	if math.Abs(merged.Mean()-whole.Mean()) > 1e-9 {
		t.Errorf("mean = %v, want %v", merged.Mean(), whole.Mean())
	}
	if math.Abs(merged.Variance()-whole.Variance()) > 1e-9 {
		t.Errorf("variance = %v, want %v", merged.Variance(), whole.Variance())
	}
}

func TestNormalityNoteInsufficientData(t *testing.T) {
	if note := NormalityNote(0, 0, 5); note != "" {
		t.Errorf("expected empty note below n=8, got %q", note)
	}
}
