package compare

import (
	"testing"

	"dataprofile/domain/profile"
)

func colResult(cols ...profile.ColumnProfile) profile.Result {
	return profile.Result{ColumnProfiles: cols}
}

func typedCol(name string, t profile.InferredType) profile.ColumnProfile {
	return profile.ColumnProfile{Name: name, BaseStats: profile.BaseStats{InferredType: t, Count: 10}}
}

// TestPairwiseDiffE5 reproduces spec.md §8 E5: baseline {a:Integer,
// b:Numeric}, candidate {a:Integer, c:String} yields b removed, c added,
// a unchanged.
func TestPairwiseDiffE5(t *testing.T) {
	baseline := colResult(typedCol("a", profile.TypeInteger), typedCol("b", profile.TypeNumeric))
	candidate := colResult(typedCol("a", profile.TypeInteger), typedCol("c", profile.TypeString))

	diffs := PairwiseDiff(baseline, candidate)

	want := map[string]DiffStatus{"a": Unchanged, "b": Removed, "c": Added}
	if len(diffs) != len(want) {
		t.Fatalf("got %d diffs, want %d: %+v", len(diffs), len(want), diffs)
	}
	for _, d := range diffs {
		if d.Status != want[d.Name] {
			t.Errorf("%s: status = %s, want %s", d.Name, d.Status, want[d.Name])
		}
	}
}

// TestPairwiseDiffSymmetry reproduces spec.md §8 property 7: compare(p, p)
// yields every column unchanged.
func TestPairwiseDiffSymmetry(t *testing.T) {
	p := colResult(typedCol("a", profile.TypeInteger), typedCol("b", profile.TypeString))
	diffs := PairwiseDiff(p, p)
	for _, d := range diffs {
		if d.Status != Unchanged {
			t.Errorf("%s: status = %s, want unchanged", d.Name, d.Status)
		}
	}
}

func TestSchemaCompatible(t *testing.T) {
	a := colResult(typedCol("a", profile.TypeInteger), typedCol("b", profile.TypeNumeric))
	b := colResult(typedCol("a", profile.TypeInteger), typedCol("b", profile.TypeString))

	ok, diffs := SchemaCompatible(a, b)
	if ok {
		t.Fatal("expected incompatible schemas")
	}
	if len(diffs) != 1 || diffs[0].Kind != SchemaTypeChanged {
		t.Fatalf("got %+v, want one type-changed diff", diffs)
	}
}

func TestClassifyTrendVolatileVsImproving(t *testing.T) {
	if got := ClassifyTrend("mean", []float64{0.1, -0.1, 0.2, -0.2}); got != TrendVolatile {
		t.Errorf("got %s, want volatile", got)
	}
	if got := ClassifyTrend("mean", []float64{0.05, 0.06, 0.07}); got != TrendImproving {
		t.Errorf("got %s, want improving", got)
	}
	if got := ClassifyTrend("missing_percent", []float64{-0.2, -0.3}); got != TrendImproving {
		t.Errorf("got %s, want improving (lower missing_percent is better)", got)
	}
	if got := ClassifyTrend("mean", []float64{0.001, -0.002}); got != TrendStable {
		t.Errorf("got %s, want stable", got)
	}
}

func TestNWayDelta(t *testing.T) {
	baseline := colResult(profile.ColumnProfile{
		Name:      "price",
		BaseStats: profile.BaseStats{Count: 100, Missing: 0, InferredType: profile.TypeNumeric},
		NumericStats: &profile.NumericStats{Count: 100, Mean: 10, StdDev: 2},
	})
	candidate := colResult(profile.ColumnProfile{
		Name:      "price",
		BaseStats: profile.BaseStats{Count: 100, Missing: 0, InferredType: profile.TypeNumeric},
		NumericStats: &profile.NumericStats{Count: 100, Mean: 12, StdDev: 2},
	})

	deltas, err := NWayDelta(baseline, []profile.Result{candidate})
	if err != nil {
		t.Fatalf("NWayDelta: %v", err)
	}
	if len(deltas) != 1 {
		t.Fatalf("got %d candidate delta sets, want 1", len(deltas))
	}
	var found bool
	for _, d := range deltas[0] {
		if d.Metric == "mean" {
			found = true
			if d.Delta != 2 {
				t.Errorf("mean delta = %v, want 2", d.Delta)
			}
			if d.Direction != Improved {
				t.Errorf("mean direction = %s, want improved", d.Direction)
			}
		}
	}
	if !found {
		t.Fatal("expected a mean metric delta")
	}
}
