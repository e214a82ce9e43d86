package typeinfer

import (
	"testing"

	"dataprofile/domain/profile"
	"dataprofile/domain/values"
)

func TestFSMWidensIntegerToNumeric(t *testing.T) {
	f := New()
	if got := f.Observe(values.Int64(10)); got != profile.TypeInteger {
		t.Fatalf("got %s, want Integer", got)
	}
	if got := f.Observe(values.Float64(1.5)); got != profile.TypeNumeric {
		t.Fatalf("got %s, want Numeric", got)
	}
	if got := f.Observe(values.Int64(2)); got != profile.TypeNumeric {
		t.Fatalf("got %s, want Numeric to stay widened", got)
	}
}

// TestFSMMixedE3 reproduces spec.md §8 E3: x = ["10","20","N/A","30"]
// infers String with a mixed-types note triggered upstream.
func TestFSMMixedE3(t *testing.T) {
	f := New()
	for _, s := range []string{"10", "20", "N/A", "30"} {
		f.Observe(values.String(s))
	}
	if got := f.State(); got != profile.TypeString {
		t.Fatalf("got %s, want String", got)
	}
	if !f.HasMixedNote() {
		t.Fatal("expected HasMixedNote to be true")
	}
}

func TestFSMNullThenValue(t *testing.T) {
	f := New()
	if got := f.ObserveNull(); got != profile.TypeNull {
		t.Fatalf("got %s, want Null", got)
	}
	if got := f.Observe(values.String("hello")); got != profile.TypeString {
		t.Fatalf("got %s, want String", got)
	}
	// nulls never widen a decided column
	if got := f.ObserveNull(); got != profile.TypeString {
		t.Fatalf("got %s, want String to stay decided", got)
	}
}

func TestFSMDateWidensToDateTime(t *testing.T) {
	f := New()
	f.Observe(values.String("2024-01-15"))
	if got := f.State(); got != profile.TypeDate {
		t.Fatalf("got %s, want Date", got)
	}
	if got := f.Observe(values.String("2024-01-15T10:30:00Z")); got != profile.TypeDateTime {
		t.Fatalf("got %s, want DateTime", got)
	}
}

func TestFSMMonotonicallyWidens(t *testing.T) {
	// spec.md §8 property 5: type widening is non-decreasing in the lattice.
	lattice := map[profile.InferredType]int{
		profile.TypeEmpty: 0, profile.TypeNull: 0,
		profile.TypeBoolean: 1, profile.TypeInteger: 1, profile.TypeDate: 1,
		profile.TypeNumeric: 2, profile.TypeDateTime: 2, profile.TypeString: 2,
		profile.TypeMixed: 3,
	}
	f := New()
	last := lattice[f.State()]
	inputs := []values.RawField{
		values.Int64(1), values.Float64(2.5), values.String("not a number"),
	}
	for _, v := range inputs {
		cur := lattice[f.Observe(v)]
		if cur < last {
			t.Fatalf("type rank decreased: %d -> %d", last, cur)
		}
		last = cur
	}
}
