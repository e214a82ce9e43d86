package profiler

import (
	"math"
	"testing"

	"dataprofile/domain/profile"
	"dataprofile/domain/values"
	"dataprofile/internal/config"
)

// TestBuilderE1 reproduces spec.md §8 E1: price = [10, 20, null, 30, 40].
func TestBuilderE1(t *testing.T) {
	b := NewBuilder(config.DefaultSessionConfig())
	rows := []values.RawField{
		values.Int64(10), values.Int64(20), values.Null(), values.Int64(30), values.Int64(40),
	}
	for i, v := range rows {
		b.NoteRow(uint64(i))
		b.Observe("price", uint64(i), v)
	}

	result := b.Finalize()
	col, ok := result.ColumnByName("price")
	if !ok {
		t.Fatal("expected price column")
	}
	if col.BaseStats.Count != 4 {
		t.Errorf("count = %d, want 4", col.BaseStats.Count)
	}
	if col.BaseStats.Missing != 1 {
		t.Errorf("missing = %d, want 1", col.BaseStats.Missing)
	}
	if col.BaseStats.DistinctEstimate < 3 || col.BaseStats.DistinctEstimate > 5 {
		t.Errorf("distinct_estimate = %d, want in [3,5]", col.BaseStats.DistinctEstimate)
	}
	if col.BaseStats.InferredType != profile.TypeInteger {
		t.Errorf("inferred_type = %s, want Integer", col.BaseStats.InferredType)
	}
	if col.NumericStats == nil {
		t.Fatal("expected numeric_stats")
	}
	if col.NumericStats.Min != 10 || col.NumericStats.Max != 40 {
		t.Errorf("min/max = %v/%v, want 10/40", col.NumericStats.Min, col.NumericStats.Max)
	}
	if math.Abs(col.NumericStats.Mean-25) > 1e-9 {
		t.Errorf("mean = %v, want 25", col.NumericStats.Mean)
	}
	if math.Abs(col.NumericStats.StdDev-12.910) > 0.01 {
		t.Errorf("std_dev = %v, want ~12.910", col.NumericStats.StdDev)
	}
}

// TestBuilderE2 reproduces spec.md §8 E2: name = ["Alice","Bob",null,
// "Alice","Carol"].
func TestBuilderE2(t *testing.T) {
	b := NewBuilder(config.DefaultSessionConfig())
	rows := []values.RawField{
		values.String("Alice"), values.String("Bob"), values.Null(),
		values.String("Alice"), values.String("Carol"),
	}
	for i, v := range rows {
		b.NoteRow(uint64(i))
		b.Observe("name", uint64(i), v)
	}

	result := b.Finalize()
	col, _ := result.ColumnByName("name")
	if col.BaseStats.Count != 4 {
		t.Errorf("count = %d, want 4", col.BaseStats.Count)
	}
	if col.BaseStats.Missing != 1 {
		t.Errorf("missing = %d, want 1", col.BaseStats.Missing)
	}
	if col.BaseStats.InferredType != profile.TypeString {
		t.Errorf("inferred_type = %s, want String", col.BaseStats.InferredType)
	}
	if col.MinLength == nil || *col.MinLength != 3 {
		t.Errorf("min_length = %v, want 3", col.MinLength)
	}
	if col.MaxLength == nil || *col.MaxLength != 5 {
		t.Errorf("max_length = %v, want 5", col.MaxLength)
	}
	if col.CategoricalStats == nil {
		t.Fatal("expected categorical_stats")
	}
	top := col.CategoricalStats.TopValues
	if len(top) == 0 || top[0].Value != "Alice" || top[0].Count != 2 {
		t.Errorf("top_values[0] = %+v, want Alice:2", top[0])
	}
}

// TestBuilderE3 reproduces spec.md §8 E3: x = ["10","20","N/A","30"].
func TestBuilderE3(t *testing.T) {
	b := NewBuilder(config.DefaultSessionConfig())
	rows := []string{"10", "20", "N/A", "30"}
	for i, s := range rows {
		b.NoteRow(uint64(i))
		b.Observe("x", uint64(i), values.String(s))
	}

	result := b.Finalize()
	col, _ := result.ColumnByName("x")
	if col.BaseStats.InferredType != profile.TypeString {
		t.Errorf("inferred_type = %s, want String", col.BaseStats.InferredType)
	}
	found := false
	for _, n := range col.Notes {
		if n == "mixed types: numeric with exceptions" {
			found = true
		}
	}
	if !found {
		t.Errorf("notes = %v, want one containing mixed types", col.Notes)
	}
}

// TestBuilderE4 reproduces spec.md §8 E4: contact = ["a@b.com","c@d.org",
// "not-an-email"].
func TestBuilderE4(t *testing.T) {
	b := NewBuilder(config.DefaultSessionConfig())
	rows := []string{"a@b.com", "c@d.org", "not-an-email"}
	for i, s := range rows {
		b.NoteRow(uint64(i))
		b.Observe("contact", uint64(i), values.String(s))
	}

	result := b.Finalize()
	col, _ := result.ColumnByName("contact")

	foundNote := false
	for _, n := range col.Notes {
		if n == "potential PII: email" {
			foundNote = true
		}
	}
	if !foundNote {
		t.Errorf("notes = %v, want one containing potential PII: email", col.Notes)
	}

	pii := col.AnomalyIndices[profile.AnomalyPII]
	want := []uint64{1, 2}
	if len(pii.Indices) != len(want) {
		t.Fatalf("pii indices = %v, want %v", pii.Indices, want)
	}
	for i := range want {
		if pii.Indices[i] != want[i] {
			t.Fatalf("pii indices = %v, want %v", pii.Indices, want)
		}
	}
}

func TestBuilderFinalizeIsIdempotent(t *testing.T) {
	b := NewBuilder(config.DefaultSessionConfig())
	b.NoteRow(0)
	b.Observe("a", 0, values.Int64(1))
	b.NoteRow(1)
	b.Observe("a", 1, values.Int64(2))

	first := b.Finalize()
	second := b.Finalize()

	c1, _ := first.ColumnByName("a")
	c2, _ := second.ColumnByName("a")
	if c1.NumericStats.Mean != c2.NumericStats.Mean || c1.BaseStats.Count != c2.BaseStats.Count {
		t.Fatal("Finalize must be idempotent and non-mutating")
	}
}
