package anomaly

import "testing"

func TestIndexCapsStoredButTracksTotal(t *testing.T) {
	idx := New(2)
	idx.Record(Missing, 1)
	idx.Record(Missing, 2)
	idx.Record(Missing, 3)

	if got := idx.Stored(Missing); len(got) != 2 {
		t.Fatalf("stored = %v, want len 2", got)
	}
	if got := idx.Total(Missing); got != 3 {
		t.Fatalf("total = %d, want 3", got)
	}
}

func TestIndexClassesIndependent(t *testing.T) {
	idx := New(10)
	idx.Record(PII, 1)
	idx.Record(Outlier, 2)

	if got := idx.Total(PII); got != 1 {
		t.Errorf("PII total = %d, want 1", got)
	}
	if got := idx.Total(Missing); got != 0 {
		t.Errorf("Missing total = %d, want 0", got)
	}
	if got := idx.Stored(Format); len(got) != 0 {
		t.Errorf("Format stored = %v, want empty", got)
	}
}

// TestIndexE4 reproduces spec.md §8 E4's anomaly_indices.pii = [1, 2]
// (1-based row indices) for contact = ["a@b.com","c@d.org","not-an-email"].
func TestIndexE4(t *testing.T) {
	idx := New(100)
	idx.Record(PII, 1)
	idx.Record(PII, 2)

	got := idx.Stored(PII)
	want := []uint64{1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
