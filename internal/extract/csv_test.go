package extract

import "testing"

func TestCSVExtractorHeaderAndRows(t *testing.T) {
	e := NewCSVExtractor(',', true)
	res, err := e.Feed([]byte("name,price\nAlice,10\nBob,20\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.NewColumns) != 2 || res.NewColumns[0].Column != "name" || res.NewColumns[1].Column != "price" {
		t.Fatalf("new_columns = %+v, want name,price", res.NewColumns)
	}
	if res.TotalRowsSeen != 2 {
		t.Errorf("total_rows_seen = %d, want 2", res.TotalRowsSeen)
	}
	if len(res.Events) != 4 {
		t.Fatalf("events = %d, want 4", len(res.Events))
	}
	name0, _ := res.Events[0].Value.StringValue()
	if res.Events[0].Column != "name" || name0 != "Alice" {
		t.Errorf("events[0] = %+v, want name=Alice", res.Events[0])
	}
}

func TestCSVExtractorSynthesizesHeaderWhenAbsent(t *testing.T) {
	e := NewCSVExtractor(',', false)
	res, err := e.Feed([]byte("Alice,10\nBob,20\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.NewColumns) != 2 || res.NewColumns[0].Column != "col_1" || res.NewColumns[1].Column != "col_2" {
		t.Fatalf("new_columns = %+v, want col_1,col_2", res.NewColumns)
	}
	// The first record is data, not a header, so it must be re-emitted as row 0.
	if res.TotalRowsSeen != 2 {
		t.Errorf("total_rows_seen = %d, want 2", res.TotalRowsSeen)
	}
}

// TestCSVExtractorResumesAcrossChunkBoundary reproduces spec.md §4.3's
// resumability requirement: a chunk boundary falling inside a quoted field
// must not corrupt the field or drop the row.
func TestCSVExtractorResumesAcrossChunkBoundary(t *testing.T) {
	e := NewCSVExtractor(',', true)
	first := []byte("name,note\n\"Alice, A.\",\"hello")
	second := []byte(" world\"\n")

	res1, err := e.Feed(first, false)
	if err != nil {
		t.Fatalf("Feed first: %v", err)
	}
	if len(res1.Events) != 0 {
		t.Fatalf("expected no complete rows before the quoted field closes, got %+v", res1.Events)
	}

	res2, err := e.Feed(second, true)
	if err != nil {
		t.Fatalf("Feed second: %v", err)
	}
	if len(res2.Events) != 2 {
		t.Fatalf("events = %+v, want 2", res2.Events)
	}
	for _, ev := range res2.Events {
		if ev.Column == "note" {
			note, _ := ev.Value.StringValue()
			if note != "hello world" {
				t.Errorf("note = %q, want %q", note, "hello world")
			}
		}
	}
}

func TestCSVExtractorMalformedRowRecordsRowError(t *testing.T) {
	e := NewCSVExtractor(',', true)
	res, err := e.Feed([]byte("a,b\n1,2,3\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.RowErrors) != 1 {
		t.Fatalf("row_errors = %+v, want 1 entry", res.RowErrors)
	}
	if res.RowErrors[0].RowIndex != 0 {
		t.Errorf("row_index = %d, want 0", res.RowErrors[0].RowIndex)
	}
}

func TestCSVExtractorCustomDelimiter(t *testing.T) {
	e := NewCSVExtractor(';', true)
	res, err := e.Feed([]byte("a;b\n1;2\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("events = %+v, want 2", res.Events)
	}
}
