package extract

import "testing"

func TestJSONLinesExtractorBasic(t *testing.T) {
	e := NewJSONExtractor(JSONLines)
	res, err := e.Feed([]byte("{\"name\":\"Alice\",\"age\":30}\n{\"name\":\"Bob\",\"age\":25}\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.NewColumns) != 2 {
		t.Fatalf("new_columns = %+v, want 2", res.NewColumns)
	}
	if res.TotalRowsSeen != 2 {
		t.Errorf("total_rows_seen = %d, want 2", res.TotalRowsSeen)
	}
	if len(res.Events) != 4 {
		t.Fatalf("events = %+v, want 4", res.Events)
	}
}

func TestJSONLinesExtractorFlattensNestedObjects(t *testing.T) {
	e := NewJSONExtractor(JSONLines)
	res, err := e.Feed([]byte("{\"user\":{\"name\":\"Alice\",\"city\":\"NYC\"}}\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	cols := make(map[string]bool)
	for _, c := range res.NewColumns {
		cols[c.Column] = true
	}
	if !cols["user.name"] || !cols["user.city"] {
		t.Errorf("new_columns = %+v, want user.name and user.city", res.NewColumns)
	}
}

func TestJSONLinesExtractorMalformedLineRecordsRowError(t *testing.T) {
	e := NewJSONExtractor(JSONLines)
	res, err := e.Feed([]byte("{\"a\":1}\nnot json\n{\"a\":2}\n"), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.RowErrors) != 1 {
		t.Fatalf("row_errors = %+v, want 1", res.RowErrors)
	}
}

func TestJSONArrayExtractorBasic(t *testing.T) {
	e := NewJSONExtractor(JSONArray)
	res, err := e.Feed([]byte(`[{"a":1},{"a":2},{"a":3}]`), true)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if res.TotalRowsSeen != 3 {
		t.Errorf("total_rows_seen = %d, want 3", res.TotalRowsSeen)
	}
	if len(res.Events) != 3 {
		t.Fatalf("events = %+v, want 3", res.Events)
	}
}

func TestJSONArrayExtractorWaitsForEOF(t *testing.T) {
	e := NewJSONExtractor(JSONArray)
	res, err := e.Feed([]byte(`[{"a":1},`), false)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(res.Events) != 0 {
		t.Fatalf("expected no events before EOF in array mode, got %+v", res.Events)
	}
}
