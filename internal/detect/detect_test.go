package detect

import (
	"testing"

	"dataprofile/internal/config"
)

func TestDetectByExtensionTakesPriorityOverContent(t *testing.T) {
	// content looks like JSON lines but the .csv extension must win.
	sample := []byte("{\"a\":1}\n{\"a\":2}\n")
	res := Detect("events.csv", sample, config.HeaderAuto)
	if res.Format != config.FormatCSV {
		t.Errorf("format = %s, want csv", res.Format)
	}
}

func TestDetectMagicBytesXLSX(t *testing.T) {
	sample := append([]byte("PK\x03\x04"), make([]byte, 16)...)
	res := Detect("upload", sample, config.HeaderAuto)
	if res.Format != config.FormatXLSX {
		t.Errorf("format = %s, want xlsx", res.Format)
	}
}

func TestDetectTextShapeJSONArray(t *testing.T) {
	sample := []byte("  [\n{\"a\":1},{\"a\":2}\n]")
	res := Detect("upload", sample, config.HeaderAuto)
	if res.Format != config.FormatJSONArray {
		t.Errorf("format = %s, want json array", res.Format)
	}
}

func TestDetectTextShapeJSONLines(t *testing.T) {
	sample := []byte("{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n")
	res := Detect("upload", sample, config.HeaderAuto)
	if res.Format != config.FormatJSONLines {
		t.Errorf("format = %s, want json lines", res.Format)
	}
}

func TestDetectDelimiterPrefersSemicolonWhenConsistent(t *testing.T) {
	sample := []byte("a;b;c\n1;2;3\n4;5;6\n7;8;9\n")
	res := Detect("upload.csv", sample, config.HeaderAuto)
	if res.Delimiter != ';' {
		t.Errorf("delimiter = %q, want ;", res.Delimiter)
	}
}

func TestDetectDelimiterDefaultsToComma(t *testing.T) {
	sample := []byte("a,b,c\n1,2,3\n")
	res := Detect("upload.csv", sample, config.HeaderAuto)
	if res.Delimiter != ',' {
		t.Errorf("delimiter = %q, want ,", res.Delimiter)
	}
}

func TestResolveHeaderAutoDetectsHeaderRow(t *testing.T) {
	sample := []byte("name,price\nAlice,10\nBob,20\n")
	res := Detect("upload.csv", sample, config.HeaderAuto)
	if !res.HasHeader {
		t.Error("expected header row detected from differently-typed data row")
	}
}

// TestResolveHeaderAutoFallsBackToSyntheticWithoutTypeMismatch covers
// spec.md §4.2: row 0 is only treated as a header when a later row shows
// evidence of a type mismatch; an all-string CSV must NOT have its first
// data row eaten as a header.
func TestResolveHeaderAutoFallsBackToSyntheticWithoutTypeMismatch(t *testing.T) {
	sample := []byte("name,city\nAlice,NYC\nBob,LA\n")
	res := Detect("upload.csv", sample, config.HeaderAuto)
	if res.HasHeader {
		t.Error("expected no header detected when no row shows a type mismatch")
	}
}

func TestResolveHeaderExplicitOverridesSniffing(t *testing.T) {
	sample := []byte("1,2\n3,4\n")
	res := Detect("upload.csv", sample, config.HeaderYes)
	if !res.HasHeader {
		t.Error("expected has_header to honor explicit HeaderYes override")
	}
	res = Detect("upload.csv", sample, config.HeaderNo)
	if res.HasHeader {
		t.Error("expected has_header to honor explicit HeaderNo override")
	}
}
