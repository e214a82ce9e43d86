package session

import (
	"strings"
	"testing"

	"dataprofile/domain/profile"
	"dataprofile/internal/config"
)

func TestSessionProcessesCSVInOneChunk(t *testing.T) {
	csvData := "name,price\nAlice,10\nBob,20\n"

	sess, err := New("fixture.csv", config.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := sess.ProcessChunk([]byte(csvData), true); err != nil {
		t.Fatalf("ProcessChunk: %v", err)
	}

	result, err := sess.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if result.TotalRows != 2 {
		t.Errorf("total_rows = %d, want 2", result.TotalRows)
	}
	price, ok := result.ColumnByName("price")
	if !ok {
		t.Fatal("expected price column")
	}
	if price.BaseStats.InferredType != profile.TypeInteger {
		t.Errorf("price inferred_type = %s, want Integer", price.BaseStats.InferredType)
	}
}

// TestSessionChunkingInvariance reproduces spec.md §8 property 1: results
// from one arbitrary chunking must match results from feeding the whole
// stream at once.
func TestSessionChunkingInvariance(t *testing.T) {
	csvData := "name,price\nAlice,10\nBob,20\nCarol,30\n"

	whole, err := New("fixture.csv", config.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := whole.ProcessChunk([]byte(csvData), true); err != nil {
		t.Fatalf("ProcessChunk: %v", err)
	}
	wholeResult, err := whole.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	chunked, err := New("fixture.csv", config.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < len(csvData); i++ {
		atEOF := i == len(csvData)-1
		if _, err := chunked.ProcessChunk([]byte{csvData[i]}, atEOF); err != nil {
			t.Fatalf("ProcessChunk byte %d: %v", i, err)
		}
	}
	chunkedResult, err := chunked.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if wholeResult.TotalRows != chunkedResult.TotalRows {
		t.Errorf("total_rows = %d vs %d", wholeResult.TotalRows, chunkedResult.TotalRows)
	}
	wp, _ := wholeResult.ColumnByName("price")
	cp, _ := chunkedResult.ColumnByName("price")
	if wp.NumericStats.Mean != cp.NumericStats.Mean {
		t.Errorf("mean = %v vs %v", wp.NumericStats.Mean, cp.NumericStats.Mean)
	}
	if wp.BaseStats.Count != cp.BaseStats.Count {
		t.Errorf("count = %d vs %d", wp.BaseStats.Count, cp.BaseStats.Count)
	}
}

func TestSessionCancelStopsProcessing(t *testing.T) {
	sess, err := New("fixture.csv", config.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.Cancel()

	if _, err := sess.ProcessChunk([]byte("a,b\n1,2\n"), true); err == nil {
		t.Fatal("expected ProcessChunk to fail after Cancel")
	}
	if _, err := sess.Finalize(); err == nil {
		t.Fatal("expected Finalize to fail after Cancel")
	}
}

func TestSessionUnsupportedFormatFails(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.Format = config.Format("nonsense")

	sess, err := New("fixture.bin", cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := sess.ProcessChunk([]byte(strings.Repeat("x", 10)), true); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if sess.State() != StateFailed {
		t.Errorf("state = %s, want failed", sess.State())
	}
}
