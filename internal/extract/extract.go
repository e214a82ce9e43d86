// Package extract implements the format-specific streaming tokenizers that
// turn byte chunks into (row_index, column_id, RawField) events
// (spec.md §4.3).
package extract

import "dataprofile/domain/values"

// Event is one cell observation. RowIndex is 0-based internally; the
// profile builder and CLI surface it 1-based per spec.md's
// anomaly_indices convention.
type Event struct {
	RowIndex uint64
	Column   string
	Value    values.RawField
}

// RowError reports a dropped row (malformed or non-UTF-8) so the session
// controller can bump the right diagnostic counter without inspecting
// extractor internals.
type RowError struct {
	RowIndex uint64
	Reason   string
	Encoding bool // true if this was an encoding failure rather than a shape mismatch
}

// ColumnEvent is emitted the first time a column is sighted, in source
// order, so the session can assign stable column IDs.
type ColumnEvent struct {
	Column string
}

// Extractor is the common "given bytes, yield events" contract every
// format variant implements (spec.md §9 "Polymorphic record extractors").
// Feed is called once per chunk; AtEOF is true on the final call. Feed
// must buffer incomplete tokens (partial UTF-8, unterminated quotes or
// JSON values) across calls rather than erroring.
type Extractor interface {
	// Feed consumes one chunk and returns the events, new columns, and
	// row errors produced from it.
	Feed(chunk []byte, atEOF bool) (Result, error)
}

// Result is the batch of output produced by one Feed call.
type Result struct {
	NewColumns []ColumnEvent
	Events     []Event
	RowErrors  []RowError
	// TotalRowsSeen is the extractor's own count of rows it has fully
	// emitted so far, used by the session to report total_rows.
	TotalRowsSeen uint64
}
