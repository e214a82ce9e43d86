package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"dataprofile/domain/values"
)

const maxFlattenDepth = 3

// JSONMode distinguishes a top-level array from newline-delimited values.
type JSONMode int

const (
	JSONArray JSONMode = iota
	JSONLines
)

// JSONExtractor flattens nested objects to dotted paths up to
// maxFlattenDepth and emits length-only synthetic columns for arrays
// (spec.md §4.3). New columns may appear mid-stream and are announced in
// the Result of the Feed that first sees them. Rows before a column's
// first sighting, and later rows that lack the key, emit no event for that
// column: they are not backfilled with Null and are not counted as missing.
type JSONExtractor struct {
	mode JSONMode

	buf          []byte
	rowIndex     uint64
	columnSeen   map[string]bool
	columnOrder  []string
	sawOpenArray bool
	depth        int // bracket depth, used only in JSONArray mode
}

// NewJSONExtractor returns an extractor for the given mode.
func NewJSONExtractor(mode JSONMode) *JSONExtractor {
	return &JSONExtractor{mode: mode, columnSeen: make(map[string]bool)}
}

// Feed implements Extractor.
func (j *JSONExtractor) Feed(chunk []byte, atEOF bool) (Result, error) {
	j.buf = append(j.buf, chunk...)

	var res Result
	switch j.mode {
	case JSONLines:
		j.feedLines(&res, atEOF)
	default:
		j.feedArray(&res, atEOF)
	}
	res.TotalRowsSeen = j.rowIndex
	return res, nil
}

func (j *JSONExtractor) feedLines(res *Result, atEOF bool) {
	for {
		idx := indexByte(j.buf, '\n')
		if idx < 0 {
			if atEOF && len(j.buf) > 0 {
				j.emitValue(j.buf, res)
				j.buf = nil
			}
			return
		}
		line := j.buf[:idx]
		j.buf = j.buf[idx+1:]
		line = trimCR(line)
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		j.emitValue(line, res)
	}
}

// feedArray buffers the whole input until EOF, then parses it as one array
// with gjson and walks its top-level elements with ForEach.
func (j *JSONExtractor) feedArray(res *Result, atEOF bool) {
	if !atEOF {
		return
	}
	trimmed := strings.TrimSpace(string(j.buf))
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if strings.TrimSpace(trimmed) == "" {
		j.buf = nil
		return
	}

	result := gjson.Parse("[" + trimmed + "]")
	result.ForEach(func(_, value gjson.Result) bool {
		j.emitObject(value, res)
		return true
	})
	j.buf = nil
}

func (j *JSONExtractor) emitValue(raw []byte, res *Result) {
	if !json.Valid(raw) {
		res.RowErrors = append(res.RowErrors, RowError{RowIndex: j.rowIndex, Reason: "malformed row: invalid JSON value", Encoding: false})
		j.rowIndex++
		return
	}
	j.emitObject(gjson.ParseBytes(raw), res)
}

func (j *JSONExtractor) emitObject(value gjson.Result, res *Result) {
	var flat []flatField
	flatten("", value, 1, &flat)

	for _, f := range flat {
		j.ensureColumn(f.path, res)
		res.Events = append(res.Events, Event{RowIndex: j.rowIndex, Column: f.path, Value: gjsonToRawField(f.value)})
	}
	j.rowIndex++
}

func (j *JSONExtractor) ensureColumn(col string, res *Result) {
	if j.columnSeen[col] {
		return
	}
	j.columnSeen[col] = true
	j.columnOrder = append(j.columnOrder, col)
	res.NewColumns = append(res.NewColumns, ColumnEvent{Column: col})
}

// flatten walks a JSON value, producing dotted-path leaves up to
// maxFlattenDepth. Beyond that depth the subtree is kept as a single
// JSON-encoded field (length stats only). Arrays yield a synthetic
// "<path>[]" column carrying only length statistics. Leaves are appended in
// source order.
type flatField struct {
	path  string
	value gjson.Result
}

func flatten(prefix string, v gjson.Result, depth int, out *[]flatField) {
	switch {
	case v.IsObject() && depth <= maxFlattenDepth:
		v.ForEach(func(key, val gjson.Result) bool {
			childPath := key.String()
			if prefix != "" {
				childPath = prefix + "." + key.String()
			}
			flatten(childPath, val, depth+1, out)
			return true
		})
	case v.IsArray():
		path := prefix + "[]"
		*out = append(*out, flatField{path: path, value: v})
	default:
		path := prefix
		if path == "" {
			path = "value"
		}
		*out = append(*out, flatField{path: path, value: v})
	}
}

func gjsonToRawField(v gjson.Result) values.RawField {
	switch v.Type {
	case gjson.Null:
		return values.Null()
	case gjson.False:
		return values.Bool(false)
	case gjson.True:
		return values.Bool(true)
	case gjson.Number:
		if v.Num == float64(int64(v.Num)) && !strings.ContainsAny(v.Raw, ".eE") {
			return values.Int64(int64(v.Num))
		}
		return values.Float64(v.Num)
	case gjson.String:
		return values.String(v.Str)
	default:
		if v.IsArray() {
			// Length-only: carry the element count as the string form so
			// downstream length-bound stats capture array size.
			return values.String(fmt.Sprintf("%d", len(v.Array())))
		}
		// Deeper-than-depth-3 subtree: keep the raw JSON for length stats.
		return values.String(v.Raw)
	}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}
