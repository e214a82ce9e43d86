package extract

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"unicode/utf8"

	"dataprofile/domain/values"
)

// CSVExtractor is an RFC 4180 extractor resumable across chunk boundaries:
// partial UTF-8 sequences and unterminated quoted fields are buffered
// until the next chunk (spec.md §4.3).
type CSVExtractor struct {
	Delimiter byte
	HasHeader bool

	buf        []byte
	headers    []string
	columnSeen map[string]bool
	rowIndex   uint64
	inQuotes   bool
}

// NewCSVExtractor returns an extractor for the given delimiter. If
// hasHeader is false, synthetic headers col_1..col_n are assigned from the
// first record's width.
func NewCSVExtractor(delimiter byte, hasHeader bool) *CSVExtractor {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVExtractor{
		Delimiter:  delimiter,
		HasHeader:  hasHeader,
		columnSeen: make(map[string]bool),
	}
}

// Feed implements Extractor.
func (c *CSVExtractor) Feed(chunk []byte, atEOF bool) (Result, error) {
	c.buf = append(c.buf, chunk...)

	var res Result
	for {
		record, consumed, complete := c.nextRecord(c.buf, atEOF)
		if !complete {
			break
		}
		c.buf = c.buf[consumed:]

		fields, err := c.parseRecord(record)
		if err != nil {
			res.RowErrors = append(res.RowErrors, RowError{RowIndex: c.rowIndex, Reason: err.Error(), Encoding: isEncodingErr(record)})
			c.rowIndex++
			continue
		}

		if c.headers == nil {
			c.initHeaders(fields, &res)
			continue
		}

		if len(fields) != len(c.headers) {
			res.RowErrors = append(res.RowErrors, RowError{RowIndex: c.rowIndex, Reason: "malformed row: field count mismatch"})
			c.rowIndex++
			continue
		}

		for i, f := range fields {
			res.Events = append(res.Events, Event{
				RowIndex: c.rowIndex,
				Column:   c.headers[i],
				Value:    cellToRawField(f),
			})
		}
		c.rowIndex++
		res.TotalRowsSeen = c.rowIndex
	}

	return res, nil
}

func (c *CSVExtractor) initHeaders(fields []string, res *Result) {
	if !c.HasHeader {
		headers := make([]string, len(fields))
		for i := range fields {
			headers[i] = "col_" + strconv.Itoa(i+1)
		}
		c.headers = headers
		for _, h := range headers {
			res.NewColumns = append(res.NewColumns, ColumnEvent{Column: h})
			c.columnSeen[h] = true
		}
		// The first record was data, not a header; re-emit it as row 0.
		for i, f := range fields {
			res.Events = append(res.Events, Event{RowIndex: c.rowIndex, Column: c.headers[i], Value: cellToRawField(f)})
		}
		c.rowIndex++
		return
	}

	headers := make([]string, len(fields))
	for i, h := range fields {
		headers[i] = strings.TrimSpace(h)
	}
	c.headers = headers
	for _, h := range headers {
		res.NewColumns = append(res.NewColumns, ColumnEvent{Column: h})
		c.columnSeen[h] = true
	}
}

func (c *CSVExtractor) parseRecord(line []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(line))
	r.Comma = rune(c.Delimiter)
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// nextRecord scans buf for one complete CSV record, respecting quoted
// fields that may embed the record separator. It returns the record bytes
// (without the trailing terminator), how many bytes of buf it consumed,
// and whether a complete record was found. At EOF any remaining bytes are
// treated as a final (possibly unterminated) record.
func (c *CSVExtractor) nextRecord(buf []byte, atEOF bool) ([]byte, int, bool) {
	inQuotes := false
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				end := i
				if end > 0 && buf[end-1] == '\r' {
					end--
				}
				return buf[:end], i + 1, true
			}
		}
	}
	if atEOF && len(buf) > 0 {
		return buf, len(buf), true
	}
	return nil, 0, false
}

func isEncodingErr(b []byte) bool {
	return !utf8.Valid(b)
}

func cellToRawField(s string) values.RawField {
	if s == "" {
		return values.String("")
	}
	return values.String(s)
}
