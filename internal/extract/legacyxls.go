package extract

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	_ "github.com/richardlehane/msoleps" // property-set decoding pulled in for container metadata parity with mscfb's reader chain

	"dataprofile/domain/values"
)

// LegacyXLSExtractor gives best-effort support for the pre-OOXML binary
// .xls container (spec.md §4.3: "legacy .xls best-effort"). It opens the
// OLE2/CFB container via mscfb, locates the Workbook/Book stream, and
// recovers printable string runs; full BIFF8 record parsing (per-cell
// numeric/formula decoding) is out of scope for this best-effort path, so
// every recovered value is treated as a single-column text row. Callers
// that need exact legacy-format fidelity should convert to .xlsx first.
type LegacyXLSExtractor struct {
	buf      bytes.Buffer
	rowIndex uint64
}

// NewLegacyXLSExtractor returns an extractor for the classic .xls format.
func NewLegacyXLSExtractor() *LegacyXLSExtractor {
	return &LegacyXLSExtractor{}
}

// Feed implements Extractor.
func (x *LegacyXLSExtractor) Feed(chunk []byte, atEOF bool) (Result, error) {
	x.buf.Write(chunk)
	var res Result
	if !atEOF {
		return res, nil
	}

	reader, err := mscfb.New(bytes.NewReader(x.buf.Bytes()))
	if err != nil {
		return res, fmt.Errorf("unsupported format: %w", err)
	}

	var workbook []byte
	for entry, err := reader.Next(); err == nil; entry, err = reader.Next() {
		name := entry.Name
		if name == "Workbook" || name == "Book" {
			data, readErr := io.ReadAll(reader)
			if readErr != nil {
				continue
			}
			workbook = data
			break
		}
	}
	if workbook == nil {
		return res, fmt.Errorf("malformed header: no Workbook stream found in CFB container")
	}

	strs := recoverStrings(workbook)
	res.NewColumns = append(res.NewColumns, ColumnEvent{Column: "col_1"})
	for _, s := range strs {
		res.Events = append(res.Events, Event{RowIndex: x.rowIndex, Column: "col_1", Value: values.String(s)})
		x.rowIndex++
	}
	res.TotalRowsSeen = x.rowIndex
	return res, nil
}

// recoverStrings scans raw BIFF8 bytes for UTF-16LE runs of printable
// characters, a best-effort substitute for full record parsing.
func recoverStrings(data []byte) []string {
	var out []string
	var run []uint16

	flush := func() {
		if len(run) >= 3 {
			out = append(out, string(utf16.Decode(run)))
		}
		run = run[:0]
	}

	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		if u >= 0x20 && u < 0x7f {
			run = append(run, u)
		} else {
			flush()
		}
	}
	flush()
	return out
}
