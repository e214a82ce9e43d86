package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dataprofile/domain/values"
)

// XLSXExtractor buffers the whole stream (the OOXML zip container cannot
// be tokenized incrementally) and processes the caller-selected sheet on
// the final Feed call (spec.md §4.3 "Excel"). Merged header cells are
// expanded column-wise; native cell types override the string-based type
// inferencer downstream (spec.md §9 Open Question, resolved yes).
type XLSXExtractor struct {
	Sheet     string
	HasHeader bool

	buf      bytes.Buffer
	rowIndex uint64
}

// NewXLSXExtractor returns an extractor bound to one sheet name. If sheet
// is empty, the workbook's first sheet is used.
func NewXLSXExtractor(sheet string, hasHeader bool) *XLSXExtractor {
	return &XLSXExtractor{Sheet: sheet, HasHeader: hasHeader}
}

// Feed implements Extractor.
func (x *XLSXExtractor) Feed(chunk []byte, atEOF bool) (Result, error) {
	x.buf.Write(chunk)
	var res Result
	if !atEOF {
		return res, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(x.buf.Bytes()))
	if err != nil {
		return res, fmt.Errorf("unsupported format: %w", err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return res, fmt.Errorf("malformed header: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return res, fmt.Errorf("malformed header: %w", err)
	}
	if len(rows) == 0 {
		return res, fmt.Errorf("malformed header: sheet %q is empty", sheet)
	}

	headers, dataStart := x.expandMergedHeader(f, sheet, rows)

	columnSeen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if !columnSeen[h] {
			columnSeen[h] = true
			res.NewColumns = append(res.NewColumns, ColumnEvent{Column: h})
		}
	}

	for r := dataStart; r < len(rows); r++ {
		row := rows[r]
		for c, header := range headers {
			var cellValue string
			if c < len(row) {
				cellValue = row[c]
			}
			cellRef, _ := excelize.CoordinatesToCellName(c+1, r+1)
			field := x.cellToRawField(f, sheet, cellRef, cellValue)
			res.Events = append(res.Events, Event{RowIndex: x.rowIndex, Column: header, Value: field})
		}
		x.rowIndex++
	}
	res.TotalRowsSeen = x.rowIndex
	return res, nil
}

// expandMergedHeader expands merged header cells column-wise and returns
// the header row plus the index of the first data row.
func (x *XLSXExtractor) expandMergedHeader(f *excelize.File, sheet string, rows [][]string) ([]string, int) {
	if !x.HasHeader {
		width := 0
		for _, r := range rows {
			if len(r) > width {
				width = len(r)
			}
		}
		headers := make([]string, width)
		for i := range headers {
			headers[i] = "col_" + strconv.Itoa(i+1)
		}
		return headers, 0
	}

	headerRow := rows[0]
	merges, _ := f.GetMergeCells(sheet)
	filled := make([]string, len(headerRow))
	copy(filled, headerRow)

	for i, v := range filled {
		if v != "" {
			continue
		}
		for _, m := range merges {
			start, end := m.GetStartAxis(), m.GetEndAxis()
			sc, sr, _ := excelize.CellNameToCoordinates(start)
			ec, er, _ := excelize.CellNameToCoordinates(end)
			if sr != 1 || er != 1 {
				continue
			}
			if i+1 >= sc && i+1 <= ec {
				filled[i] = m.GetCellValue()
			}
		}
	}

	for i, v := range filled {
		if strings.TrimSpace(v) == "" {
			filled[i] = "col_" + strconv.Itoa(i+1)
		}
	}
	return filled, 1
}

func (x *XLSXExtractor) cellToRawField(f *excelize.File, sheet, cellRef, strVal string) values.RawField {
	if strVal == "" {
		return values.String("")
	}

	cellType, err := f.GetCellType(sheet, cellRef)
	if err != nil {
		return values.String(strVal)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return values.Bool(strings.EqualFold(strVal, "TRUE") || strVal == "1")
	case excelize.CellTypeNumber, excelize.CellTypeDate:
		if i, err := strconv.ParseInt(strVal, 10, 64); err == nil {
			return values.Int64(i)
		}
		if fv, err := strconv.ParseFloat(strVal, 64); err == nil {
			return values.Float64(fv)
		}
		return values.String(strVal)
	default:
		return values.String(strVal)
	}
}
