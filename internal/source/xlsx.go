package source

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first worksheet of a workbook. Row numbers follow the
// worksheet, so blank rows keep their place in the numbering.
func ParseXLSX(name string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ShapeError{File: name, Reason: fmt.Sprintf("unreadable workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ShapeError{File: name, Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ShapeError{File: name, Reason: fmt.Sprintf("failed to read sheet %q: %v", sheets[0], err)}
	}

	start := -1
	for i, rec := range rows {
		if !blankRecord(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, &ShapeError{File: name, Reason: "empty file: no header row found"}
	}

	t := &Table{Name: name, Encoding: "xlsx"}
	t.Header, t.Warnings = cleanHeader(rows[start])
	for i := range t.Warnings {
		t.Warnings[i].Line = start + 1
	}
	width := len(t.Header)

	for i := start + 1; i < len(rows); i++ {
		rec := rows[i]
		if blankRecord(rec) {
			continue
		}
		line := i + 1
		if len(rec) > width {
			t.Warnings = append(t.Warnings, Warning{
				Line:    line,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(rec), width),
			})
			rec = rec[:width]
		}
		// excelize trims trailing empty cells, so short rows are normal here
		cells := make(map[string]string, width)
		for j, h := range t.Header {
			if j < len(rec) {
				cells[h] = rec[j]
			} else {
				cells[h] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Line: line, Cells: cells})
	}

	if len(t.Rows) == 0 {
		return nil, &ShapeError{File: name, Reason: "file contains no data rows"}
	}
	return t, nil
}
