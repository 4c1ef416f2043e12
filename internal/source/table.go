package source

import (
	"fmt"
	"strings"
)

// Row is one data row of an extract. Line is the spreadsheet row number
// (the header is line 1, so the first data row is line 2).
type Row struct {
	Line  int
	Cells map[string]string
}

// Field returns the cell for column col.
func (r Row) Field(col string) Field {
	v, ok := r.Cells[col]
	if !ok {
		return Field{State: Absent}
	}
	return Value(v)
}

// Table is a parsed HRP1000 or HRP1001 extract.
type Table struct {
	Name     string
	Header   []string
	Rows     []Row
	Encoding string
	Warnings []Warning
}

// Warning describes a non-fatal irregularity found while parsing.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether col is one of the header names.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of cols not found in the header,
// in the order given.
func (t *Table) MissingColumns(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if c == "" {
			continue
		}
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// RequireColumns returns a *ShapeError listing every required column the
// table lacks.
func (t *Table) RequireColumns(cols ...string) error {
	if t == nil {
		return &ShapeError{Reason: "no table loaded"}
	}
	if missing := t.MissingColumns(cols...); len(missing) > 0 {
		return &ShapeError{File: t.Name, Missing: missing}
	}
	return nil
}

// ShapeError reports an input file that cannot be used as a source table.
type ShapeError struct {
	File    string
	Missing []string
	Reason  string
}

func (e *ShapeError) Error() string {
	name := e.File
	if name == "" {
		name = "input"
	}
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", name, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", name, e.Reason)
}
