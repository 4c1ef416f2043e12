package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseCSV parses a delimited extract. The delimiter is sniffed from the
// header line (comma, semicolon or tab). Ragged rows are padded or truncated
// to the header width and reported as warnings.
func ParseCSV(name string, data []byte) (*Table, error) {
	decoded, enc, err := DetectAndDecode(data)
	if err != nil {
		return nil, &ShapeError{File: name, Reason: fmt.Sprintf("unreadable encoding: %v", err)}
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = sniffDelimiter(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ShapeError{File: name, Reason: "empty file: no header row found"}
		}
		return nil, &ShapeError{File: name, Reason: fmt.Sprintf("failed to read header row: %v", err)}
	}

	t := &Table{Name: name, Encoding: enc}
	t.Header, t.Warnings = cleanHeader(header)
	width := len(t.Header)

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line, _ := reader.FieldPos(0)
		if err != nil {
			t.Warnings = append(t.Warnings, Warning{Line: line, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		if blankRecord(rec) {
			continue
		}

		if len(rec) < width {
			t.Warnings = append(t.Warnings, Warning{
				Line:    line,
				Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(rec), width),
			})
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		} else if len(rec) > width {
			t.Warnings = append(t.Warnings, Warning{
				Line:    line,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(rec), width),
			})
			rec = rec[:width]
		}

		cells := make(map[string]string, width)
		for i, h := range t.Header {
			cells[h] = rec[i]
		}
		t.Rows = append(t.Rows, Row{Line: line, Cells: cells})
	}

	if len(t.Rows) == 0 {
		return nil, &ShapeError{File: name, Reason: "file contains no data rows"}
	}
	return t, nil
}

// WriteCSV writes the table back out as comma-separated text, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	rec := make([]string, len(t.Header))
	for _, r := range t.Rows {
		for i, h := range t.Header {
			rec[i] = r.Cells[h]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write line %d: %w", r.Line, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	best, bestCount := ',', bytes.Count(first, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(first, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// cleanHeader trims header cells and disambiguates repeated names the way
// spreadsheet tools do ("Name", "Name.1").
func cleanHeader(raw []string) ([]string, []Warning) {
	var warnings []Warning
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			renamed := fmt.Sprintf("%s.%d", h, n)
			warnings = append(warnings, Warning{Line: 1, Message: fmt.Sprintf("duplicate column %q renamed to %q", h, renamed)})
			seen[h] = n + 1
			h = renamed
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out, warnings
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
