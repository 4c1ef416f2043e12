package export

import (
	"fmt"
	"strings"

	"hcm-migrate/internal/mapping"
)

// HeaderRows is the number of rows preceding the data in every file.
const HeaderRows = 4

const (
	// OperatorField replaces the machine name of the operator column.
	OperatorField = "[OPERATOR]"
	// OperatorLabel replaces the label of the operator column.
	OperatorLabel = "Supported operators: Delimit, Clear and Delete"
)

// Format is an output file format.
type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case XLSX, CSV:
		return f, nil
	case "":
		return XLSX, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want xlsx or csv)", s)
	}
}

// GeneratedFile is one Level or Association file ready to be written.
type GeneratedFile struct {
	Kind     mapping.Target
	Level    int
	Name     string
	Filename string
	Header   [HeaderRows][]string
	Rows     [][]string
	// SourceLines holds, per data row, the source line it was built from.
	SourceLines []int
	Warnings    []string
	CellErrors  int
}

// DataRows returns the number of rows below the header.
func (f *GeneratedFile) DataRows() int { return len(f.Rows) }

// Width returns the number of columns.
func (f *GeneratedFile) Width() int { return len(f.Header[0]) }

// Records returns the header rows followed by the data rows.
func (f *GeneratedFile) Records() [][]string {
	out := make([][]string, 0, HeaderRows+len(f.Rows))
	for _, h := range f.Header {
		out = append(out, h)
	}
	return append(out, f.Rows...)
}

// FileName returns the filename with the extension for format.
func (f *GeneratedFile) FileName(format Format) string {
	return f.Filename + "." + string(format)
}

// Column returns the data values of the column whose machine name is field.
func (f *GeneratedFile) Column(field string) []string {
	idx := -1
	for i, h := range f.Header[0] {
		if h == field {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[idx]
	}
	return out
}

func (f *GeneratedFile) warnf(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

// buildHeader renders the four header rows for rules.
func buildHeader(kind mapping.Target, rules []mapping.Rule) [HeaderRows][]string {
	var h [HeaderRows][]string
	width := len(rules)
	h[0] = make([]string, width)
	h[1] = make([]string, width)
	h[2] = make([]string, width)
	h[3] = make([]string, width)
	for i, r := range rules {
		h[0][i] = r.TargetField
		h[1][i] = r.Label()
	}
	if width == 0 {
		return h
	}

	op := -1
	switch kind {
	case mapping.TargetLevel:
		op = 0
	case mapping.TargetAssociation:
		for i, r := range rules {
			if r.TargetField == "Operator" {
				op = i
				break
			}
		}
	}
	if op >= 0 {
		h[0][op] = OperatorField
		h[1][op] = OperatorLabel
	}
	return h
}
