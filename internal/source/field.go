package source

import "strings"

// FieldState tells whether a cell existed and whether it carried anything.
type FieldState int

const (
	// Absent means the column is not part of the table at all.
	Absent FieldState = iota
	// Blank means the column exists but the cell is empty or whitespace.
	Blank
	// Present means the cell holds a non-blank value.
	Present
)

func (s FieldState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Blank:
		return "blank"
	default:
		return "present"
	}
}

// Field is a single cell value as read from an extract. Raw keeps the cell
// text untouched; trimming is a transformation, not an ingestion concern.
type Field struct {
	State FieldState
	Raw   string
}

// Value wraps s as a field, classifying whitespace-only text as Blank.
func Value(s string) Field {
	if strings.TrimSpace(s) == "" {
		return Field{State: Blank, Raw: s}
	}
	return Field{State: Present, Raw: s}
}

// Empty reports whether the field carries no usable value.
func (f Field) Empty() bool { return f.State != Present }

// String returns the trimmed value, or "" for absent/blank fields.
func (f Field) String() string {
	if f.Empty() {
		return ""
	}
	return strings.TrimSpace(f.Raw)
}
