package transform

import (
	"fmt"

	"hcm-migrate/internal/mapping"
)

// CellError reports a transformation that failed for a single cell. The
// cell keeps its original value; the run continues.
type CellError struct {
	Field string
	Kind  mapping.Kind
	Line  int
	Value string
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("line %d, %s (%s) on %q: %v", e.Line, e.Field, e.Kind, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
