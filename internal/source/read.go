package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile loads an extract from disk, choosing the parser by extension.
// Known header aliases are renamed to the standard SAP headers; required
// names the columns the caller needs and decides how ambiguous aliases
// such as OBJID are read.
func ReadFile(path string, required ...string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		t, err = ParseXLSX(name, bytes.NewReader(data))
	case ".csv", ".txt", ".tsv", "":
		t, err = ParseCSV(name, data)
	default:
		return nil, &ShapeError{File: name, Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	if err != nil {
		return nil, err
	}
	CanonicalHeaders(t, required...)
	return t, nil
}
