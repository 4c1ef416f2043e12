package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the file as comma-separated text, header rows included.
func WriteCSV(w io.Writer, f *GeneratedFile) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(f.Records()); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Filename, err)
	}
	return nil
}

// WriteXLSX writes the file as a single-sheet workbook. Every cell is
// written as text so identifiers keep their leading zeros.
func WriteXLSX(w io.Writer, f *GeneratedFile) error {
	x := excelize.NewFile()
	defer x.Close()

	sheet := sheetName(f.Name)
	if err := x.SetSheetName(x.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, rec := range f.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cell, &rec); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, f.Filename, err)
		}
	}

	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := x.SetRowStyle(sheet, 1, 2, bold); err != nil {
		return err
	}

	if err := x.Write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Filename, err)
	}
	return nil
}

// sheetName fits a level name into Excel's sheet-name rules.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		name = "Sheet1"
	}
	return name
}

// WriteDir writes every file into dir and returns the written paths.
// onWrite, when set, is called after each file.
func WriteDir(dir string, files []*GeneratedFile, format Format, onWrite func(*GeneratedFile)) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	write := WriteXLSX
	if format == CSV {
		write = WriteCSV
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.FileName(format))
		out, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := write(out, f); err != nil {
			out.Close()
			return paths, err
		}
		if err := out.Close(); err != nil {
			return paths, fmt.Errorf("failed to close %s: %w", path, err)
		}
		paths = append(paths, path)
		if onWrite != nil {
			onWrite(f)
		}
	}
	return paths, nil
}
