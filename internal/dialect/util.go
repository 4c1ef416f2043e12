package dialect

import (
	"fmt"
	"strings"
)

// ColumnType is the portable column type used in table definitions.
type ColumnType int

const (
	Int ColumnType = iota
	String
	Text
)

// Column is one column of a TableDef.
type Column struct {
	Name string
	Type ColumnType
}

// TableDef describes a table the store owns.
type TableDef struct {
	Name    string
	Columns []Column
}

// Names returns the column names in declaration order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// GeneratePlaceholders is a helper function to create a slice of placeholder strings.
// It takes the number of placeholders needed and a function that returns the placeholder for a given index.
// It returns a comma-separated string of the generated placeholders.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// columnList renders "name type, name type" for a CREATE TABLE body.
func columnList(t TableDef, typeOf func(ColumnType) string) string {
	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		parts[i] = fmt.Sprintf("%s %s", c.Name, typeOf(c.Type))
	}
	return strings.Join(parts, ", ")
}

func defaultInsertQuery(table string, cols []string, placeholder func(int) string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), GeneratePlaceholders(len(cols), placeholder))
}

func defaultSelectQuery(table string, cols []string, orderBy []string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	if len(orderBy) > 0 {
		q += " ORDER BY " + strings.Join(orderBy, ", ")
	}
	return q
}

func defaultDeleteQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s", table)
}
