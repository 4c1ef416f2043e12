package dialect

import "fmt"

type PostgresDialect struct{}

func (d *PostgresDialect) Driver() string { return "postgres" }

func (d *PostgresDialect) ColumnType(t ColumnType) string {
	switch t {
	case Int:
		return "INTEGER"
	case Text:
		return "TEXT"
	default:
		return "VARCHAR(255)"
	}
}

func (d *PostgresDialect) CreateTableQuery(t TableDef) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, columnList(t, d.ColumnType))
}

func (d *PostgresDialect) InsertQuery(table string, cols []string) string {
	// Generate placeholders ($1, $2, ...)
	return defaultInsertQuery(table, cols, d.Placeholder)
}

func (d *PostgresDialect) SelectQuery(table string, cols []string, orderBy ...string) string {
	return defaultSelectQuery(table, cols, orderBy)
}

func (d *PostgresDialect) DeleteQuery(table string) string {
	return defaultDeleteQuery(table)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}
