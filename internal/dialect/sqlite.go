package dialect

import "fmt"

// SqliteDialect targets modernc.org/sqlite, the default local mapping store.
type SqliteDialect struct{}

func (d *SqliteDialect) Driver() string { return "sqlite" }

func (d *SqliteDialect) ColumnType(t ColumnType) string {
	if t == Int {
		return "INTEGER"
	}
	return "TEXT"
}

func (d *SqliteDialect) CreateTableQuery(t TableDef) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, columnList(t, d.ColumnType))
}

func (d *SqliteDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(table, cols, d.Placeholder)
}

func (d *SqliteDialect) SelectQuery(table string, cols []string, orderBy ...string) string {
	return defaultSelectQuery(table, cols, orderBy)
}

func (d *SqliteDialect) DeleteQuery(table string) string {
	return defaultDeleteQuery(table)
}

func (d *SqliteDialect) Placeholder(index int) string {
	return "?"
}
