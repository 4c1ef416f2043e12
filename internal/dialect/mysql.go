package dialect

import "fmt"

type MysqlDialect struct{}

func (d *MysqlDialect) Driver() string { return "mysql" }

func (d *MysqlDialect) ColumnType(t ColumnType) string {
	switch t {
	case Int:
		return "INT"
	case Text:
		return "TEXT"
	default:
		return "VARCHAR(255)"
	}
}

func (d *MysqlDialect) CreateTableQuery(t TableDef) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) DEFAULT CHARSET=utf8mb4", t.Name, columnList(t, d.ColumnType))
}

func (d *MysqlDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(table, cols, d.Placeholder)
}

func (d *MysqlDialect) SelectQuery(table string, cols []string, orderBy ...string) string {
	return defaultSelectQuery(table, cols, orderBy)
}

// DeleteQuery uses DELETE rather than TRUNCATE, which would commit the
// surrounding transaction implicitly.
func (d *MysqlDialect) DeleteQuery(table string) string {
	return defaultDeleteQuery(table)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}
