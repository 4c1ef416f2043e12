package dialect

import "fmt"

type MSSQLDialect struct{}

// Helper: MSSQL Driver (go-mssqldb) prefers @p1, @p2 named parameters over ?

func (d *MSSQLDialect) Driver() string { return "sqlserver" }

func (d *MSSQLDialect) ColumnType(t ColumnType) string {
	switch t {
	case Int:
		return "INT"
	case Text:
		return "NVARCHAR(MAX)"
	default:
		return "NVARCHAR(255)"
	}
}

// CreateTableQuery guards with OBJECT_ID since older SQL Server versions
// have no IF NOT EXISTS for tables.
func (d *MSSQLDialect) CreateTableQuery(t TableDef) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", t.Name, t.Name, columnList(t, d.ColumnType))
}

func (d *MSSQLDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(table, cols, d.Placeholder)
}

func (d *MSSQLDialect) SelectQuery(table string, cols []string, orderBy ...string) string {
	return defaultSelectQuery(table, cols, orderBy)
}

func (d *MSSQLDialect) DeleteQuery(table string) string {
	return defaultDeleteQuery(table)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}
