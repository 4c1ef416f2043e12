package dialect

import "fmt"

type OracleDialect struct{}

func (d *OracleDialect) Driver() string { return "oracle" }

func (d *OracleDialect) ColumnType(t ColumnType) string {
	switch t {
	case Int:
		return "NUMBER(10)"
	case Text:
		return "VARCHAR2(4000)"
	default:
		return "VARCHAR2(255)"
	}
}

// CreateTableQuery swallows ORA-00955 (name already used) so the call is
// repeatable on releases without IF NOT EXISTS.
func (d *OracleDialect) CreateTableQuery(t TableDef) string {
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, columnList(t, d.ColumnType))
	return fmt.Sprintf("BEGIN EXECUTE IMMEDIATE '%s'; EXCEPTION WHEN OTHERS THEN IF SQLCODE != -955 THEN RAISE; END IF; END;", ddl)
}

func (d *OracleDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(table, cols, d.Placeholder)
}

func (d *OracleDialect) SelectQuery(table string, cols []string, orderBy ...string) string {
	return defaultSelectQuery(table, cols, orderBy)
}

func (d *OracleDialect) DeleteQuery(table string) string {
	return defaultDeleteQuery(table)
}

func (d *OracleDialect) Placeholder(index int) string {
	return fmt.Sprintf(":%d", index+1)
}
