package dialect

// Dialect abstracts database-specific SQL for the mapping store.
type Dialect interface {
	// Driver is the database/sql driver name to open connections with.
	Driver() string

	// DDL
	CreateTableQuery(t TableDef) string
	ColumnType(t ColumnType) string

	// Query Generation
	InsertQuery(table string, cols []string) string
	SelectQuery(table string, cols []string, orderBy ...string) string
	DeleteQuery(table string) string
	Placeholder(index int) string // Returns ?, $1, @p1, :1
}
