package dialect_test

import (
	"strings"
	"testing"

	"hcm-migrate/internal/dialect"
)

var table = dialect.TableDef{Name: "t", Columns: []dialect.Column{
	{Name: "id", Type: dialect.Int},
	{Name: "name", Type: dialect.String},
}}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", "INSERT INTO t (id, name) VALUES (?, ?)"},
		{"sqlite", "INSERT INTO t (id, name) VALUES (?, ?)"},
		{"postgres", "INSERT INTO t (id, name) VALUES ($1, $2)"},
		{"sqlserver", "INSERT INTO t (id, name) VALUES (@p1, @p2)"},
		{"oracle", "INSERT INTO t (id, name) VALUES (:1, :2)"},
	}

	for _, tt := range tests {
		d, err := dialect.GetDialect(tt.driver)
		if err != nil {
			t.Fatalf("GetDialect(%q): %v", tt.driver, err)
		}
		if got := d.InsertQuery(table.Name, table.Names()); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestCreateTableQuery(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlserver", "oracle", "sqlite"} {
		d, err := dialect.GetDialect(driver)
		if err != nil {
			t.Fatal(err)
		}
		q := d.CreateTableQuery(table)
		if !strings.Contains(q, "CREATE TABLE") || !strings.Contains(q, "name "+d.ColumnType(dialect.String)) {
			t.Errorf("%s: unexpected DDL %q", driver, q)
		}
	}
}

func TestSelectQuery(t *testing.T) {
	d, _ := dialect.GetDialect("postgres")
	got := d.SelectQuery("t", []string{"id", "name"}, "id")
	if got != "SELECT id, name FROM t ORDER BY id" {
		t.Errorf("got %q", got)
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := dialect.GetDialect("db2"); err == nil {
		t.Error("expected error for unknown driver")
	}
}
