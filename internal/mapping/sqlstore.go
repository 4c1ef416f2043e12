package mapping

import (
	"context"
	"database/sql"
	"fmt"

	"hcm-migrate/internal/dialect"
)

var (
	rulesTable = dialect.TableDef{Name: "hcm_mapping_rules", Columns: []dialect.Column{
		{Name: "rule_order", Type: dialect.Int},
		{Name: "target_field", Type: dialect.String},
		{Name: "target_label", Type: dialect.String},
		{Name: "source_file", Type: dialect.String},
		{Name: "source_column", Type: dialect.String},
		{Name: "secondary_column", Type: dialect.String},
		{Name: "transformation", Type: dialect.String},
		{Name: "expression", Type: dialect.Text},
		{Name: "default_value", Type: dialect.String},
		{Name: "lookup_table", Type: dialect.String},
		{Name: "applies_to", Type: dialect.String},
	}}
	levelNamesTable = dialect.TableDef{Name: "hcm_level_names", Columns: []dialect.Column{
		{Name: "level_no", Type: dialect.Int},
		{Name: "level_name", Type: dialect.String},
	}}
	lookupsTable = dialect.TableDef{Name: "hcm_lookups", Columns: []dialect.Column{
		{Name: "lookup_name", Type: dialect.String},
		{Name: "lookup_code", Type: dialect.String},
		{Name: "lookup_label", Type: dialect.String},
	}}
	defaultsTable = dialect.TableDef{Name: "hcm_defaults", Columns: []dialect.Column{
		{Name: "setting_key", Type: dialect.String},
		{Name: "setting_value", Type: dialect.String},
	}}

	storeTables = []dialect.TableDef{rulesTable, levelNamesTable, lookupsTable, defaultsTable}
)

// SQLStore keeps the configuration in relational tables so several
// consultants can share one mapping set.
type SQLStore struct {
	DB      *sql.DB
	Dialect dialect.Dialect
}

var _ Store = (*SQLStore)(nil)

// OpenSQLStore connects to dsn with the driver's dialect and creates the
// store tables when they are missing.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := dialect.GetDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mapping store: %w", err)
	}
	s := &SQLStore{DB: db, Dialect: d}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.DB.Close()
}

// Migrate creates the store tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, t := range storeTables {
		if _, err := s.DB.ExecContext(ctx, s.Dialect.CreateTableQuery(t)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// Load reads the stored configuration. An empty rule table yields the
// default configuration.
func (s *SQLStore) Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.SelectQuery(rulesTable.Name, rulesTable.Names(), "rule_order"))
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping rules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var order int
		var f [10]sql.NullString
		if err := rows.Scan(&order, &f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &f[6], &f[7], &f[8], &f[9]); err != nil {
			return nil, fmt.Errorf("failed to scan mapping rule: %w", err)
		}
		cfg.Rules = append(cfg.Rules, Rule{
			TargetField:     f[0].String,
			TargetLabel:     f[1].String,
			SourceFile:      SourceFile(f[2].String),
			SourceColumn:    f[3].String,
			SecondaryColumn: f[4].String,
			Transformation:  Kind(f[5].String),
			Expression:      f[6].String,
			DefaultValue:    f[7].String,
			LookupTable:     f[8].String,
			AppliesTo:       Target(f[9].String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(cfg.Rules) == 0 {
		return DefaultConfig(), nil
	}

	if err := s.loadLevelNames(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.loadLookups(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.loadDefaults(ctx, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (s *SQLStore) loadLevelNames(ctx context.Context, cfg *Config) error {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.SelectQuery(levelNamesTable.Name, levelNamesTable.Names(), "level_no"))
	if err != nil {
		return fmt.Errorf("failed to query level names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level int
		var name sql.NullString
		if err := rows.Scan(&level, &name); err != nil {
			return fmt.Errorf("failed to scan level name: %w", err)
		}
		if cfg.LevelNames == nil {
			cfg.LevelNames = map[int]string{}
		}
		cfg.LevelNames[level] = name.String
	}
	return rows.Err()
}

func (s *SQLStore) loadLookups(ctx context.Context, cfg *Config) error {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.SelectQuery(lookupsTable.Name, lookupsTable.Names(), "lookup_name", "lookup_code"))
	if err != nil {
		return fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, code, label sql.NullString
		if err := rows.Scan(&name, &code, &label); err != nil {
			return fmt.Errorf("failed to scan lookup: %w", err)
		}
		if cfg.Lookups == nil {
			cfg.Lookups = map[string]map[string]string{}
		}
		if cfg.Lookups[name.String] == nil {
			cfg.Lookups[name.String] = map[string]string{}
		}
		cfg.Lookups[name.String][code.String] = label.String
	}
	return rows.Err()
}

func (s *SQLStore) loadDefaults(ctx context.Context, cfg *Config) error {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.SelectQuery(defaultsTable.Name, defaultsTable.Names()))
	if err != nil {
		return fmt.Errorf("failed to query defaults: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan default: %w", err)
		}
		if field := cfg.Defaults.field(key.String); field != nil {
			*field = value.String
		}
	}
	return rows.Err()
}

// Save replaces the stored configuration in a single transaction.
func (s *SQLStore) Save(ctx context.Context, cfg *Config) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range storeTables {
		if _, err := tx.ExecContext(ctx, s.Dialect.DeleteQuery(t.Name)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", t.Name, err)
		}
	}

	insert := func(t dialect.TableDef, args ...any) error {
		if _, err := tx.ExecContext(ctx, s.Dialect.InsertQuery(t.Name, t.Names()), args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
		return nil
	}

	for i, r := range cfg.Rules {
		if err := insert(rulesTable, i, r.TargetField, r.TargetLabel, string(r.SourceFile), r.SourceColumn,
			r.SecondaryColumn, string(r.Transformation), r.Expression, r.DefaultValue, r.LookupTable, string(r.AppliesTo)); err != nil {
			return err
		}
	}
	for level, name := range cfg.LevelNames {
		if err := insert(levelNamesTable, level, name); err != nil {
			return err
		}
	}
	for name, table := range cfg.Lookups {
		for code, label := range table {
			if err := insert(lookupsTable, name, code, label); err != nil {
				return err
			}
		}
	}
	for _, kv := range cfg.Defaults.pairs() {
		if err := insert(defaultsTable, kv[0], kv[1]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mapping configuration: %w", err)
	}
	return nil
}

func (d *Defaults) field(key string) *string {
	switch key {
	case "status":
		return &d.Status
	case "hr_flag":
		return &d.HRFlag
	case "timezone":
		return &d.Timezone
	case "locale":
		return &d.Locale
	case "country":
		return &d.Country
	case "review_frequency":
		return &d.ReviewFrequency
	}
	return nil
}

func (d Defaults) pairs() [][2]string {
	return [][2]string{
		{"status", d.Status},
		{"hr_flag", d.HRFlag},
		{"timezone", d.Timezone},
		{"locale", d.Locale},
		{"country", d.Country},
		{"review_frequency", d.ReviewFrequency},
	}
}
