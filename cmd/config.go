package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/session"
	"hcm-migrate/internal/source"
)

// StoreConfig is one entry of mapping.stores: a database holding a shared
// mapping rule set.
type StoreConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

// activeStore picks the one entry of stores marked active.
func activeStore(stores []StoreConfig) (StoreConfig, error) {
	var active []string
	pick := -1
	for i, sc := range stores {
		if sc.Active {
			active = append(active, sc.Name)
			pick = i
		}
	}
	switch len(active) {
	case 0:
		return StoreConfig{}, fmt.Errorf("no active store among %d configured (set active: true)", len(stores))
	case 1:
		return stores[pick], nil
	default:
		return StoreConfig{}, fmt.Errorf("multiple active stores %s, only one can be active", strings.Join(active, ", "))
	}
}

// openActiveStore connects to the active entry of mapping.stores.
func openActiveStore(ctx context.Context) (*mapping.SQLStore, StoreConfig, error) {
	var stores []StoreConfig
	if err := viper.UnmarshalKey("mapping.stores", &stores); err != nil {
		return nil, StoreConfig{}, fmt.Errorf("mapping.stores: %w", err)
	}
	sc, err := activeStore(stores)
	if err != nil {
		return nil, sc, fmt.Errorf("mapping.stores: %w", err)
	}
	store, err := mapping.OpenSQLStore(ctx, sc.Driver, sc.DSN)
	if err != nil {
		return nil, sc, fmt.Errorf("mapping store %q (%s): %w", sc.Name, sc.Driver, err)
	}
	return store, sc, nil
}

// loadMappingConfig resolves the mapping rules: mapping.file when set, else
// the active mapping store, else the built-in defaults.
func loadMappingConfig(ctx context.Context) (*mapping.Config, error) {
	var (
		cfg *mapping.Config
		err error
	)
	if path := viper.GetString("mapping.file"); path != "" {
		cfg, err = (&mapping.FileStore{Path: path}).Load(ctx)
		if err != nil {
			return nil, err
		}
		Log.WithField("file", path).Info("mapping rules loaded")
	} else if viper.IsSet("mapping.stores") {
		store, sc, err := openActiveStore(ctx)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if cfg, err = store.Load(ctx); err != nil {
			return nil, err
		}
		Log.WithField("store", sc.Name).Info("mapping rules loaded")
	} else {
		cfg = mapping.DefaultConfig()
		Log.Debug("using built-in mapping rules")
	}

	// Missing rules only stop the affected file family, so this is not fatal.
	if err := cfg.Validate(); err != nil {
		Log.WithError(err).Warn("mapping configuration has problems")
	}
	return cfg, nil
}

func sessionOptions() (session.Options, error) {
	opts := session.DefaultOptions()
	if err := viper.UnmarshalKey("columns", &opts.Columns); err != nil {
		return opts, fmt.Errorf("failed to parse columns config: %w", err)
	}
	opts.Columns = opts.Columns.WithDefaults()
	opts.Hierarchy = hierarchy.Options{ActiveOnly: viper.GetBool("hierarchy.active_only")}

	v := &opts.Validate
	v.MaxDepth = viper.GetInt("limits.max_depth")
	v.MaxSpan = viper.GetInt("limits.max_span")
	v.LossThreshold = viper.GetFloat64("limits.loss_threshold")
	v.EmptyCellRatio = viper.GetFloat64("limits.empty_cell_ratio")
	v.SampleLimit = viper.GetInt("limits.sample_limit")
	if p := viper.GetString("limits.id_pattern"); p != "" {
		v.IDPattern = p
	}
	return opts, nil
}

// openSession loads the mapping rules and both extracts named in the config.
func openSession(ctx context.Context) (*session.Session, error) {
	cfg, err := loadMappingConfig(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := sessionOptions()
	if err != nil {
		return nil, err
	}
	s := session.New(cfg, opts, Log)

	if err := s.LoadUnits(viper.GetString("sources.units")); err != nil {
		return nil, fmt.Errorf("units: %w", err)
	}
	if err := s.LoadRelationships(viper.GetString("sources.relationships")); err != nil {
		return nil, fmt.Errorf("relationships: %w", err)
	}
	return s, nil
}

func init() {
	limits := hierarchy.DefaultLimits()
	viper.SetDefault("limits.max_depth", limits.MaxDepth)
	viper.SetDefault("limits.max_span", limits.MaxSpan)
	viper.SetDefault("limits.loss_threshold", 0.10)
	viper.SetDefault("limits.empty_cell_ratio", 0.30)
	viper.SetDefault("limits.sample_limit", 15)
	viper.SetDefault("hierarchy.active_only", false)

	d := source.DefaultColumns()
	viper.SetDefault("columns.unit_id", d.UnitID)
	viper.SetDefault("columns.rel_child", d.RelChild)
	viper.SetDefault("columns.rel_parent", d.RelParent)
}
