package mapping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Store persists mapping configurations.
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

// FileStore keeps the configuration in a YAML document.
type FileStore struct {
	Path string
}

var _ Store = (*FileStore)(nil)

// Load reads the document. A missing file yields the default configuration.
func (s *FileStore) Load(ctx context.Context) (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return Decode(data)
}

// Save writes the configuration as YAML.
func (s *FileStore) Save(ctx context.Context, cfg *Config) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	return nil
}

// Decode parses a YAML mapping document and fills unset sections from the
// defaults.
func Decode(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mapping document: %w", err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// Encode renders a configuration as YAML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode mapping document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Config) fillDefaults() {
	def := DefaultDefaults()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&c.Defaults.Status, def.Status)
	fill(&c.Defaults.HRFlag, def.HRFlag)
	fill(&c.Defaults.Timezone, def.Timezone)
	fill(&c.Defaults.Locale, def.Locale)
	fill(&c.Defaults.Country, def.Country)
	fill(&c.Defaults.ReviewFrequency, def.ReviewFrequency)

	if c.Lookups == nil {
		c.Lookups = map[string]map[string]string{}
	}
	for name, table := range DefaultLookups() {
		if _, ok := c.Lookups[name]; !ok {
			c.Lookups[name] = table
		}
	}
	for i := range c.Rules {
		if c.Rules[i].Transformation == "" {
			c.Rules[i].Transformation = KindNone
		}
	}
}
