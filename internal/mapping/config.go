package mapping

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrNoRules is returned when a file family has no mapping rules at all.
var ErrNoRules = errors.New("no mapping rules configured")

// Defaults holds the fallback values for fields every target file carries.
type Defaults struct {
	Status          string `yaml:"status"`
	HRFlag          string `yaml:"hr_flag"`
	Timezone        string `yaml:"timezone"`
	Locale          string `yaml:"locale"`
	Country         string `yaml:"country"`
	ReviewFrequency string `yaml:"review_frequency"`
}

// Config is the complete mapping configuration for a migration run.
type Config struct {
	Rules      []Rule                       `yaml:"rules"`
	LevelNames map[int]string               `yaml:"level_names,omitempty"`
	Defaults   Defaults                     `yaml:"defaults"`
	Lookups    map[string]map[string]string `yaml:"lookups,omitempty"`
}

// For returns the rules feeding files of kind t, in configured order.
func (c *Config) For(t Target) []Rule {
	var out []Rule
	for _, r := range c.Rules {
		if r.Feeds(t) {
			out = append(out, r)
		}
	}
	return out
}

// RulesFor is For with ErrNoRules when nothing matches.
func (c *Config) RulesFor(t Target) ([]Rule, error) {
	rules := c.For(t)
	if len(rules) == 0 {
		return nil, fmt.Errorf("%s files: %w", strings.ToLower(string(t)), ErrNoRules)
	}
	return rules, nil
}

// DefaultFor resolves the default a rule falls back to: its own default
// value, or the common default for well-known target fields.
func (c *Config) DefaultFor(r Rule) string {
	if r.DefaultValue != "" {
		return r.DefaultValue
	}
	switch strings.ToLower(r.TargetField) {
	case "effectivestatus", "status":
		return c.Defaults.Status
	case "hr", "hrflag", "cust_hr":
		return c.Defaults.HRFlag
	case "timezone", "cust_timezone":
		return c.Defaults.Timezone
	case "locale", "cust_locale":
		return c.Defaults.Locale
	case "country", "cust_country":
		return c.Defaults.Country
	case "reviewfrequency", "cust_reviewfrequency":
		return c.Defaults.ReviewFrequency
	}
	return ""
}

// Validate checks every rule and that both file families have rules.
func (c *Config) Validate() error {
	var errs []error
	for i, r := range c.Rules {
		if strings.TrimSpace(r.TargetField) == "" {
			errs = append(errs, fmt.Errorf("rule %d: target field is required", i+1))
		}
		if r.SourceFile != HRP1000 && r.SourceFile != HRP1001 {
			errs = append(errs, fmt.Errorf("rule %d (%s): unknown source file %q", i+1, r.TargetField, r.SourceFile))
		}
		if !r.Transformation.Known() {
			errs = append(errs, fmt.Errorf("rule %d (%s): unknown transformation %q", i+1, r.TargetField, r.Transformation))
		}
		switch r.AppliesTo {
		case TargetLevel, TargetAssociation, TargetBoth:
		default:
			errs = append(errs, fmt.Errorf("rule %d (%s): unknown target %q", i+1, r.TargetField, r.AppliesTo))
		}
		if r.Transformation == KindExpr && strings.TrimSpace(r.Expression) == "" {
			errs = append(errs, fmt.Errorf("rule %d (%s): custom expression is empty", i+1, r.TargetField))
		}
		if r.Transformation == KindLookup && r.LookupTable != "" {
			if _, ok := c.Lookups[r.LookupTable]; !ok && r.LookupTable != DefaultLookup {
				errs = append(errs, fmt.Errorf("rule %d (%s): unknown lookup table %q", i+1, r.TargetField, r.LookupTable))
			}
		}
	}
	for _, t := range []Target{TargetLevel, TargetAssociation} {
		if _, err := c.RulesFor(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy so a running session is unaffected by later
// edits to the stored configuration.
func (c *Config) Clone() *Config {
	out := &Config{
		Rules:      slices.Clone(c.Rules),
		LevelNames: maps.Clone(c.LevelNames),
		Defaults:   c.Defaults,
	}
	if c.Lookups != nil {
		out.Lookups = make(map[string]map[string]string, len(c.Lookups))
		for k, v := range c.Lookups {
			out.Lookups[k] = maps.Clone(v)
		}
	}
	return out
}
