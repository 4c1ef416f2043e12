package mapping

import "strings"

// Kind is the transformation a rule applies to its source value.
type Kind string

const (
	KindNone      Kind = "None"
	KindTrim      Kind = "Trim Whitespace"
	KindTitle     Kind = "Title Case"
	KindUpper     Kind = "UPPERCASE"
	KindLower     Kind = "lowercase"
	KindLookup    Kind = "Lookup Value"
	KindConcat    Kind = "Concatenate"
	KindDate      Kind = "Date Format (YYYY-MM-DD)"
	KindExpr      Kind = "Custom Expression"
	KindFirstWord Kind = "Extract First Word"
)

// Kinds lists every supported transformation in display order.
var Kinds = []Kind{
	KindNone, KindTrim, KindTitle, KindUpper, KindLower,
	KindLookup, KindConcat, KindDate, KindExpr, KindFirstWord,
}

// Known reports whether k is a supported transformation. An empty kind
// counts as None.
func (k Kind) Known() bool {
	if k == "" {
		return true
	}
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Target says which generated file family a rule feeds.
type Target string

const (
	TargetLevel       Target = "Level"
	TargetAssociation Target = "Association"
	TargetBoth        Target = "Both"
)

// SourceFile names the extract a rule reads from.
type SourceFile string

const (
	HRP1000 SourceFile = "HRP1000"
	HRP1001 SourceFile = "HRP1001"
)

// Rule maps one source column onto one target field.
type Rule struct {
	TargetField     string     `yaml:"target_field"`
	TargetLabel     string     `yaml:"target_label"`
	SourceFile      SourceFile `yaml:"source_file"`
	SourceColumn    string     `yaml:"source_column,omitempty"`
	SecondaryColumn string     `yaml:"secondary_column,omitempty"`
	Transformation  Kind       `yaml:"transformation"`
	Expression      string     `yaml:"expression,omitempty"`
	DefaultValue    string     `yaml:"default_value,omitempty"`
	LookupTable     string     `yaml:"lookup_table,omitempty"`
	AppliesTo       Target     `yaml:"applies_to"`
}

// Label returns the human-readable header, falling back to the field name.
func (r Rule) Label() string {
	if strings.TrimSpace(r.TargetLabel) != "" {
		return r.TargetLabel
	}
	return r.TargetField
}

// DefaultOnly reports whether the rule has no source column and only ever
// emits its default.
func (r Rule) DefaultOnly() bool {
	return strings.TrimSpace(r.SourceColumn) == ""
}

// Feeds reports whether the rule contributes to files of kind t.
func (r Rule) Feeds(t Target) bool {
	return r.AppliesTo == t || r.AppliesTo == TargetBoth
}
