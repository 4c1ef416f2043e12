package mapping

// DefaultLookup is the lookup table used when a rule names none.
const DefaultLookup = "status"

// LookupFallbackKey holds the value a lookup table returns for unknown codes.
const LookupFallbackKey = "*"

// DefaultDefaults returns the common field defaults of a standard rollout.
func DefaultDefaults() Defaults {
	return Defaults{
		Status:          "Active",
		HRFlag:          "NO_HR",
		Timezone:        "Australia/Melbourne",
		Locale:          "en_US",
		Country:         "Australia",
		ReviewFrequency: "Annual",
	}
}

// DefaultLookups returns the built-in lookup tables.
func DefaultLookups() map[string]map[string]string {
	return map[string]map[string]string{
		DefaultLookup: {
			"1":               "Active",
			"2":               "Inactive",
			"3":               "Planned",
			"0":               "Deleted",
			LookupFallbackKey: "Active",
		},
	}
}

// DefaultRules returns the standard level and association rule set.
func DefaultRules() []Rule {
	return []Rule{
		{TargetField: "Operator", TargetLabel: "Operator", SourceFile: HRP1000, Transformation: KindNone, AppliesTo: TargetLevel},
		{TargetField: "externalCode", TargetLabel: "External Code", SourceFile: HRP1000, SourceColumn: "Object ID", Transformation: KindTrim, AppliesTo: TargetLevel},
		{TargetField: "effectiveStartDate", TargetLabel: "Effective Start Date", SourceFile: HRP1000, SourceColumn: "Start date", Transformation: KindDate, AppliesTo: TargetLevel},
		{TargetField: "effectiveEndDate", TargetLabel: "Effective End Date", SourceFile: HRP1000, SourceColumn: "End Date", Transformation: KindDate, AppliesTo: TargetLevel},
		{TargetField: "name.en_US", TargetLabel: "Name (English US)", SourceFile: HRP1000, SourceColumn: "Name", Transformation: KindTrim, AppliesTo: TargetLevel},
		{TargetField: "name.defaultValue", TargetLabel: "Name (Default)", SourceFile: HRP1000, SourceColumn: "Name", Transformation: KindTitle, AppliesTo: TargetLevel},
		{TargetField: "effectiveStatus", TargetLabel: "Status", SourceFile: HRP1000, SourceColumn: "Planning status", Transformation: KindLookup, LookupTable: DefaultLookup, DefaultValue: "Active", AppliesTo: TargetLevel},
		{TargetField: "Object abbr.", TargetLabel: "Object Abbreviation", SourceFile: HRP1000, SourceColumn: "Object abbr.", Transformation: KindNone, AppliesTo: TargetLevel},

		{TargetField: "effectiveStartDate", TargetLabel: "Effective Start Date", SourceFile: HRP1001, SourceColumn: "Start date", Transformation: KindDate, AppliesTo: TargetAssociation},
		{TargetField: "relationshipType", TargetLabel: "Relationship Type", SourceFile: HRP1001, SourceColumn: "Relationship", Transformation: KindUpper, DefaultValue: "REPORTS_TO", AppliesTo: TargetAssociation},
		{TargetField: "cust_toLegalEntity.externalCode", TargetLabel: "Parent Entity Code", SourceFile: HRP1001, SourceColumn: "Target object ID", Transformation: KindTrim, AppliesTo: TargetAssociation},
		{TargetField: "externalCode", TargetLabel: "External Code", SourceFile: HRP1001, SourceColumn: "Source ID", Transformation: KindTrim, AppliesTo: TargetAssociation},
	}
}

// DefaultConfig returns a complete configuration built from the defaults.
func DefaultConfig() *Config {
	return &Config{
		Rules:    DefaultRules(),
		Defaults: DefaultDefaults(),
		Lookups:  DefaultLookups(),
	}
}
