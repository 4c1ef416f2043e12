package source

import (
	"strings"
	"unicode"
)

// Columns names the extract columns the tool reads. Defaults are the
// headers of a standard SAP table export.
type Columns struct {
	UnitID     string `mapstructure:"unit_id" yaml:"unit_id"`
	UnitName   string `mapstructure:"unit_name" yaml:"unit_name"`
	UnitStatus string `mapstructure:"unit_status" yaml:"unit_status"`
	UnitStart  string `mapstructure:"unit_start" yaml:"unit_start"`
	UnitEnd    string `mapstructure:"unit_end" yaml:"unit_end"`
	UnitAbbr   string `mapstructure:"unit_abbr" yaml:"unit_abbr"`

	RelChild  string `mapstructure:"rel_child" yaml:"rel_child"`
	RelParent string `mapstructure:"rel_parent" yaml:"rel_parent"`
	RelType   string `mapstructure:"rel_type" yaml:"rel_type"`
	RelStatus string `mapstructure:"rel_status" yaml:"rel_status"`
	RelStart  string `mapstructure:"rel_start" yaml:"rel_start"`
	RelEnd    string `mapstructure:"rel_end" yaml:"rel_end"`
}

// DefaultColumns returns the HRP1000/HRP1001 export headers.
func DefaultColumns() Columns {
	return Columns{
		UnitID:     "Object ID",
		UnitName:   "Name",
		UnitStatus: "Planning status",
		UnitStart:  "Start date",
		UnitEnd:    "End Date",
		UnitAbbr:   "Object abbr.",

		RelChild:  "Source ID",
		RelParent: "Target object ID",
		RelType:   "Relationship",
		RelStatus: "Planning status",
		RelStart:  "Start date",
		RelEnd:    "End Date",
	}
}

// WithDefaults fills every empty name from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&c.UnitID, d.UnitID)
	fill(&c.UnitName, d.UnitName)
	fill(&c.UnitStatus, d.UnitStatus)
	fill(&c.UnitStart, d.UnitStart)
	fill(&c.UnitEnd, d.UnitEnd)
	fill(&c.UnitAbbr, d.UnitAbbr)
	fill(&c.RelChild, d.RelChild)
	fill(&c.RelParent, d.RelParent)
	fill(&c.RelType, d.RelType)
	fill(&c.RelStatus, d.RelStatus)
	fill(&c.RelStart, d.RelStart)
	fill(&c.RelEnd, d.RelEnd)
	return c
}

// UnitRequired lists the columns a unit table cannot be used without.
func (c Columns) UnitRequired() []string {
	return []string{c.UnitID, c.UnitName}
}

// RelationshipRequired lists the columns a relationship table cannot be used without.
func (c Columns) RelationshipRequired() []string {
	return []string{c.RelChild, c.RelParent}
}

// headerAliases maps normalised header spellings seen in hand-edited or
// differently configured exports onto the standard SAP header.
var headerAliases = map[string]string{
	"objectid": "Object ID", "objid": "Object ID", "orgunitid": "Object ID", "orgid": "Object ID",
	"name": "Name", "objectname": "Name", "stext": "Name", "orgunitname": "Name",
	"planningstatus": "Planning status", "plstatus": "Planning status", "istat": "Planning status", "status": "Planning status",
	"startdate": "Start date", "begda": "Start date", "validfrom": "Start date",
	"enddate": "End Date", "endda": "End Date", "validto": "End Date",
	"objectabbr": "Object abbr.", "objectabbreviation": "Object abbr.", "short": "Object abbr.", "abbr": "Object abbr.",
	"sourceid": "Source ID",
	"targetobjectid": "Target object ID", "targetid": "Target object ID",
	"relationship": "Relationship", "relat": "Relationship", "relationshiptype": "Relationship",
}

// relationshipAliases override headerAliases in an HRP1001 extract, where
// OBJID is the reporting unit and SOBID the unit it reports to.
var relationshipAliases = map[string]string{
	"objectid": "Source ID", "objid": "Source ID",
	"sobid": "Target object ID", "idofrelatedobject": "Target object ID", "relatedobjectid": "Target object ID",
}

// relationshipMarkers are headers only an HRP1001 extract carries.
var relationshipMarkers = map[string]bool{
	"relat": true, "relationship": true, "relationshiptype": true, "rsign": true,
	"sclas": true, "sobid": true, "sourceid": true, "targetobjectid": true, "targetid": true,
}

func normaliseHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isRelationshipTable reports whether t looks like an HRP1001 extract, either
// because the caller requires a relationship column or by its own headers.
func isRelationshipTable(t *Table, required []string) bool {
	d := DefaultColumns()
	for _, c := range required {
		if c == d.RelChild || c == d.RelParent {
			return true
		}
	}
	for _, h := range t.Header {
		if relationshipMarkers[normaliseHeader(h)] {
			return true
		}
	}
	return false
}

// CanonicalHeaders renames header cells that are known aliases of a
// standard column, but only where the standard name is not already present.
// Headers listed in required are left alone. It returns the renames applied,
// keyed by the original header.
func CanonicalHeaders(t *Table, required ...string) map[string]string {
	present := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		present[h] = true
	}
	keep := make(map[string]bool, len(required))
	for _, c := range required {
		keep[c] = true
	}
	rel := isRelationshipTable(t, required)

	renamed := map[string]string{}
	for i, h := range t.Header {
		if keep[h] {
			continue
		}
		key := normaliseHeader(h)
		canon, ok := headerAliases[key]
		if rel {
			if c, relOK := relationshipAliases[key]; relOK {
				canon, ok = c, true
			}
		}
		if !ok || canon == h || present[canon] {
			continue
		}
		t.Header[i] = canon
		present[canon] = true
		renamed[h] = canon
	}
	if len(renamed) == 0 {
		return renamed
	}
	for _, row := range t.Rows {
		for from, to := range renamed {
			if v, ok := row.Cells[from]; ok {
				row.Cells[to] = v
				delete(row.Cells, from)
			}
		}
	}
	return renamed
}
