package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/source"
	"hcm-migrate/internal/transform"
)

// validStatus are the HRP planning status codes.
var validStatus = map[string]string{
	"0": "Deleted",
	"1": "Active",
	"2": "Inactive",
	"3": "Planned",
}

// statusSuggestions maps common free-text statuses onto codes.
var statusSuggestions = map[string]string{
	"ACTIVE": "1", "A": "1", "YES": "1", "Y": "1", "TRUE": "1",
	"INACTIVE": "2", "I": "2", "NO": "2", "N": "2", "FALSE": "2",
	"PLANNED": "3", "P": "3",
	"DELETED": "0", "D": "0",
}

func label(t *source.Table, fallback string) string {
	if t != nil && t.Name != "" {
		return fmt.Sprintf("%s (%s)", fallback, t.Name)
	}
	return fallback
}

// checkRequired reports required columns absent from t. A table that was
// never loaded counts as missing all of them.
func (v *validator) checkRequired(t *source.Table, src string, cols []string) bool {
	f := v.finding(CodeMissingRequiredField, Critical, "Missing required columns")
	f.Source = label(t, src)
	f.Action = "Re-export the table with the standard SAP headers or map the column names in the configuration"

	if t == nil {
		f.Description = fmt.Sprintf("%s was not loaded", src)
		for _, c := range cols {
			f.add(Sample{Value: c})
		}
		v.rep.addError(f)
		return false
	}
	missing := t.MissingColumns(cols...)
	f.Description = fmt.Sprintf("%s has no column %s", src, strings.Join(missing, ", "))
	for _, c := range missing {
		f.add(Sample{Value: c, Detail: "available: " + strings.Join(t.Header, ", ")})
	}
	v.rep.addError(f)
	return len(missing) == 0
}

func (v *validator) checkNulls(t *source.Table, src string, cols []string) {
	for _, col := range cols {
		f := v.finding(CodeNullRequiredField, Critical, "Empty values in a required column")
		f.Source = label(t, src)
		f.Field = col
		f.Action = fmt.Sprintf("Fill %q in the source extract or remove the rows", col)
		for _, r := range t.Rows {
			if r.Field(col).Empty() {
				f.add(Sample{Line: r.Line})
			}
		}
		f.Description = fmt.Sprintf("%d row(s) have no %s", f.Count, col)
		v.rep.addError(f)
	}
}

// suggestID proposes the canonical form of an identifier: digits only,
// spreadsheet float suffix dropped, zero-padded to eight.
func suggestID(id string) string {
	id = strings.TrimSuffix(strings.TrimSpace(id), ".0")
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, id)
	if digits == "" || len(digits) > 8 {
		return ""
	}
	return strings.Repeat("0", 8-len(digits)) + digits
}

func (v *validator) checkIDs(t *source.Table, src string, cols ...string) {
	for _, col := range cols {
		if !t.HasColumn(col) {
			continue
		}
		f := v.finding(CodeInvalidIDFormat, High, "Identifiers not in canonical format")
		f.Source = label(t, src)
		f.Field = col
		f.Action = "Normalise identifiers to eight digits with leading zeros before export"
		for _, r := range t.Rows {
			field := r.Field(col)
			if field.Empty() {
				continue
			}
			id := field.String()
			if !v.id.MatchString(id) {
				f.add(Sample{Line: r.Line, Value: id, Suggestion: suggestID(id)})
			}
		}
		f.Description = fmt.Sprintf("%d value(s) of %s do not match %s", f.Count, col, v.id.String())
		v.rep.addError(f)
	}
}

// checkDates reports unparseable dates, columns mixing layouts, and rows
// whose end date precedes their start date.
func (v *validator) checkDates(t *source.Table, src, startCol, endCol string) {
	for _, col := range []string{startCol, endCol} {
		if !t.HasColumn(col) {
			continue
		}
		bad := v.finding(CodeInvalidDateFormat, Medium, "Unparseable dates")
		bad.Source = label(t, src)
		bad.Field = col
		bad.Action = "Use DD.MM.YYYY or YYYY-MM-DD dates"

		families := map[string]int{}
		firstLine := map[string]int{}
		for _, r := range t.Rows {
			field := r.Field(col)
			if field.Empty() {
				continue
			}
			_, family, err := transform.ParseDate(field.String())
			if err != nil {
				bad.add(Sample{Line: r.Line, Value: field.String()})
				continue
			}
			if family != "" {
				if families[family] == 0 {
					firstLine[family] = r.Line
				}
				families[family]++
			}
		}
		bad.Description = fmt.Sprintf("%d value(s) of %s are not recognisable dates", bad.Count, col)
		v.rep.addError(bad)

		if len(families) > 1 {
			mixed := v.finding(CodeInconsistentDates, Medium, "Mixed date formats")
			mixed.Source = bad.Source
			mixed.Field = col
			mixed.Action = "Export all dates with one layout"
			names := make([]string, 0, len(families))
			for fam := range families {
				names = append(names, fam)
			}
			sort.Strings(names)
			for _, fam := range names {
				mixed.add(Sample{Line: firstLine[fam], Value: fam, Detail: fmt.Sprintf("%d value(s)", families[fam])})
			}
			mixed.Description = fmt.Sprintf("%s uses %d date layouts: %s", col, len(names), strings.Join(names, ", "))
			v.rep.addError(mixed)
		}
	}

	if !t.HasColumn(startCol) || !t.HasColumn(endCol) {
		return
	}
	inverted := v.finding(CodeInvalidDateRange, Medium, "End date before start date")
	inverted.Source = label(t, src)
	inverted.Field = startCol + "/" + endCol
	inverted.Action = "Correct the validity period in SAP before export"
	for _, r := range t.Rows {
		start, _, err1 := transform.ParseDate(r.Field(startCol).String())
		end, _, err2 := transform.ParseDate(r.Field(endCol).String())
		if err1 != nil || err2 != nil || start.IsZero() || end.IsZero() {
			continue
		}
		if end.Before(start) {
			inverted.add(Sample{Line: r.Line, Value: r.Field(startCol).String() + " > " + r.Field(endCol).String()})
		}
	}
	inverted.Description = fmt.Sprintf("%d row(s) end before they start", inverted.Count)
	v.rep.addError(inverted)
}

func (v *validator) checkStatus(t *source.Table, src, col string) {
	if !t.HasColumn(col) {
		return
	}
	f := v.finding(CodeInvalidStatusCode, High, "Unrecognised status codes")
	f.Source = label(t, src)
	f.Field = col
	f.Action = "Map status values to 1 (Active), 2 (Inactive), 3 (Planned) or 0 (Deleted)"
	for _, r := range t.Rows {
		field := r.Field(col)
		if field.Empty() {
			continue
		}
		code := strings.TrimSuffix(field.String(), ".0")
		if _, ok := validStatus[code]; ok {
			continue
		}
		f.add(Sample{Line: r.Line, Value: field.String(), Suggestion: statusSuggestions[strings.ToUpper(code)]})
	}
	f.Description = fmt.Sprintf("%d value(s) of %s are not planning status codes", f.Count, col)
	v.rep.addError(f)
}

func (v *validator) checkDuplicates() {
	for _, d := range v.graph.Duplicates {
		f := v.finding(CodeDuplicateObjectID, Critical, "Duplicate object ID")
		f.Source = label(v.in.Units, unitSource)
		f.Field = v.cols.UnitID
		f.Action = "Keep one record per object ID; the first row is used for the hierarchy"
		for _, line := range d.Lines {
			f.add(Sample{Line: line, ID: d.ID})
		}
		f.Description = fmt.Sprintf("object ID %s appears on %d rows", d.ID, len(d.Lines))
		v.rep.addError(f)
	}
}

// checkOrphans groups relationship rows by the ID they point at that is not
// a known unit. Blank endpoints are left to the null check.
func (v *validator) checkOrphans() {
	type group struct {
		id string
		f  *Finding
	}
	var targets, sources []*group
	byTarget, bySource := map[string]*group{}, map[string]*group{}

	get := func(index map[string]*group, list *[]*group, id, code, side, field string) *Finding {
		if g, ok := index[id]; ok {
			return g.f
		}
		f := v.finding(code, Critical, "Orphaned "+side+" ID")
		f.Source = label(v.in.Relationships, relSource)
		f.Field = field
		f.Action = fmt.Sprintf("Add unit %s to the unit extract or remove the relationships pointing at it", id)
		g := &group{id: id, f: f}
		index[id] = g
		*list = append(*list, g)
		return f
	}

	for _, o := range v.graph.Orphans {
		if o.MissingParent && o.ParentID != "" {
			f := get(byTarget, &targets, o.ParentID, CodeOrphanedTargetID, "target", v.cols.RelParent)
			f.add(Sample{Line: o.Line, ID: o.ParentID, Detail: "child " + o.ChildID})
		}
		if o.MissingChild && o.ChildID != "" {
			f := get(bySource, &sources, o.ChildID, CodeOrphanedSourceID, "source", v.cols.RelChild)
			f.add(Sample{Line: o.Line, ID: o.ChildID, Detail: "parent " + o.ParentID})
		}
	}
	for _, g := range targets {
		g.f.Description = fmt.Sprintf("parent ID %s is referenced by %d relationship(s) but is not a unit", g.id, g.f.Count)
		v.rep.addError(g.f)
	}
	for _, g := range sources {
		g.f.Description = fmt.Sprintf("child ID %s is referenced by %d relationship(s) but is not a unit", g.id, g.f.Count)
		v.rep.addError(g.f)
	}
}

func (v *validator) checkConflicts() {
	f := v.finding(CodeMultipleParents, High, "Units with more than one parent")
	f.Source = label(v.in.Relationships, relSource)
	f.Field = v.cols.RelChild
	f.Action = "Keep one reporting line per unit; the first relationship row is used"
	for _, c := range v.graph.Conflicts {
		f.add(Sample{Line: c.Line, ID: c.ChildID, Value: c.ParentID, Detail: fmt.Sprintf("line %d kept", c.KeptLine)})
	}
	f.Description = fmt.Sprintf("%d relationship row(s) give a unit a second parent and were ignored", f.Count)
	v.rep.addError(f)
}

// placedRows counts source unit rows that ended up with a real level.
func placedRows(h *hierarchy.Hierarchy) int {
	n := 0
	for _, node := range h.Nodes {
		if node.Level != hierarchy.LevelCycle {
			n += len(node.Lines)
		}
	}
	return n
}
