package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Severity ranks a finding. Only CRITICAL blocks migration.
type Severity string

const (
	Critical Severity = "CRITICAL"
	High     Severity = "HIGH"
	Medium   Severity = "MEDIUM"
	Low      Severity = "LOW"
)

// Severities lists every severity, most severe first.
var Severities = []Severity{Critical, High, Medium, Low}

func (s Severity) rank() int {
	for i, v := range Severities {
		if v == s {
			return i
		}
	}
	return len(Severities)
}

// Sample is one concrete offending row or identifier.
type Sample struct {
	Line       int    `json:"line,omitempty"`
	ID         string `json:"id,omitempty"`
	Value      string `json:"value,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (s Sample) String() string {
	var parts []string
	if s.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", s.Line))
	}
	if s.ID != "" {
		parts = append(parts, "id "+s.ID)
	}
	if s.Value != "" {
		parts = append(parts, fmt.Sprintf("value %q", s.Value))
	}
	if s.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("suggest %q", s.Suggestion))
	}
	if s.Detail != "" {
		parts = append(parts, s.Detail)
	}
	return strings.Join(parts, ", ")
}

// Finding is one structured validation result.
type Finding struct {
	Code        string   `json:"code"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	Source      string   `json:"source,omitempty"`
	Field       string   `json:"field,omitempty"`
	// Count is the number of affected rows or units. Samples holds at most
	// Options.SampleLimit of them.
	Count   int      `json:"count"`
	Samples []Sample `json:"samples,omitempty"`

	limit int
}

func (f *Finding) add(s Sample) {
	f.Count++
	if f.limit <= 0 || len(f.Samples) < f.limit {
		f.Samples = append(f.Samples, s)
	}
}

// Stats are the record counts seen at each pipeline stage.
type Stats struct {
	SourceUnits         int `json:"source_units"`
	SourceRelationships int `json:"source_relationships"`
	HierarchyUnits      int `json:"hierarchy_units"`
	PlacedRows          int `json:"placed_rows"`
	OutputRows          int `json:"output_rows"`
	MaxDepth            int `json:"max_depth"`
	Files               int `json:"files"`
}

// Report holds errors and warnings. Warnings are informational and never
// affect readiness.
type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
	Stats    Stats     `json:"stats"`
}

func (r *Report) addError(f *Finding) {
	if f != nil && f.Count > 0 {
		r.Errors = append(r.Errors, *f)
	}
}

func (r *Report) addWarning(f *Finding) {
	if f != nil && f.Count > 0 {
		r.Warnings = append(r.Warnings, *f)
	}
}

// Ready reports whether no CRITICAL finding exists.
func (r *Report) Ready() bool {
	for _, f := range r.Errors {
		if f.Severity == Critical {
			return false
		}
	}
	return true
}

// All returns errors then warnings, each ordered by severity.
func (r *Report) All() []Finding {
	out := make([]Finding, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity.rank() < out[j].Severity.rank() })
	return out
}

// BySeverity groups every finding by severity.
func (r *Report) BySeverity() map[Severity][]Finding {
	out := map[Severity][]Finding{}
	for _, f := range r.All() {
		out[f.Severity] = append(out[f.Severity], f)
	}
	return out
}

// Counts returns the number of findings per severity.
func (r *Report) Counts() map[Severity]int {
	out := make(map[Severity]int, len(Severities))
	for _, s := range Severities {
		out[s] = 0
	}
	for _, f := range r.All() {
		out[f.Severity]++
	}
	return out
}

// Find returns the findings with the given code.
func (r *Report) Find(code string) []Finding {
	var out []Finding
	for _, f := range r.All() {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Ready bool `json:"ready"`
		*Report
	}{r.Ready(), r})
}

// WriteText writes a human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	counts := r.Counts()
	status := "READY"
	if !r.Ready() {
		status = "NOT READY (critical findings present)"
	}
	fmt.Fprintf(&b, "Migration readiness: %s\n", status)
	fmt.Fprintf(&b, "Findings: %d critical, %d high, %d medium, %d low\n",
		counts[Critical], counts[High], counts[Medium], counts[Low])
	fmt.Fprintf(&b, "Records: %d units, %d relationships, %d placed, %d output rows, depth %d\n",
		r.Stats.SourceUnits, r.Stats.SourceRelationships, r.Stats.PlacedRows, r.Stats.OutputRows, r.Stats.MaxDepth)

	for _, f := range r.All() {
		b.WriteString("--------------------------------------------------\n")
		fmt.Fprintf(&b, "[%s] %s: %s (%d)\n", f.Severity, f.Code, f.Title, f.Count)
		if f.Source != "" || f.Field != "" {
			fmt.Fprintf(&b, "    where:  %s %s\n", f.Source, f.Field)
		}
		fmt.Fprintf(&b, "    what:   %s\n", f.Description)
		for _, s := range f.Samples {
			fmt.Fprintf(&b, "    └ %s\n", s)
		}
		if more := f.Count - len(f.Samples); more > 0 {
			fmt.Fprintf(&b, "    └ ... and %d more\n", more)
		}
		fmt.Fprintf(&b, "    action: %s\n", f.Action)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
