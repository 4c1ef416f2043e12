package export

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/source"
	"hcm-migrate/internal/transform"
)

// Input is everything the generator reads. It never modifies any of it.
type Input struct {
	Units         *source.Table
	Relationships *source.Table
	Columns       source.Columns
	Graph         *hierarchy.Graph
	Hierarchy     *hierarchy.Hierarchy
}

// Generator renders Level and Association files from a built hierarchy.
type Generator struct {
	cfg    *mapping.Config
	engine *transform.Engine
	in     Input
	log    logrus.FieldLogger

	unitRows map[string]source.Row
	relRows  map[int]source.Row
}

// NewGenerator prepares a generator. cfg must not change while it is used.
func NewGenerator(cfg *mapping.Config, engine *transform.Engine, in Input, log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := &Generator{
		cfg:      cfg,
		engine:   engine,
		in:       in,
		log:      log,
		unitRows: map[string]source.Row{},
		relRows:  map[int]source.Row{},
	}
	for _, r := range in.Units.Rows {
		id := r.Field(in.Columns.UnitID).String()
		if _, seen := g.unitRows[id]; !seen && id != "" {
			g.unitRows[id] = r
		}
	}
	if in.Relationships != nil {
		for _, r := range in.Relationships.Rows {
			g.relRows[r.Line] = r
		}
	}
	return g
}

// Result collects the files of a full run and the per-kind errors that
// stopped a file family from being produced.
type Result struct {
	Files  []*GeneratedFile
	Errors []error
}

// All renders Level files 1..max and Association files 2..max. A missing
// rule set for one family does not stop the other.
func (g *Generator) All() *Result {
	res := &Result{}
	deepest := g.in.Hierarchy.MaxLevel()

	if _, err := g.cfg.RulesFor(mapping.TargetLevel); err != nil {
		res.Errors = append(res.Errors, err)
	} else {
		for n := 1; n <= deepest; n++ {
			f, err := g.Level(n)
			if err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			res.Files = append(res.Files, f)
		}
	}

	if _, err := g.cfg.RulesFor(mapping.TargetAssociation); err != nil {
		res.Errors = append(res.Errors, err)
	} else {
		for n := 2; n <= deepest; n++ {
			f, err := g.Associations(n)
			if err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			res.Files = append(res.Files, f)
		}
	}
	return res
}

// Level renders the file for all units at level n, in source order. Units
// sharing an ID each keep their own row.
func (g *Generator) Level(n int) (*GeneratedFile, error) {
	rules, err := g.cfg.RulesFor(mapping.TargetLevel)
	if err != nil {
		return nil, err
	}
	name := hierarchy.LevelName(n, g.cfg.LevelNames)
	f := &GeneratedFile{
		Kind:     mapping.TargetLevel,
		Level:    n,
		Name:     name,
		Filename: name,
		Header:   buildHeader(mapping.TargetLevel, rules),
	}
	g.checkColumns(f, rules)

	for _, unitRow := range g.in.Units.Rows {
		id := unitRow.Field(g.in.Columns.UnitID).String()
		node, ok := g.in.Hierarchy.Node(id)
		if !ok || node.Level != n {
			continue
		}
		relRow := source.Row{Line: unitRow.Line}
		if g.in.Graph != nil {
			if line := g.in.Graph.EdgeLine(id); line > 0 {
				relRow = g.relRows[line]
			}
		}
		f.Rows = append(f.Rows, g.render(f, rules, unitRow, relRow))
		f.SourceLines = append(f.SourceLines, unitRow.Line)
	}

	if len(f.Rows) == 0 {
		f.warnf("empty level file: no units at level %d", n)
	}
	g.log.WithFields(logrus.Fields{"file": f.Filename, "rows": len(f.Rows)}).Debug("level file rendered")
	return f, nil
}

// Associations renders the parent links of units at level n. Only the
// relationship row that placed each unit is used.
func (g *Generator) Associations(n int) (*GeneratedFile, error) {
	if n < 2 {
		return nil, fmt.Errorf("association files start at level 2, got %d", n)
	}
	rules, err := g.cfg.RulesFor(mapping.TargetAssociation)
	if err != nil {
		return nil, err
	}
	name := hierarchy.LevelName(n, g.cfg.LevelNames)
	f := &GeneratedFile{
		Kind:     mapping.TargetAssociation,
		Level:    n,
		Name:     name,
		Filename: name + "_Associations",
		Header:   buildHeader(mapping.TargetAssociation, rules),
	}
	g.checkColumns(f, rules)

	if g.in.Relationships != nil && g.in.Graph != nil {
		for _, relRow := range g.in.Relationships.Rows {
			child := relRow.Field(g.in.Columns.RelChild).String()
			node, ok := g.in.Hierarchy.Node(child)
			if !ok || node.Level != n || g.in.Graph.EdgeLine(child) != relRow.Line {
				continue
			}
			unitRow := g.unitRows[child]
			f.Rows = append(f.Rows, g.render(f, rules, unitRow, relRow))
			f.SourceLines = append(f.SourceLines, relRow.Line)
		}
	}

	if len(f.Rows) == 0 {
		f.warnf("empty association file: no parent links into level %d", n)
	}
	return f, nil
}

func (g *Generator) render(f *GeneratedFile, rules []mapping.Rule, unitRow, relRow source.Row) []string {
	out := make([]string, len(rules))
	for i, rule := range rules {
		row := unitRow
		if rule.SourceFile == mapping.HRP1001 {
			row = relRow
		}
		value := source.Field{State: source.Absent}
		if !rule.DefaultOnly() {
			value = row.Field(rule.SourceColumn)
		}
		rule.DefaultValue = g.cfg.DefaultFor(rule)

		v, err := g.engine.Apply(value, rule, row)
		var cerr *transform.CellError
		if errors.As(err, &cerr) {
			f.CellErrors++
		}
		out[i] = v
	}
	return out
}

// checkColumns warns once per rule whose source column is not in its table.
func (g *Generator) checkColumns(f *GeneratedFile, rules []mapping.Rule) {
	for _, r := range rules {
		if r.DefaultOnly() {
			continue
		}
		t := g.in.Units
		if r.SourceFile == mapping.HRP1001 {
			t = g.in.Relationships
		}
		if !t.HasColumn(r.SourceColumn) {
			f.warnf("%s: column %q not found in %s, using default", r.TargetField, r.SourceColumn, r.SourceFile)
		}
	}
}
