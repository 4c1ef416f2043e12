package validate

import (
	"fmt"
	"strconv"
	"strings"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/mapping"
)

// checkFiles compares the generated files with the levels the hierarchy
// has: one Level file per level, one Association file per level >= 2.
func (v *validator) checkFiles() {
	h := v.reference()
	levelFiles := map[int]*export.GeneratedFile{}
	assocFiles := map[int]*export.GeneratedFile{}
	for _, f := range v.in.Files {
		switch f.Kind {
		case mapping.TargetLevel:
			levelFiles[f.Level] = f
		case mapping.TargetAssociation:
			assocFiles[f.Level] = f
		}
	}
	v.rep.Stats.Files = len(v.in.Files)

	if h != nil {
		missing := v.finding(CodeMissingLevelFiles, High, "Level files missing")
		missing.Source = "output"
		missing.Action = "Check the level mapping rules and regenerate"
		for _, n := range h.Levels() {
			if _, ok := levelFiles[n]; !ok {
				missing.add(Sample{Value: strconv.Itoa(n), Detail: fmt.Sprintf("%d unit(s) at this level", len(h.AtLevel(n)))})
			}
		}
		missing.Description = fmt.Sprintf("%d level(s) of the hierarchy have no Level file", missing.Count)
		v.rep.addError(missing)
	}

	for _, f := range v.in.Files {
		if f.Kind != mapping.TargetLevel {
			continue
		}
		if f.DataRows() == 0 {
			empty := v.finding(CodeEmptyLevelFile, High, "Level file without data")
			empty.Source = f.Filename
			empty.Action = "Check that units were placed at this level"
			empty.add(Sample{Value: strconv.Itoa(f.Level)})
			empty.Description = fmt.Sprintf("%s has headers but no data rows", f.Filename)
			v.rep.addError(empty)
			continue
		}
		v.checkEmptyCells(f)
	}

	if h != nil {
		assoc := v.finding(CodeMissingAssociations, High, "Association rows missing")
		assoc.Source = "output"
		assoc.Action = "Check the association mapping rules and the relationship extract"
		for _, n := range h.Levels() {
			if n < 2 {
				continue
			}
			linked := 0
			for _, node := range h.AtLevel(n) {
				if node.Parent != "" {
					linked++
				}
			}
			if linked == 0 {
				continue
			}
			got := 0
			if f, ok := assocFiles[n]; ok {
				got = f.DataRows()
			}
			if got < linked {
				assoc.add(Sample{Value: strconv.Itoa(n), Detail: fmt.Sprintf("%d of %d parent links written", got, linked)})
			}
		}
		assoc.Description = fmt.Sprintf("%d level(s) have fewer association rows than parent links", assoc.Count)
		v.rep.addError(assoc)
	}
}

func (v *validator) checkEmptyCells(f *export.GeneratedFile) {
	if v.opts.EmptyCellRatio <= 0 {
		return
	}
	total, empty := 0, 0
	perColumn := make([]int, f.Width())
	for _, row := range f.Rows {
		for i, cell := range row {
			total++
			if strings.TrimSpace(cell) == "" {
				empty++
				if i < len(perColumn) {
					perColumn[i]++
				}
			}
		}
	}
	if total == 0 {
		return
	}
	ratio := float64(empty) / float64(total)
	if ratio <= v.opts.EmptyCellRatio {
		return
	}
	w := v.finding(CodeHighEmptyCellRatio, Medium, "Many empty cells")
	w.Source = f.Filename
	w.Action = "Add default values or source columns for the empty fields"
	for i, n := range perColumn {
		if n > 0 {
			w.add(Sample{Value: f.Header[0][i], Detail: fmt.Sprintf("%d of %d empty", n, f.DataRows())})
		}
	}
	w.Description = fmt.Sprintf("%.0f%% of the cells in %s are empty", ratio*100, f.Filename)
	v.rep.addWarning(w)
}

// checkLoss follows record counts from the unit extract to the placed
// hierarchy and on to the Level files, flagging a stage that loses more than
// LossThreshold of what it received.
func (v *validator) checkLoss() {
	if v.computed == nil {
		return
	}
	units := v.rep.Stats.SourceUnits
	placed := placedRows(v.computed)
	v.rep.Stats.PlacedRows = placed

	v.stageLoss(CodeDataLossProcessing, "hierarchy processing", units, placed,
		"Resolve cycles and missing IDs so every unit gets a level")

	if !v.in.Generated {
		return
	}
	output := 0
	for _, f := range v.in.Files {
		if f.Kind == mapping.TargetLevel {
			output += f.DataRows()
		}
	}
	v.rep.Stats.OutputRows = output
	v.stageLoss(CodeDataLossOutput, "file generation", placed, output,
		"Regenerate the files from the current hierarchy")
}

func (v *validator) stageLoss(code, stage string, before, after int, action string) {
	if before == 0 || after >= before {
		return
	}
	lost := before - after
	ratio := float64(lost) / float64(before)
	if ratio <= v.opts.LossThreshold {
		return
	}
	f := v.finding(code, High, "Significant data loss in "+stage)
	f.Source = stage
	f.Action = action
	f.add(Sample{Value: fmt.Sprintf("%d -> %d", before, after), Detail: fmt.Sprintf("%.1f%% lost", ratio*100)})
	f.Count = lost
	f.Description = fmt.Sprintf("%d of %d record(s) were lost during %s", lost, before, stage)
	v.rep.addError(f)
}
