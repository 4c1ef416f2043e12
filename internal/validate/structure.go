package validate

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"hcm-migrate/internal/hierarchy"
)

// reference is the hierarchy structural checks look at: the stored one when
// given, else the one rebuilt here.
func (v *validator) reference() *hierarchy.Hierarchy {
	if v.in.Hierarchy != nil {
		return v.in.Hierarchy
	}
	return v.computed
}

// checkDrift compares the stored hierarchy against a fresh computation.
// Differences are reported, never corrected.
func (v *validator) checkDrift() {
	stored := v.in.Hierarchy
	if stored == nil || v.computed == nil {
		return
	}
	f := v.finding(CodeHierarchyCalculation, High, "Stored hierarchy differs from recomputed levels")
	f.Source = "hierarchy"
	f.Field = "level"
	f.Action = "Rebuild the hierarchy from the current extracts before generating files"

	for _, id := range v.computed.Order {
		want := v.computed.Nodes[id]
		got, ok := stored.Node(id)
		switch {
		case !ok:
			f.add(Sample{ID: id, Suggestion: strconv.Itoa(want.Level), Detail: "missing from stored hierarchy"})
		case got.Level != want.Level:
			f.add(Sample{ID: id, Value: strconv.Itoa(got.Level), Suggestion: strconv.Itoa(want.Level)})
		case got.Parent != want.Parent:
			f.add(Sample{ID: id, Value: got.Parent, Suggestion: want.Parent, Detail: "parent differs"})
		}
	}
	for _, id := range stored.Order {
		if _, ok := v.computed.Node(id); !ok {
			f.add(Sample{ID: id, Detail: "not in the unit extract"})
		}
	}
	f.Description = fmt.Sprintf("%d unit(s) disagree with the levels computed from the source tables", f.Count)
	v.rep.addError(f)
}

// checkCycles walks parent links on its own, without relying on the cycle
// list level assignment produced. Both the hierarchy rebuilt from the
// extracts and a stored one are walked; a loop found in both is reported once.
func (v *validator) checkCycles() {
	seen := map[string]bool{}
	for _, h := range []*hierarchy.Hierarchy{v.computed, v.in.Hierarchy} {
		for _, members := range findCycles(h) {
			key := slices.Clone(members)
			sort.Strings(key)
			k := strings.Join(key, "\x00")
			if seen[k] {
				continue
			}
			seen[k] = true
			v.reportCycle(members)
		}
	}
}

// findCycles returns the members of every loop in h's parent links.
func findCycles(h *hierarchy.Hierarchy) [][]string {
	if h == nil {
		return nil
	}
	const (
		unseen = iota
		walking
		finished
	)
	var cycles [][]string
	state := make(map[string]int, len(h.Nodes))
	for _, start := range h.Order {
		if state[start] != unseen {
			continue
		}
		var path []string
		pos := map[string]int{}
		cur := start
		for cur != "" {
			if state[cur] == finished {
				break
			}
			if state[cur] == walking {
				cycles = append(cycles, slices.Clone(path[pos[cur]:]))
				break
			}
			state[cur] = walking
			pos[cur] = len(path)
			path = append(path, cur)
			n, ok := h.Nodes[cur]
			if !ok {
				break
			}
			cur = n.Parent
			if _, known := h.Nodes[cur]; !known {
				cur = ""
			}
		}
		for _, id := range path {
			state[id] = finished
		}
	}
	return cycles
}

func (v *validator) reportCycle(members []string) {
	f := v.finding(CodeCircularReference, Critical, "Circular reporting line")
	f.Source = label(v.in.Relationships, relSource)
	f.Field = v.cols.RelChild + " -> " + v.cols.RelParent
	f.Action = "Break the loop by correcting one of the relationships in SAP"
	for _, id := range members {
		f.add(Sample{ID: id})
	}
	chain := append(append([]string{}, members...), members[0])
	f.Samples[0].Detail = strings.Join(chain, " -> ")
	f.Description = fmt.Sprintf("units %s report to each other in a loop", strings.Join(members, ", "))
	v.rep.addError(f)
}

// checkBlocked reports units whose parent link points at a missing unit.
// They are placed at level 1 but their ancestry is unresolved.
func (v *validator) checkBlocked() {
	h := v.computed
	f := v.finding(CodeBlockedUnit, High, "Units blocked by a missing parent")
	f.Source = "hierarchy"
	f.Field = v.cols.RelParent
	f.Action = "Resolve the missing parent; until then these units are exported as roots"

	descendants := 0
	for _, n := range h.Blocked() {
		below := subtreeSize(h, n) - 1
		descendants += below
		f.add(Sample{ID: n.ID, Value: n.MissingParent, Detail: fmt.Sprintf("%d descendant(s) affected", below)})
	}
	f.Description = fmt.Sprintf("%d unit(s) and %d descendant(s) have an unresolved parent chain", f.Count, descendants)
	v.rep.addError(f)
}

func subtreeSize(h *hierarchy.Hierarchy, root *hierarchy.Node) int {
	size := 0
	stack := []*hierarchy.Node{root}
	seen := map[string]bool{}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		size++
		for _, c := range n.Children {
			if child, ok := h.Nodes[c]; ok {
				stack = append(stack, child)
			}
		}
	}
	return size
}

// checkShape raises the advisory depth and span warnings.
func (v *validator) checkShape() {
	h := v.reference()
	if h == nil {
		return
	}
	q := hierarchy.Quality(h, hierarchy.Limits{MaxDepth: v.opts.MaxDepth, MaxSpan: v.opts.MaxSpan})

	deep := v.finding(CodeExcessiveDepth, Medium, "Hierarchy deeper than recommended")
	deep.Source = "hierarchy"
	deep.Action = "Review whether the deepest levels should be flattened"
	for _, n := range q.Deep {
		deep.add(Sample{ID: n.ID, Value: strconv.Itoa(n.Level)})
	}
	deep.Description = fmt.Sprintf("the hierarchy has %d levels, more than %d", q.MaxDepth, v.opts.MaxDepth)
	v.rep.addWarning(deep)

	wide := v.finding(CodeWideSpan, Low, "Wide span of control")
	wide.Source = "hierarchy"
	wide.Action = "Consider an intermediate level under these units"
	for _, n := range q.Wide {
		wide.add(Sample{ID: n.ID, Value: strconv.Itoa(len(n.Children)), Detail: n.Name})
	}
	wide.Description = fmt.Sprintf("%d unit(s) have more than %d direct children", wide.Count, v.opts.MaxSpan)
	v.rep.addWarning(wide)
}
