package hierarchy

import (
	"hcm-migrate/internal/source"
)

// ActiveStatus is the planning status of an active HRP1001 record.
const ActiveStatus = "1"

// Options control which relationship rows become edges.
type Options struct {
	// ActiveOnly skips relationship rows whose planning status is present
	// and not ActiveStatus.
	ActiveOnly bool `mapstructure:"active_only"`
}

// Orphan is a relationship row with at least one endpoint that is not a
// known unit.
type Orphan struct {
	Line          int
	ChildID       string
	ParentID      string
	MissingChild  bool
	MissingParent bool
}

// Duplicate groups the source lines sharing one unit ID.
type Duplicate struct {
	ID    string
	Lines []int
}

// Conflict is a valid relationship row that was not used because the child
// already had a parent.
type Conflict struct {
	Line     int
	ChildID  string
	ParentID string
	KeptLine int
}

// node is an arena slot. parent is an index into Graph.nodes, -1 for none.
type node struct {
	id       string
	name     string
	line     int
	lines    []int
	parent   int
	edgeLine int
	missing  string
}

// Graph is the validated child->parent graph over unit IDs.
type Graph struct {
	nodes []node
	index map[string]int

	Orphans    []Orphan
	Duplicates []Duplicate
	Conflicts  []Conflict
	// Unkeyed holds the lines of units without an ID.
	Unkeyed []int
	// Inactive counts relationship rows skipped under ActiveOnly.
	Inactive int
}

// Len returns the number of distinct units.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether id is a known unit.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// EdgeLine returns the relationship line that gave id its parent, or 0.
func (g *Graph) EdgeLine(id string) int {
	i, ok := g.index[id]
	if !ok || g.nodes[i].parent < 0 {
		return 0
	}
	return g.nodes[i].edgeLine
}

// Build checks both tables for their required columns and builds the graph.
func Build(units, relationships *source.Table, cols source.Columns, opts Options) (*Graph, error) {
	us, err := source.Units(units, cols)
	if err != nil {
		return nil, err
	}
	rs, err := source.Relationships(relationships, cols)
	if err != nil {
		return nil, err
	}
	return BuildGraph(us, rs, opts), nil
}

// BuildGraph indexes units and turns relationship rows into edges. Nothing
// is dropped silently: duplicate IDs, dangling endpoints and second parents
// are all recorded on the graph.
func BuildGraph(units []source.Unit, relationships []source.Relationship, opts Options) *Graph {
	g := &Graph{index: make(map[string]int, len(units))}

	dupIdx := map[string]int{}
	for _, u := range units {
		id := u.ID.String()
		if id == "" {
			g.Unkeyed = append(g.Unkeyed, u.Line)
			continue
		}
		if i, ok := g.index[id]; ok {
			g.nodes[i].lines = append(g.nodes[i].lines, u.Line)
			if d, seen := dupIdx[id]; seen {
				g.Duplicates[d].Lines = append(g.Duplicates[d].Lines, u.Line)
			} else {
				dupIdx[id] = len(g.Duplicates)
				g.Duplicates = append(g.Duplicates, Duplicate{ID: id, Lines: []int{g.nodes[i].line, u.Line}})
			}
			continue
		}
		g.index[id] = len(g.nodes)
		g.nodes = append(g.nodes, node{
			id:     id,
			name:   u.Name.String(),
			line:   u.Line,
			lines:  []int{u.Line},
			parent: -1,
		})
	}

	for _, r := range relationships {
		if opts.ActiveOnly && !r.Status.Empty() && r.Status.String() != ActiveStatus {
			g.Inactive++
			continue
		}
		childID, parentID := r.ChildID.String(), r.ParentID.String()
		c, childOK := g.index[childID]
		p, parentOK := g.index[parentID]
		if !childOK || !parentOK {
			g.Orphans = append(g.Orphans, Orphan{
				Line:          r.Line,
				ChildID:       childID,
				ParentID:      parentID,
				MissingChild:  !childOK,
				MissingParent: !parentOK,
			})
			if childOK && parentID != "" && g.nodes[c].missing == "" {
				g.nodes[c].missing = parentID
			}
			continue
		}
		if g.nodes[c].parent >= 0 {
			g.Conflicts = append(g.Conflicts, Conflict{
				Line:     r.Line,
				ChildID:  childID,
				ParentID: parentID,
				KeptLine: g.nodes[c].edgeLine,
			})
			continue
		}
		g.nodes[c].parent = p
		g.nodes[c].edgeLine = r.Line
	}

	return g
}
