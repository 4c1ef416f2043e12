package hierarchy

import (
	"slices"
	"sort"
)

// LevelCycle is the level given to units whose parent chain never reaches a
// root. It is far above any real depth so it can't be mistaken for one.
const LevelCycle = 999

// Node is one unit placed in the hierarchy.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Line     int      `json:"line"`
	Lines    []int    `json:"lines,omitempty"`
	Level    int      `json:"level"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
	// Blocked is set when the unit's own relationship row pointed at a
	// parent that does not exist. MissingParent holds that ID.
	Blocked       bool   `json:"blocked,omitempty"`
	MissingParent string `json:"missing_parent,omitempty"`
	// BlockedBy is the missing ID somewhere up the chain, for the blocked
	// unit itself and all its descendants.
	BlockedBy string `json:"blocked_by,omitempty"`
	InCycle   bool   `json:"in_cycle,omitempty"`
}

// Root reports whether the unit has no parent and is not blocked.
func (n *Node) Root() bool { return n.Parent == "" && !n.Blocked }

// Hierarchy is the result of level assignment.
type Hierarchy struct {
	Nodes  map[string]*Node `json:"nodes"`
	Order  []string         `json:"order"`
	Cycles [][]string       `json:"cycles,omitempty"`
}

// Len returns the number of units.
func (h *Hierarchy) Len() int { return len(h.Order) }

// Node returns the unit with the given ID.
func (h *Hierarchy) Node(id string) (*Node, bool) {
	n, ok := h.Nodes[id]
	return n, ok
}

// AtLevel returns the units at level n in source order.
func (h *Hierarchy) AtLevel(n int) []*Node {
	var out []*Node
	for _, id := range h.Order {
		if node := h.Nodes[id]; node.Level == n {
			out = append(out, node)
		}
	}
	return out
}

// Levels returns the distinct assigned levels, ascending, excluding
// LevelCycle.
func (h *Hierarchy) Levels() []int {
	seen := map[int]bool{}
	var out []int
	for _, n := range h.Nodes {
		if n.Level != LevelCycle && !seen[n.Level] {
			seen[n.Level] = true
			out = append(out, n.Level)
		}
	}
	sort.Ints(out)
	return out
}

// MaxLevel returns the deepest real level, or 0 for an empty hierarchy.
func (h *Hierarchy) MaxLevel() int {
	deepest := 0
	for _, n := range h.Nodes {
		if n.Level != LevelCycle && n.Level > deepest {
			deepest = n.Level
		}
	}
	return deepest
}

// Blocked returns the units whose own parent link is unusable.
func (h *Hierarchy) Blocked() []*Node {
	var out []*Node
	for _, id := range h.Order {
		if n := h.Nodes[id]; n.Blocked {
			out = append(out, n)
		}
	}
	return out
}

// Unresolved returns every unit stuck at LevelCycle.
func (h *Hierarchy) Unresolved() []*Node {
	var out []*Node
	for _, id := range h.Order {
		if n := h.Nodes[id]; n.Level == LevelCycle {
			out = append(out, n)
		}
	}
	return out
}

// ---------------------------------------------------------------------
// Level assignment (iterative parent walk)
// ---------------------------------------------------------------------

const (
	unvisited uint8 = iota
	onPath
	done
)

// AssignLevels gives every unit its depth. Each unit is visited once: the
// walk climbs parents onto an explicit path until it meets a root, a unit
// already done, or a unit already on the path (a cycle), then unwinds.
func AssignLevels(g *Graph) *Hierarchy {
	n := len(g.nodes)
	level := make([]int, n)
	state := make([]uint8, n)
	pos := make([]int, n)
	inCycle := make([]bool, n)
	var cycles [][]string

	path := make([]int, 0, 16)
	for start := range g.nodes {
		if state[start] == done {
			continue
		}
		path = path[:0]
		cur := start
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == onPath {
				members := path[pos[cur]:]
				ids := make([]string, len(members))
				for i, m := range members {
					level[m] = LevelCycle
					state[m] = done
					inCycle[m] = true
					ids[i] = g.nodes[m].id
				}
				cycles = append(cycles, ids)
				path = path[:pos[cur]]
				break
			}
			state[cur] = onPath
			pos[cur] = len(path)
			path = append(path, cur)
			p := g.nodes[cur].parent
			if p < 0 {
				level[cur] = 1
				state[cur] = done
				path = path[:len(path)-1]
				break
			}
			cur = p
		}
		for i := len(path) - 1; i >= 0; i-- {
			m := path[i]
			if pl := level[g.nodes[m].parent]; pl == LevelCycle {
				level[m] = LevelCycle
			} else {
				level[m] = pl + 1
			}
			state[m] = done
		}
	}

	h := &Hierarchy{
		Nodes:  make(map[string]*Node, n),
		Order:  make([]string, n),
		Cycles: cycles,
	}
	for i, nd := range g.nodes {
		node := &Node{
			ID:      nd.id,
			Name:    nd.name,
			Line:    nd.line,
			Lines:   slices.Clone(nd.lines),
			Level:   level[i],
			InCycle: inCycle[i],
		}
		if nd.parent >= 0 {
			node.Parent = g.nodes[nd.parent].id
		} else if nd.missing != "" {
			node.Blocked = true
			node.MissingParent = nd.missing
		}
		h.Nodes[nd.id] = node
		h.Order[i] = nd.id
	}
	for _, id := range h.Order {
		if p := h.Nodes[id].Parent; p != "" {
			h.Nodes[p].Children = append(h.Nodes[p].Children, id)
		}
	}
	for _, node := range h.Nodes {
		sort.Strings(node.Children)
	}
	propagateBlocked(h)
	return h
}

// propagateBlocked marks descendants of blocked units, walking levels
// top-down so each parent is settled before its children.
func propagateBlocked(h *Hierarchy) {
	ordered := make([]*Node, 0, len(h.Order))
	for _, id := range h.Order {
		if n := h.Nodes[id]; n.Level != LevelCycle {
			ordered = append(ordered, n)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Level < ordered[j].Level })
	for _, n := range ordered {
		switch {
		case n.Blocked:
			n.BlockedBy = n.MissingParent
		case n.Parent != "":
			n.BlockedBy = h.Nodes[n.Parent].BlockedBy
		}
	}
}
