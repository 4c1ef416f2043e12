package hierarchy

import (
	"fmt"
	"strings"
)

// Limits are the structural thresholds beyond which a hierarchy is flagged.
type Limits struct {
	MaxDepth int `mapstructure:"max_depth"`
	MaxSpan  int `mapstructure:"max_span"`
}

// DefaultLimits returns the usual SuccessFactors org-structure limits.
func DefaultLimits() Limits {
	return Limits{MaxDepth: 10, MaxSpan: 15}
}

// QualityReport lists units breaching the structural limits.
type QualityReport struct {
	MaxDepth int
	Deep     []*Node
	Wide     []*Node
}

// Quality checks depth and span of control. Both are advisory.
func Quality(h *Hierarchy, limits Limits) QualityReport {
	r := QualityReport{MaxDepth: h.MaxLevel()}
	for _, id := range h.Order {
		n := h.Nodes[id]
		if n.Level != LevelCycle && limits.MaxDepth > 0 && n.Level > limits.MaxDepth {
			r.Deep = append(r.Deep, n)
		}
		if limits.MaxSpan > 0 && len(n.Children) > limits.MaxSpan {
			r.Wide = append(r.Wide, n)
		}
	}
	return r
}

var defaultLevelNames = map[int]string{
	1: "Level1_LegalEntity",
	2: "Level2_BusinessUnit",
	3: "Level3_Division",
	4: "Level4_SubDivision",
	5: "Level5_Department",
	6: "Level6_SubDepartment",
	7: "Level7_Team",
}

// LevelName returns the display name for level n, preferring a configured
// name. Spaces become underscores so the name can be used as a filename.
func LevelName(n int, names map[int]string) string {
	name := strings.TrimSpace(names[n])
	if name == "" {
		if d, ok := defaultLevelNames[n]; ok {
			name = d
		} else {
			name = fmt.Sprintf("Level%d_Unit", n)
		}
	}
	return strings.ReplaceAll(name, " ", "_")
}
