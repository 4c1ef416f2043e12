package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/session"
)

var snapshotOut string

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Build the org hierarchy and show its levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		h, err := s.BuildHierarchy()
		if err != nil {
			return err
		}
		printHierarchy(s, h)

		if snapshotOut != "" {
			f, err := os.Create(snapshotOut)
			if err != nil {
				return fmt.Errorf("failed to create snapshot: %w", err)
			}
			defer f.Close()
			if err := s.SaveSnapshot(f); err != nil {
				return err
			}
			fmt.Printf("Snapshot written to %s\n", snapshotOut)
		}
		return nil
	},
}

func printHierarchy(s *session.Session, h *hierarchy.Hierarchy) {
	g := s.Graph
	fmt.Println("\n🏢 Hierarchy Levels:")
	for _, n := range h.Levels() {
		fmt.Printf("[%02d] %-28s : %d units\n", n, hierarchy.LevelName(n, s.Config.LevelNames), len(h.AtLevel(n)))
	}
	if un := h.Unresolved(); len(un) > 0 {
		fmt.Printf("[!!] %-28s : %d units\n", "Unresolved (cycle)", len(un))
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Units: %d  Depth: %d\n", h.Len(), h.MaxLevel())

	icon := func(n int) string {
		if n == 0 {
			return "✓"
		}
		return "!"
	}
	fmt.Printf("[%s] Orphaned relationships : %d\n", icon(len(g.Orphans)), len(g.Orphans))
	fmt.Printf("[%s] Duplicate IDs          : %d\n", icon(len(g.Duplicates)), len(g.Duplicates))
	fmt.Printf("[%s] Second parents ignored : %d\n", icon(len(g.Conflicts)), len(g.Conflicts))
	fmt.Printf("[%s] Cycles                 : %d\n", icon(len(h.Cycles)), len(h.Cycles))
	fmt.Printf("[%s] Blocked units          : %d\n", icon(len(h.Blocked())), len(h.Blocked()))
	for _, c := range h.Cycles {
		fmt.Printf("    └ cycle: %v\n", c)
	}
	for _, n := range h.Blocked() {
		fmt.Printf("    └ %s %s: parent %s missing\n", n.ID, n.Name, n.MissingParent)
	}
}

func init() {
	RootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.Flags().StringVar(&snapshotOut, "save", "", "write the hierarchy snapshot (json) to this file")
}
