package hierarchy

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteSnapshot stores a hierarchy so a later run can be checked against it.
func WriteSnapshot(w io.Writer, h *Hierarchy) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("failed to write hierarchy snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a hierarchy written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Hierarchy, error) {
	var h Hierarchy
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to read hierarchy snapshot: %w", err)
	}
	if h.Nodes == nil {
		h.Nodes = map[string]*Node{}
	}
	for _, id := range h.Order {
		if _, ok := h.Nodes[id]; !ok {
			return nil, fmt.Errorf("hierarchy snapshot: unit %q listed in order but not in nodes", id)
		}
	}
	if len(h.Order) != len(h.Nodes) {
		return nil, fmt.Errorf("hierarchy snapshot: %d units in order, %d in nodes", len(h.Order), len(h.Nodes))
	}
	return &h, nil
}
