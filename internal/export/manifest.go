package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"hcm-migrate/internal/mapping"
)

// ManifestFile describes one written file.
type ManifestFile struct {
	Filename string         `json:"filename"`
	Kind     mapping.Target `json:"kind"`
	Level    int            `json:"level"`
	Rows     int            `json:"rows"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Manifest records what a generate run produced.
type Manifest struct {
	Version     int               `json:"version"`
	RunID       uuid.UUID         `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Format      Format            `json:"format"`
	Input       map[string]string `json:"input"`
	Files       []ManifestFile    `json:"files"`
	Issues      []string          `json:"issues,omitempty"`
}

// NewManifest summarises files written in format.
func NewManifest(runID uuid.UUID, format Format, files []*GeneratedFile) *Manifest {
	m := &Manifest{
		Version:     1,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Format:      format,
		Input:       map[string]string{},
	}
	for _, f := range files {
		m.Files = append(m.Files, ManifestFile{
			Filename: f.FileName(format),
			Kind:     f.Kind,
			Level:    f.Level,
			Rows:     f.DataRows(),
			Warnings: f.Warnings,
		})
	}
	return m
}

// Write stores the manifest in dir as manifest_<timestamp>_<run id>.json.
func (m *Manifest) Write(dir string) (string, error) {
	ts := m.GeneratedAt.Format("20060102T150405Z")
	path := filepath.Join(dir, fmt.Sprintf("manifest_%s_%s.json", ts, m.RunID.String()))

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
