// Package session holds the pipeline state of one migration run: the loaded
// extracts, the mapping configuration, the computed hierarchy and the files
// generated from it. A Session is created per run and is not shared.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/source"
	"hcm-migrate/internal/transform"
	"hcm-migrate/internal/validate"
)

var (
	ErrNoUnits         = errors.New("unit extract not loaded")
	ErrNoRelationships = errors.New("relationship extract not loaded")
	ErrNoHierarchy     = errors.New("hierarchy not built")
)

// Options configure a session.
type Options struct {
	Columns   source.Columns    `mapstructure:"columns"`
	Hierarchy hierarchy.Options `mapstructure:"hierarchy"`
	Validate  validate.Options  `mapstructure:"validate"`
}

// DefaultOptions returns the standard columns and thresholds.
func DefaultOptions() Options {
	return Options{
		Columns:  source.DefaultColumns(),
		Validate: validate.DefaultOptions(),
	}
}

// Session is the state of one run. Every step replaces the state derived
// from the step before it, so a reload never leaves stale levels or files.
type Session struct {
	ID     uuid.UUID
	Config *mapping.Config

	Units         *source.Table
	Relationships *source.Table
	Graph         *hierarchy.Graph
	Hierarchy     *hierarchy.Hierarchy
	// Stored is a hierarchy loaded from a snapshot. When set, validation
	// checks it instead of the one built in this session.
	Stored *hierarchy.Hierarchy

	Files      []*export.GeneratedFile
	Issues     []error
	CellErrors []*transform.CellError
	generated  bool

	opts Options
	log  logrus.FieldLogger
}

// New starts a session on a private copy of cfg.
func New(cfg *mapping.Config, opts Options, log logrus.FieldLogger) *Session {
	if cfg == nil {
		cfg = mapping.DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts.Columns = opts.Columns.WithDefaults()
	opts.Validate.Columns = opts.Columns
	opts.Validate.Hierarchy = opts.Hierarchy

	id := uuid.New()
	return &Session{
		ID:     id,
		Config: cfg.Clone(),
		opts:   opts,
		log:    log.WithField("session", id.String()[:8]),
	}
}

// Columns returns the column names this session reads.
func (s *Session) Columns() source.Columns { return s.opts.Columns }

// LoadUnits reads the HRP1000 extract. A file that cannot be used is
// rejected whole and the previous table, if any, is kept.
func (s *Session) LoadUnits(path string) error {
	t, err := s.load(path, s.opts.Columns.UnitRequired())
	if err != nil {
		return err
	}
	s.Units = t
	s.reset()
	return nil
}

// LoadRelationships reads the HRP1001 extract.
func (s *Session) LoadRelationships(path string) error {
	t, err := s.load(path, s.opts.Columns.RelationshipRequired())
	if err != nil {
		return err
	}
	s.Relationships = t
	s.reset()
	return nil
}

// SetTables installs already parsed extracts.
func (s *Session) SetTables(units, relationships *source.Table) error {
	if err := units.RequireColumns(s.opts.Columns.UnitRequired()...); err != nil {
		return err
	}
	if err := relationships.RequireColumns(s.opts.Columns.RelationshipRequired()...); err != nil {
		return err
	}
	s.Units, s.Relationships = units, relationships
	s.reset()
	return nil
}

func (s *Session) load(path string, required []string) (*source.Table, error) {
	t, err := source.ReadFile(path, required...)
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(required...); err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{"file": t.Name, "rows": t.Len(), "encoding": t.Encoding})
	for _, w := range t.Warnings {
		log.Warn(w.String())
	}
	log.Info("extract loaded")
	return t, nil
}

func (s *Session) reset() {
	s.Graph, s.Hierarchy = nil, nil
	s.Files, s.Issues, s.CellErrors = nil, nil, nil
	s.generated = false
}

// LoadSnapshot reads a stored hierarchy to validate against.
func (s *Session) LoadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open hierarchy snapshot: %w", err)
	}
	defer f.Close()
	h, err := hierarchy.ReadSnapshot(f)
	if err != nil {
		return err
	}
	s.Stored = h
	return nil
}

// SaveSnapshot writes the built hierarchy.
func (s *Session) SaveSnapshot(w io.Writer) error {
	if s.Hierarchy == nil {
		return ErrNoHierarchy
	}
	return hierarchy.WriteSnapshot(w, s.Hierarchy)
}

// BuildHierarchy builds the relationship graph and assigns levels.
// Referential and structural defects are recorded on the result, not
// returned as errors.
func (s *Session) BuildHierarchy() (*hierarchy.Hierarchy, error) {
	if s.Units == nil {
		return nil, ErrNoUnits
	}
	if s.Relationships == nil {
		return nil, ErrNoRelationships
	}
	g, err := hierarchy.Build(s.Units, s.Relationships, s.opts.Columns, s.opts.Hierarchy)
	if err != nil {
		return nil, err
	}
	h := hierarchy.AssignLevels(g)
	s.reset()
	s.Graph, s.Hierarchy = g, h

	s.log.WithFields(logrus.Fields{
		"units":      h.Len(),
		"levels":     h.MaxLevel(),
		"orphans":    len(g.Orphans),
		"duplicates": len(g.Duplicates),
		"conflicts":  len(g.Conflicts),
		"cycles":     len(h.Cycles),
		"blocked":    len(h.Blocked()),
	}).Info("hierarchy built")
	if g.Inactive > 0 {
		s.log.WithField("skipped", g.Inactive).Info("inactive relationships ignored")
	}
	for _, c := range h.Cycles {
		s.log.WithField("units", c).Warn("circular reporting line")
	}
	return h, nil
}

// Generate renders every Level and Association file. Configuration errors
// for one file family are kept in Issues and do not stop the other.
func (s *Session) Generate() (*export.Result, error) {
	if s.Hierarchy == nil {
		return nil, ErrNoHierarchy
	}
	engine := transform.New(s.Config.Lookups, s.log)
	gen := export.NewGenerator(s.Config, engine, export.Input{
		Units:         s.Units,
		Relationships: s.Relationships,
		Columns:       s.opts.Columns,
		Graph:         s.Graph,
		Hierarchy:     s.Hierarchy,
	}, s.log)

	res := gen.All()
	s.Files = res.Files
	s.Issues = res.Errors
	s.CellErrors = engine.Issues()
	s.generated = true

	for _, err := range res.Errors {
		s.log.WithError(err).Error("file family not generated")
	}
	for _, f := range res.Files {
		for _, w := range f.Warnings {
			s.log.WithField("file", f.Filename).Warn(w)
		}
	}
	return res, nil
}

// Validate checks the extracts, the hierarchy and any generated files.
func (s *Session) Validate() (*validate.Report, error) {
	h := s.Hierarchy
	if s.Stored != nil {
		h = s.Stored
	}
	rep, err := validate.Validate(validate.Input{
		Units:         s.Units,
		Relationships: s.Relationships,
		Hierarchy:     h,
		Files:         s.Files,
		Generated:     s.generated,
	}, s.opts.Validate)
	if err != nil {
		return nil, err
	}
	counts := rep.Counts()
	s.log.WithFields(logrus.Fields{
		"ready":    rep.Ready(),
		"critical": counts[validate.Critical],
		"high":     counts[validate.High],
		"medium":   counts[validate.Medium],
		"low":      counts[validate.Low],
	}).Info("validation finished")
	return rep, nil
}

// Manifest describes the generated files for format.
func (s *Session) Manifest(format export.Format) *export.Manifest {
	m := export.NewManifest(s.ID, format, s.Files)
	if s.Units != nil {
		m.Input["units"] = s.Units.Name
	}
	if s.Relationships != nil {
		m.Input["relationships"] = s.Relationships.Name
	}
	for _, err := range s.Issues {
		m.Issues = append(m.Issues, err.Error())
	}
	return m
}
