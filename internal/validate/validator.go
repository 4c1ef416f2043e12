// Package validate checks source extracts, the computed hierarchy and the
// generated files, and reports structured findings by severity.
//
// The validator never trusts the hierarchy it is handed: it rebuilds one from
// the raw tables and reports any disagreement. It never changes its inputs.
package validate

import (
	"fmt"
	"regexp"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/source"
)

// Finding codes.
const (
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeNullRequiredField    = "NULL_REQUIRED_FIELD"
	CodeDuplicateObjectID    = "DUPLICATE_OBJECT_ID"
	CodeOrphanedTargetID     = "ORPHANED_TARGET_ID"
	CodeOrphanedSourceID     = "ORPHANED_SOURCE_ID"
	CodeInvalidIDFormat      = "INVALID_ID_FORMAT"
	CodeInvalidDateFormat    = "INVALID_DATE_FORMAT"
	CodeInconsistentDates    = "INCONSISTENT_DATE_FORMAT"
	CodeInvalidDateRange     = "INVALID_DATE_RANGE"
	CodeInvalidStatusCode    = "INVALID_STATUS_CODE"

	CodeHierarchyCalculation = "HIERARCHY_CALCULATION_ERROR"
	CodeCircularReference    = "CIRCULAR_HIERARCHY_REFERENCE"
	CodeBlockedUnit          = "BLOCKED_UNIT"
	CodeMultipleParents      = "MULTIPLE_PARENT_RELATIONSHIPS"
	CodeExcessiveDepth       = "EXCESSIVE_HIERARCHY_DEPTH"
	CodeWideSpan             = "WIDE_SPAN_OF_CONTROL"

	CodeMissingLevelFiles   = "MISSING_LEVEL_FILES"
	CodeEmptyLevelFile      = "EMPTY_LEVEL_FILE"
	CodeHighEmptyCellRatio  = "HIGH_EMPTY_CELL_RATIO"
	CodeMissingAssociations = "MISSING_ASSOCIATIONS"
	CodeDataLossProcessing  = "SIGNIFICANT_DATA_LOSS_PROCESSING"
	CodeDataLossOutput      = "SIGNIFICANT_DATA_LOSS_OUTPUT"
)

const (
	unitSource = "HRP1000"
	relSource  = "HRP1001"
)

// DefaultIDPattern is the canonical SAP object ID: eight digits.
const DefaultIDPattern = `^[0-9]{8}$`

// Options tune the thresholds of the checks.
type Options struct {
	Columns     source.Columns    `mapstructure:"-"`
	Hierarchy   hierarchy.Options `mapstructure:"-"`
	SampleLimit int               `mapstructure:"sample_limit"`
	MaxDepth    int               `mapstructure:"max_depth"`
	MaxSpan     int               `mapstructure:"max_span"`

	// LossThreshold is the fraction of records a stage may lose before it
	// is reported.
	LossThreshold  float64 `mapstructure:"loss_threshold"`
	EmptyCellRatio float64 `mapstructure:"empty_cell_ratio"`
	IDPattern      string  `mapstructure:"id_pattern"`
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	limits := hierarchy.DefaultLimits()
	return Options{
		Columns:        source.DefaultColumns(),
		SampleLimit:    15,
		MaxDepth:       limits.MaxDepth,
		MaxSpan:        limits.MaxSpan,
		LossThreshold:  0.10,
		EmptyCellRatio: 0.30,
		IDPattern:      DefaultIDPattern,
	}
}

// Input is what gets validated. Hierarchy is the stored result to check for
// drift and may be nil. Output checks run only when Generated is set.
type Input struct {
	Units         *source.Table
	Relationships *source.Table
	Hierarchy     *hierarchy.Hierarchy
	Files         []*export.GeneratedFile
	Generated     bool
}

type validator struct {
	in   Input
	opts Options
	cols source.Columns
	id   *regexp.Regexp
	rep  *Report

	// graph and computed are rebuilt from the raw tables, nil when either
	// table is unusable.
	graph    *hierarchy.Graph
	computed *hierarchy.Hierarchy
}

// Validate runs every check and returns the report. An invalid IDPattern is
// the only error.
func Validate(in Input, opts Options) (*Report, error) {
	if opts.IDPattern == "" {
		opts.IDPattern = DefaultIDPattern
	}
	id, err := regexp.Compile(opts.IDPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid id pattern %q: %w", opts.IDPattern, err)
	}
	v := &validator{
		in:   in,
		opts: opts,
		cols: opts.Columns.WithDefaults(),
		id:   id,
		rep:  &Report{Errors: []Finding{}, Warnings: []Finding{}},
	}
	v.run()
	return v.rep, nil
}

func (v *validator) finding(code string, sev Severity, title string) *Finding {
	return &Finding{Code: code, Severity: sev, Title: title, limit: v.opts.SampleLimit}
}

func (v *validator) run() {
	unitsOK := v.checkRequired(v.in.Units, unitSource, v.cols.UnitRequired())
	relsOK := v.checkRequired(v.in.Relationships, relSource, v.cols.RelationshipRequired())

	if unitsOK {
		v.rep.Stats.SourceUnits = v.in.Units.Len()
		v.checkNulls(v.in.Units, unitSource, v.cols.UnitRequired())
		v.checkIDs(v.in.Units, unitSource, v.cols.UnitID)
		v.checkDates(v.in.Units, unitSource, v.cols.UnitStart, v.cols.UnitEnd)
		v.checkStatus(v.in.Units, unitSource, v.cols.UnitStatus)
	}
	if relsOK {
		v.rep.Stats.SourceRelationships = v.in.Relationships.Len()
		v.checkNulls(v.in.Relationships, relSource, v.cols.RelationshipRequired())
		v.checkIDs(v.in.Relationships, relSource, v.cols.RelChild, v.cols.RelParent)
		v.checkDates(v.in.Relationships, relSource, v.cols.RelStart, v.cols.RelEnd)
		v.checkStatus(v.in.Relationships, relSource, v.cols.RelStatus)
	}

	if unitsOK && relsOK {
		g, err := hierarchy.Build(v.in.Units, v.in.Relationships, v.cols, v.opts.Hierarchy)
		if err == nil {
			v.graph = g
			v.computed = hierarchy.AssignLevels(g)
			v.rep.Stats.HierarchyUnits = v.computed.Len()
			v.rep.Stats.MaxDepth = v.computed.MaxLevel()
		}
	}
	if v.graph != nil {
		v.checkDuplicates()
		v.checkOrphans()
		v.checkConflicts()
		v.checkDrift()
		v.checkBlocked()
	}
	v.checkCycles()
	v.checkShape()

	if v.in.Generated {
		v.checkFiles()
	}
	v.checkLoss()
}
