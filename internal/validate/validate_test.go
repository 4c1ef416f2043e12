package validate_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/source"
	"hcm-migrate/internal/transform"
	"hcm-migrate/internal/validate"
)

const unitHeader = "Object ID,Name,Planning status,Start date,End Date\n"
const relHeader = "Source ID,Target object ID,Relationship\n"

func table(t *testing.T, name, data string) *source.Table {
	t.Helper()
	tbl, err := source.ParseCSV(name, []byte(data))
	require.NoError(t, err)
	return tbl
}

type fixture struct {
	units, rels *source.Table
	h           *hierarchy.Hierarchy
	files       []*export.GeneratedFile
}

func build(t *testing.T, units, rels string) fixture {
	t.Helper()
	fx := fixture{units: table(t, "hrp1000.csv", unitHeader+units)}
	if rels == "" {
		fx.rels = &source.Table{Name: "hrp1001.csv", Header: strings.Split(strings.TrimSpace(relHeader), ",")}
	} else {
		fx.rels = table(t, "hrp1001.csv", relHeader+rels)
	}
	cols := source.DefaultColumns()
	g, err := hierarchy.Build(fx.units, fx.rels, cols, hierarchy.Options{})
	require.NoError(t, err)
	fx.h = hierarchy.AssignLevels(g)

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := mapping.DefaultConfig()
	gen := export.NewGenerator(cfg, transform.New(cfg.Lookups, log), export.Input{
		Units: fx.units, Relationships: fx.rels, Columns: cols, Graph: g, Hierarchy: fx.h,
	}, log)
	fx.files = gen.All().Files
	return fx
}

func run(t *testing.T, fx fixture) *validate.Report {
	t.Helper()
	rep, err := validate.Validate(validate.Input{
		Units:         fx.units,
		Relationships: fx.rels,
		Hierarchy:     fx.h,
		Files:         fx.files,
		Generated:     true,
	}, validate.DefaultOptions())
	require.NoError(t, err)
	return rep
}

func criticals(rep *validate.Report) []validate.Finding {
	return rep.BySeverity()[validate.Critical]
}

func TestValidate_CleanHierarchyIsReady(t *testing.T) {
	fx := build(t,
		"10000001,Corp,1,01.01.2020,31.12.9999\n10000002,Div A,1,01.01.2020,31.12.9999\n",
		"10000002,10000001,A002\n")

	rep := run(t, fx)
	assert.True(t, rep.Ready())
	assert.Empty(t, criticals(rep))
	assert.Empty(t, rep.Errors)
	assert.Equal(t, 2, rep.Stats.SourceUnits)
	assert.Equal(t, 2, rep.Stats.PlacedRows)
	assert.Equal(t, 2, rep.Stats.OutputRows)
	assert.Equal(t, 2, rep.Stats.MaxDepth)
}

func TestValidate_OrphanedTarget(t *testing.T) {
	fx := build(t,
		"10000001,Corp,1,,\n10000002,Div A,1,,\n10000003,Div B,1,,\n",
		"10000002,99999999,A002\n10000003,99999999,A002\n")

	rep := run(t, fx)
	assert.False(t, rep.Ready())

	orphans := rep.Find(validate.CodeOrphanedTargetID)
	require.Len(t, orphans, 1)
	assert.Equal(t, validate.Critical, orphans[0].Severity)
	assert.Equal(t, 2, orphans[0].Count)
	assert.Equal(t, "99999999", orphans[0].Samples[0].ID)
	assert.Contains(t, orphans[0].Description, "99999999")
	assert.Len(t, criticals(rep), 1)

	blocked := rep.Find(validate.CodeBlockedUnit)
	require.Len(t, blocked, 1)
	assert.Equal(t, validate.High, blocked[0].Severity)
	assert.Equal(t, 2, blocked[0].Count)

	n, _ := fx.h.Node("10000002")
	assert.Equal(t, 1, n.Level)
}

func TestValidate_OrphanedSource(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n", "10000009,10000001,A002\n")

	rep := run(t, fx)
	orphans := rep.Find(validate.CodeOrphanedSourceID)
	require.Len(t, orphans, 1)
	assert.Equal(t, "10000009", orphans[0].Samples[0].ID)
	assert.Empty(t, rep.Find(validate.CodeOrphanedTargetID))
}

func TestValidate_DuplicateIDGroupsRows(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n10000001,Corp copy,1,,\n", "")

	rep := run(t, fx)
	dups := rep.Find(validate.CodeDuplicateObjectID)
	require.Len(t, dups, 1)
	assert.Equal(t, validate.Critical, dups[0].Severity)
	assert.Equal(t, 2, dups[0].Count)
	assert.Equal(t, 2, dups[0].Samples[0].Line)
	assert.Equal(t, 3, dups[0].Samples[1].Line)
	assert.Len(t, criticals(rep), 1)
}

func TestValidate_CycleNamesMembers(t *testing.T) {
	fx := build(t, "A,Alpha,1,,\nB,Beta,1,,\n", "A,B,A002\nB,A,A002\n")

	rep := run(t, fx)
	cycles := rep.Find(validate.CodeCircularReference)
	require.Len(t, cycles, 1)
	assert.Equal(t, validate.Critical, cycles[0].Severity)
	var ids []string
	for _, s := range cycles[0].Samples {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, ids)

	for _, id := range []string{"A", "B"} {
		n, _ := fx.h.Node(id)
		assert.Equal(t, hierarchy.LevelCycle, n.Level)
	}
	assert.NotEmpty(t, rep.Find(validate.CodeDataLossProcessing))
}

func TestValidate_DriftIsReportedNotCorrected(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n10000002,Div A,1,,\n", "10000002,10000001,A002\n")
	n, _ := fx.h.Node("10000002")
	n.Level = 5

	rep := run(t, fx)
	drift := rep.Find(validate.CodeHierarchyCalculation)
	require.Len(t, drift, 1)
	assert.Equal(t, validate.High, drift[0].Severity)
	assert.Equal(t, "10000002", drift[0].Samples[0].ID)
	assert.Equal(t, "5", drift[0].Samples[0].Value)
	assert.Equal(t, "2", drift[0].Samples[0].Suggestion)
	assert.Equal(t, 5, n.Level)
}

func TestValidate_StoredCycleDetectedIndependently(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n10000002,Div A,1,,\n", "10000002,10000001,A002\n")
	root, _ := fx.h.Node("10000001")
	root.Parent = "10000002"

	rep := run(t, fx)
	require.Len(t, rep.Find(validate.CodeCircularReference), 1)
	assert.NotEmpty(t, rep.Find(validate.CodeHierarchyCalculation))
}

func TestValidate_CycleInExtractsWithCleanStoredHierarchy(t *testing.T) {
	const units = "10000001,Corp,1,,\n10000002,Div A,1,,\n"
	stored := build(t, units, "10000002,10000001,A002\n")
	current := build(t, units, "10000002,10000001,A002\n10000001,10000002,A002\n")
	current.h = stored.h

	rep := run(t, current)
	cycles := rep.Find(validate.CodeCircularReference)
	require.Len(t, cycles, 1)
	assert.Equal(t, validate.Critical, cycles[0].Severity)
	assert.Equal(t, 2, cycles[0].Count)
	assert.NotEmpty(t, rep.Find(validate.CodeHierarchyCalculation))
	assert.False(t, rep.Ready())
}

func TestValidate_SameCycleStoredAndComputedReportedOnce(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n10000002,Div A,1,,\n", "10000002,10000001,A002\n10000001,10000002,A002\n")

	rep := run(t, fx)
	assert.Len(t, rep.Find(validate.CodeCircularReference), 1)
}

func TestValidate_MissingColumnsAndNulls(t *testing.T) {
	units := table(t, "hrp1000.csv", "Object ID,Planning status\n10000001,1\n")
	rels := table(t, "hrp1001.csv", "Source ID,Target object ID\n,10000001\n")

	rep, err := validate.Validate(validate.Input{Units: units, Relationships: rels}, validate.DefaultOptions())
	require.NoError(t, err)

	missing := rep.Find(validate.CodeMissingRequiredField)
	require.Len(t, missing, 1)
	assert.Equal(t, "Name", missing[0].Samples[0].Value)

	nulls := rep.Find(validate.CodeNullRequiredField)
	require.Len(t, nulls, 1)
	assert.Equal(t, "Source ID", nulls[0].Field)
	assert.Equal(t, 2, nulls[0].Samples[0].Line)
}

func TestValidate_NilTables(t *testing.T) {
	rep, err := validate.Validate(validate.Input{}, validate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, rep.Find(validate.CodeMissingRequiredField), 2)
	assert.False(t, rep.Ready())
}

func TestValidate_FormatChecks(t *testing.T) {
	fx := build(t,
		"10000001,Corp,1,01.01.2020,31.12.9999\n"+
			"12345,Div A,ACTIVE,2020-01-01,31.12.9999\n"+
			"10000003,Div B,7,someday,01.01.2000\n",
		"12345,10000001,A002\n10000003,10000001,A002\n")

	rep := run(t, fx)

	ids := rep.Find(validate.CodeInvalidIDFormat)
	require.Len(t, ids, 2, "one finding per identifier column")
	assert.Equal(t, "00012345", ids[0].Samples[0].Suggestion)

	status := rep.Find(validate.CodeInvalidStatusCode)
	require.Len(t, status, 1)
	assert.Equal(t, validate.High, status[0].Severity)
	assert.Equal(t, 2, status[0].Count)
	assert.Equal(t, "1", status[0].Samples[0].Suggestion)
	assert.Equal(t, "", status[0].Samples[1].Suggestion)

	dates := rep.Find(validate.CodeInvalidDateFormat)
	require.Len(t, dates, 1)
	assert.Equal(t, validate.Medium, dates[0].Severity)
	assert.Equal(t, "someday", dates[0].Samples[0].Value)

	assert.Len(t, rep.Find(validate.CodeInconsistentDates), 1)
	assert.Empty(t, rep.Find(validate.CodeInvalidDateRange), "unparseable start is not compared")
}

func TestValidate_InvertedDateRange(t *testing.T) {
	fx := build(t, "10000001,Corp,1,01.01.2020,31.12.2019\n", "")
	rep := run(t, fx)
	inverted := rep.Find(validate.CodeInvalidDateRange)
	require.Len(t, inverted, 1)
	assert.Equal(t, 2, inverted[0].Samples[0].Line)
}

func TestValidate_ConflictingParents(t *testing.T) {
	fx := build(t, "10000001,A,1,,\n10000002,B,1,,\n10000003,C,1,,\n",
		"10000003,10000001,A002\n10000003,10000002,A002\n")

	rep := run(t, fx)
	conflicts := rep.Find(validate.CodeMultipleParents)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 3, conflicts[0].Samples[0].Line)
	assert.Equal(t, "10000002", conflicts[0].Samples[0].Value)
}

func TestValidate_ShapeWarnings(t *testing.T) {
	var units, rels strings.Builder
	units.WriteString("10000000,Root,1,,\n")
	for i := 1; i <= 3; i++ {
		id := "1000000" + string(rune('0'+i))
		units.WriteString(id + ",Child,1,,\n")
		rels.WriteString(id + ",10000000,A002\n")
	}
	fx := build(t, units.String(), rels.String())

	opts := validate.DefaultOptions()
	opts.MaxSpan = 2
	opts.MaxDepth = 1
	rep, err := validate.Validate(validate.Input{Units: fx.units, Relationships: fx.rels, Hierarchy: fx.h}, opts)
	require.NoError(t, err)

	wide := rep.Find(validate.CodeWideSpan)
	require.Len(t, wide, 1)
	assert.Equal(t, validate.Low, wide[0].Severity)
	assert.Equal(t, "10000000", wide[0].Samples[0].ID)

	deep := rep.Find(validate.CodeExcessiveDepth)
	require.Len(t, deep, 1)
	assert.Equal(t, 3, deep[0].Count)
	assert.True(t, rep.Ready(), "warnings never block readiness")
}

func TestValidate_OutputChecks(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n10000002,Div A,1,,\n10000003,Div B,1,,\n",
		"10000002,10000001,A002\n10000003,10000001,A002\n")

	t.Run("missing level file", func(t *testing.T) {
		var files []*export.GeneratedFile
		for _, f := range fx.files {
			if !(f.Kind == mapping.TargetLevel && f.Level == 2) {
				files = append(files, f)
			}
		}
		rep, err := validate.Validate(validate.Input{
			Units: fx.units, Relationships: fx.rels, Hierarchy: fx.h, Files: files, Generated: true,
		}, validate.DefaultOptions())
		require.NoError(t, err)
		missing := rep.Find(validate.CodeMissingLevelFiles)
		require.Len(t, missing, 1)
		assert.Equal(t, "2", missing[0].Samples[0].Value)

		loss := rep.Find(validate.CodeDataLossOutput)
		require.Len(t, loss, 1)
		assert.Equal(t, 2, loss[0].Count)
	})

	t.Run("missing associations", func(t *testing.T) {
		var files []*export.GeneratedFile
		for _, f := range fx.files {
			if f.Kind == mapping.TargetLevel {
				files = append(files, f)
			}
		}
		rep, err := validate.Validate(validate.Input{
			Units: fx.units, Relationships: fx.rels, Hierarchy: fx.h, Files: files, Generated: true,
		}, validate.DefaultOptions())
		require.NoError(t, err)
		assoc := rep.Find(validate.CodeMissingAssociations)
		require.Len(t, assoc, 1)
		assert.Contains(t, assoc[0].Samples[0].Detail, "0 of 2")
	})

	t.Run("empty level file", func(t *testing.T) {
		files := append([]*export.GeneratedFile{}, fx.files...)
		files = append(files, &export.GeneratedFile{Kind: mapping.TargetLevel, Level: 3, Filename: "Level3_Division"})
		rep, err := validate.Validate(validate.Input{
			Units: fx.units, Relationships: fx.rels, Hierarchy: fx.h, Files: files, Generated: true,
		}, validate.DefaultOptions())
		require.NoError(t, err)
		empty := rep.Find(validate.CodeEmptyLevelFile)
		require.Len(t, empty, 1)
		assert.Equal(t, "Level3_Division", empty[0].Source)
	})

	t.Run("empty cells", func(t *testing.T) {
		rep := run(t, fx)
		ratio := rep.Find(validate.CodeHighEmptyCellRatio)
		require.NotEmpty(t, ratio)
		assert.Equal(t, validate.Medium, ratio[0].Severity)
		assert.Empty(t, rep.Errors)
	})
}

func TestValidate_SampleLimit(t *testing.T) {
	var units strings.Builder
	for i := 0; i < 30; i++ {
		units.WriteString("X" + strings.Repeat("1", i+1) + ",Unit,1,,\n")
	}
	fx := build(t, units.String(), "")

	rep := run(t, fx)
	ids := rep.Find(validate.CodeInvalidIDFormat)
	require.Len(t, ids, 1)
	assert.Equal(t, 30, ids[0].Count)
	assert.Len(t, ids[0].Samples, 15)
}

func TestValidate_BadPattern(t *testing.T) {
	opts := validate.DefaultOptions()
	opts.IDPattern = "("
	_, err := validate.Validate(validate.Input{}, opts)
	assert.Error(t, err)
}

func TestReportWriters(t *testing.T) {
	fx := build(t, "10000001,Corp,1,,\n", "10000002,99999999,A002\n")
	rep := run(t, fx)

	var text bytes.Buffer
	require.NoError(t, rep.WriteText(&text))
	assert.Contains(t, text.String(), "NOT READY")
	assert.Contains(t, text.String(), validate.CodeOrphanedTargetID)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))
	var decoded struct {
		Ready  bool               `json:"ready"`
		Errors []validate.Finding `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.False(t, decoded.Ready)
	assert.NotEmpty(t, decoded.Errors)

	counts := rep.Counts()
	assert.Equal(t, len(criticals(rep)), counts[validate.Critical])
}
