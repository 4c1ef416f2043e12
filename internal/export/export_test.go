package export_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/hierarchy"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/source"
	"hcm-migrate/internal/transform"
)

const unitsCSV = `Object ID,Name,Planning status,Start date,End Date,Object abbr.
00012345,head office,1,01.01.2020,31.12.9999,HQ
10000002,  finance  ,,01.07.2021,31.12.9999,FIN
10000003,payroll,2,2022-03-15,31.12.9999,PAY
`

const relsCSV = `Source ID,Target object ID,Relationship,Planning status,Start date,End Date
10000002,00012345,a002,1,01.07.2021,31.12.9999
10000003,10000002,,1,15.03.2022,31.12.9999
`

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setup(t *testing.T, cfg *mapping.Config, unitsData, relsData string) *export.Generator {
	t.Helper()
	units, err := source.ParseCSV("hrp1000.csv", []byte(unitsData))
	require.NoError(t, err)
	rels, err := source.ParseCSV("hrp1001.csv", []byte(relsData))
	require.NoError(t, err)

	cols := source.DefaultColumns()
	g, err := hierarchy.Build(units, rels, cols, hierarchy.Options{})
	require.NoError(t, err)
	h := hierarchy.AssignLevels(g)

	log := quietLog()
	engine := transform.New(cfg.Lookups, log)
	return export.NewGenerator(cfg, engine, export.Input{
		Units:         units,
		Relationships: rels,
		Columns:       cols,
		Graph:         g,
		Hierarchy:     h,
	}, log)
}

func TestAll_ChainProducesOneFilePerLevel(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)

	res := gen.All()
	require.Empty(t, res.Errors)

	var names []string
	for _, f := range res.Files {
		names = append(names, f.FileName(export.XLSX))
		assert.Equal(t, 1, f.DataRows(), f.Filename)
	}
	assert.Equal(t, []string{
		"Level1_LegalEntity.xlsx",
		"Level2_BusinessUnit.xlsx",
		"Level3_Division.xlsx",
		"Level2_BusinessUnit_Associations.xlsx",
		"Level3_Division_Associations.xlsx",
	}, names)
}

func TestLevel_HeaderAndValues(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)

	f, err := gen.Level(2)
	require.NoError(t, err)

	assert.Equal(t, export.OperatorField, f.Header[0][0])
	assert.Equal(t, export.OperatorLabel, f.Header[1][0])
	assert.Equal(t, "externalCode", f.Header[0][1])
	assert.Equal(t, "External Code", f.Header[1][1])
	for _, blank := range f.Header[2:] {
		assert.Len(t, blank, f.Width())
		assert.Equal(t, "", strings.Join(blank, ""))
	}

	assert.Equal(t, []string{"10000002"}, f.Column("externalCode"))
	assert.Equal(t, []string{"2021-07-01"}, f.Column("effectiveStartDate"))
	assert.Equal(t, []string{"9999-12-31"}, f.Column("effectiveEndDate"))
	assert.Equal(t, []string{"finance"}, f.Column("name.en_US"))
	assert.Equal(t, []string{"  Finance  "}, f.Column("name.defaultValue"))
	assert.Equal(t, []string{"Active"}, f.Column("effectiveStatus"), "blank status takes the default")
	assert.Equal(t, []int{3}, f.SourceLines)

	f, err = gen.Level(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inactive"}, f.Column("effectiveStatus"))
	assert.Equal(t, []string{"2022-03-15"}, f.Column("effectiveStartDate"))
}

func TestLevel_KeepsLeadingZeros(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)
	f, err := gen.Level(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"00012345"}, f.Column("externalCode"))
}

func TestAssociations(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)

	f, err := gen.Associations(2)
	require.NoError(t, err)
	require.Equal(t, 1, f.DataRows())
	assert.Equal(t, "Level2_BusinessUnit_Associations", f.Filename)
	assert.Equal(t, []string{"10000002"}, f.Column("externalCode"))
	assert.Equal(t, []string{"00012345"}, f.Column("cust_toLegalEntity.externalCode"))
	assert.Equal(t, []string{"A002"}, f.Column("relationshipType"))

	f, err = gen.Associations(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"REPORTS_TO"}, f.Column("relationshipType"))
	assert.Equal(t, []string{"2022-03-15"}, f.Column("effectiveStartDate"))

	_, err = gen.Associations(1)
	assert.Error(t, err)
}

func TestAssociations_OperatorColumn(t *testing.T) {
	cfg := mapping.DefaultConfig()
	cfg.Rules = append(cfg.Rules, mapping.Rule{
		TargetField: "Operator", TargetLabel: "Operator", SourceFile: mapping.HRP1001, AppliesTo: mapping.TargetAssociation,
	})
	gen := setup(t, cfg, unitsCSV, relsCSV)

	f, err := gen.Associations(2)
	require.NoError(t, err)
	last := f.Width() - 1
	assert.Equal(t, export.OperatorField, f.Header[0][last])
	assert.Equal(t, export.OperatorLabel, f.Header[1][last])
	assert.Equal(t, "effectiveStartDate", f.Header[0][0])
}

func TestLevel_EmptyLevelWarns(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)

	f, err := gen.Level(6)
	require.NoError(t, err)
	assert.Equal(t, 0, f.DataRows())
	assert.Equal(t, "Level6_SubDepartment", f.Filename)
	require.NotEmpty(t, f.Warnings)
	assert.Contains(t, f.Warnings[0], "empty level file")
}

func TestAll_MissingAssociationRules(t *testing.T) {
	cfg := mapping.DefaultConfig()
	cfg.Rules = cfg.For(mapping.TargetLevel)
	gen := setup(t, cfg, unitsCSV, relsCSV)

	res := gen.All()
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], mapping.ErrNoRules))
	assert.Len(t, res.Files, 3)
	for _, f := range res.Files {
		assert.Equal(t, mapping.TargetLevel, f.Kind)
	}
}

func TestAll_ConservesUnitsAndIsIdempotent(t *testing.T) {
	units := unitsCSV + "10000004,audit,1,01.01.2023,31.12.9999,AUD\n10000004,audit copy,1,01.01.2023,31.12.9999,AUD\n"
	rels := relsCSV + "10000004,10000003,A002,1,01.01.2023,31.12.9999\n"
	gen := setup(t, mapping.DefaultConfig(), units, rels)

	first := gen.All()
	total := 0
	for _, f := range first.Files {
		if f.Kind == mapping.TargetLevel {
			total += f.DataRows()
		}
	}
	assert.Equal(t, 5, total, "every unit row lands in exactly one level file")

	second := gen.All()
	require.Len(t, second.Files, len(first.Files))
	for i := range first.Files {
		assert.Equal(t, first.Files[i].Rows, second.Files[i].Rows)
	}
}

func TestLevel_MissingColumnWarnsAndUsesDefault(t *testing.T) {
	units := "Object ID,Name\n10000001,HQ\n"
	rels := "Source ID,Target object ID\n"
	rels += "10000009,10000001\n"
	gen := setup(t, mapping.DefaultConfig(), units, rels)

	f, err := gen.Level(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Active"}, f.Column("effectiveStatus"))
	joined := strings.Join(f.Warnings, "\n")
	assert.Contains(t, joined, `"Planning status" not found`)
}

func TestLevel_CellErrorsCounted(t *testing.T) {
	units := "Object ID,Name,Start date\n10000001,HQ,someday\n"
	gen := setup(t, mapping.DefaultConfig(), units, "Source ID,Target object ID\nx,y\n")

	f, err := gen.Level(1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.CellErrors)
	assert.Equal(t, []string{"someday"}, f.Column("effectiveStartDate"))
}

func TestWriteCSV(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)
	f, err := gen.Level(1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, f))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, export.HeaderRows+1)
	assert.True(t, strings.HasPrefix(lines[0], "[OPERATOR],externalCode,"))
	assert.Equal(t, strings.Repeat(",", f.Width()-1), lines[2])
}

func TestWriteXLSX(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)
	f, err := gen.Level(1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, f))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, []string{"Level1_LegalEntity"}, x.GetSheetList())
	v, err := x.GetCellValue("Level1_LegalEntity", "B5")
	require.NoError(t, err)
	assert.Equal(t, "00012345", v)
	v, err = x.GetCellValue("Level1_LegalEntity", "A1")
	require.NoError(t, err)
	assert.Equal(t, export.OperatorField, v)
}

func TestWriteDirAndManifest(t *testing.T) {
	gen := setup(t, mapping.DefaultConfig(), unitsCSV, relsCSV)
	res := gen.All()
	dir := filepath.Join(t.TempDir(), "out")

	var seen int
	paths, err := export.WriteDir(dir, res.Files, export.CSV, func(*export.GeneratedFile) { seen++ })
	require.NoError(t, err)
	assert.Len(t, paths, len(res.Files))
	assert.Equal(t, len(res.Files), seen)
	assert.FileExists(t, filepath.Join(dir, "Level3_Division_Associations.csv"))

	m := export.NewManifest(uuid.New(), export.CSV, res.Files)
	path, err := m.Write(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded export.Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.RunID, decoded.RunID)
	assert.Len(t, decoded.Files, 5)
	assert.Equal(t, "Level1_LegalEntity.csv", decoded.Files[0].Filename)
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, export.CSV, f)

	f, err = export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.XLSX, f)

	_, err = export.ParseFormat("ods")
	assert.Error(t, err)
}
