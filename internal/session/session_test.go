package session_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/session"
	"hcm-migrate/internal/source"
	"hcm-migrate/internal/validate"
)

const unitsCSV = `Object ID,Name,Planning status,Start date,End Date,Object abbr.
10000001,Corp,1,01.01.2020,31.12.9999,CORP
10000002,Div A,1,01.01.2020,31.12.9999,DIVA
10000003,Team A1,1,01.01.2020,31.12.9999,TA1
`

const relsCSV = `Source ID,Target object ID,Relationship,Planning status
10000002,10000001,A002,1
10000003,10000002,A002,1
`

func newSession(t *testing.T) *session.Session {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return session.New(mapping.DefaultConfig(), session.DefaultOptions(), log)
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestPipeline(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.LoadUnits(writeFile(t, "hrp1000.csv", unitsCSV)))
	require.NoError(t, s.LoadRelationships(writeFile(t, "hrp1001.csv", relsCSV)))

	h, err := s.BuildHierarchy()
	require.NoError(t, err)
	assert.Equal(t, 3, h.MaxLevel())

	res, err := s.Generate()
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Len(t, s.Files, 5)

	rep, err := s.Validate()
	require.NoError(t, err)
	assert.True(t, rep.Ready())
	assert.Equal(t, 3, rep.Stats.OutputRows)

	m := s.Manifest(export.CSV)
	assert.Equal(t, s.ID, m.RunID)
	assert.Equal(t, "hrp1000.csv", m.Input["units"])
}

func TestStepsRequireTheirInputs(t *testing.T) {
	s := newSession(t)

	_, err := s.BuildHierarchy()
	assert.True(t, errors.Is(err, session.ErrNoUnits))

	_, err = s.Generate()
	assert.True(t, errors.Is(err, session.ErrNoHierarchy))

	assert.True(t, errors.Is(s.SaveSnapshot(io.Discard), session.ErrNoHierarchy))
}

func TestLoadRejectsBadShapeAndKeepsPrevious(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.LoadUnits(writeFile(t, "hrp1000.csv", unitsCSV)))

	err := s.LoadUnits(writeFile(t, "broken.csv", "Foo,Bar\n1,2\n"))
	var shape *source.ShapeError
	require.True(t, errors.As(err, &shape))
	assert.Contains(t, shape.Missing, "Object ID")
	assert.Equal(t, "hrp1000.csv", s.Units.Name)
}

func TestReloadDropsDerivedState(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.LoadUnits(writeFile(t, "hrp1000.csv", unitsCSV)))
	require.NoError(t, s.LoadRelationships(writeFile(t, "hrp1001.csv", relsCSV)))
	_, err := s.BuildHierarchy()
	require.NoError(t, err)
	_, err = s.Generate()
	require.NoError(t, err)

	require.NoError(t, s.LoadRelationships(writeFile(t, "hrp1001.csv", relsCSV)))
	assert.Nil(t, s.Hierarchy)
	assert.Nil(t, s.Files)
}

func TestConfigIsPrivateCopy(t *testing.T) {
	cfg := mapping.DefaultConfig()
	s := session.New(cfg, session.DefaultOptions(), nil)
	cfg.Rules = nil
	assert.NotEmpty(t, s.Config.Rules)
}

func TestSnapshotRoundTripAndDrift(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.LoadUnits(writeFile(t, "hrp1000.csv", unitsCSV)))
	require.NoError(t, s.LoadRelationships(writeFile(t, "hrp1001.csv", relsCSV)))
	_, err := s.BuildHierarchy()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.SaveSnapshot(&buf))
	snap := writeFile(t, "hierarchy.json", buf.String())

	// The organisation changed since the snapshot: Team A1 now reports to Corp.
	next := newSession(t)
	require.NoError(t, next.LoadUnits(writeFile(t, "hrp1000.csv", unitsCSV)))
	require.NoError(t, next.LoadRelationships(writeFile(t, "hrp1001.csv",
		"Source ID,Target object ID\n10000002,10000001\n10000003,10000001\n")))
	require.NoError(t, next.LoadSnapshot(snap))

	rep, err := next.Validate()
	require.NoError(t, err)
	drift := rep.Find(validate.CodeHierarchyCalculation)
	require.Len(t, drift, 1)
	assert.Equal(t, "10000003", drift[0].Samples[0].ID)
}

func TestActiveOnlySkipsInactiveRelationships(t *testing.T) {
	opts := session.DefaultOptions()
	opts.Hierarchy.ActiveOnly = true
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := session.New(mapping.DefaultConfig(), opts, log)

	require.NoError(t, s.LoadUnits(writeFile(t, "hrp1000.csv", unitsCSV)))
	require.NoError(t, s.LoadRelationships(writeFile(t, "hrp1001.csv",
		"Source ID,Target object ID,Planning status\n10000002,10000001,1\n10000003,10000002,2\n")))

	h, err := s.BuildHierarchy()
	require.NoError(t, err)
	n, _ := h.Node("10000003")
	assert.Equal(t, 1, n.Level)
	assert.Equal(t, 1, s.Graph.Inactive)
}
