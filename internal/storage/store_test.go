package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/sim"
)

func shortRun(t *testing.T) (*config.Config, *sim.Result) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Horizon.End = 5
	result, err := sim.New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	return cfg, result
}

func TestStore_SaveAndOpen(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init())

	cfg, result := shortRun(t)
	id, err := s.Save("reference", cfg, result)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.Open(id)
	require.NoError(t, err)

	assert.Equal(t, id, run.Meta.ID)
	assert.Equal(t, "reference", run.Meta.Preset)
	assert.Equal(t, result.Trajectory.Len(), run.Meta.Samples)
	assert.Equal(t, result.Metrics, run.Meta.Metrics)
	assert.Equal(t, result.Trajectory.Stats, run.Trajectory.Stats)
	assert.Equal(t, cfg, run.Config)

	// the CSV keeps full precision, so the stored trajectory is exact
	assert.Equal(t, result.Trajectory.Times, run.Trajectory.Times)
	require.Len(t, run.Trajectory.States, len(result.Trajectory.States))
	for i := range result.Trajectory.States {
		assert.Equal(t, []float64(result.Trajectory.States[i]), []float64(run.Trajectory.States[i]))
	}

	// recomputing from the stored run reproduces the diagnostic
	again := sim.Analyze(run.Config, run.Trajectory)
	assert.Equal(t, result.Diagnostics, again.Diagnostics)
}

func TestStore_ListAndResolve(t *testing.T) {
	s := New(t.TempDir())

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs, "missing base dir lists nothing")

	_, err = s.Resolve("latest")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	cfg, result := shortRun(t)
	first, err := s.Save("", cfg, result)
	require.NoError(t, err)
	second, err := s.Save("", cfg, result)
	require.NoError(t, err)

	runs, err = s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	id, err := s.Resolve(first)
	require.NoError(t, err)
	assert.Equal(t, first, id)

	id, err = s.Resolve("latest")
	require.NoError(t, err)
	assert.Contains(t, []string{first, second}, id)

	_, err = s.Resolve("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestStore_SkipsBrokenRuns(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk", "metadata.json"), []byte("{"), 0644))

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.Load("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestStore_SaveFailureLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Init())

	cfg, result := shortRun(t)
	broken := *result
	diag := *result.Diagnostics
	diag.Times = diag.Times[:1]
	broken.Diagnostics = &diag

	_, err := s.Save("reference", cfg, &broken)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed save must not leave a run directory")

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCSV_RoundTrip(t *testing.T) {
	_, result := shortRun(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result.Trajectory, result.Diagnostics))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "time,z,v,e_i,kp,ki,kd,e_z,e_v,u,V,Vdot", header)

	traj, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, result.Trajectory.Times, traj.Times)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short header", "time,z\n"},
		{"short row", "time,z,v,e_i,kp,ki,kd\n0,1,2\n"},
		{"bad number", "time,z,v,e_i,kp,ki,kd\n0,1,2,3,4,five,6\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestExportJSON(t *testing.T) {
	s := New(t.TempDir())
	cfg, result := shortRun(t)
	id, err := s.Save("", cfg, result)
	require.NoError(t, err)

	run, err := s.Open(id)
	require.NoError(t, err)
	a := sim.Analyze(run.Config, run.Trajectory)

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, run, a.Diagnostics, a.Metrics))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, id, data.ID)
	assert.Equal(t, run.Trajectory.Len(), data.Steps)
	assert.Len(t, data.Diagnostics.U, data.Steps)
	assert.Equal(t, a.Summary.FinalEZ, data.Summary.FinalEZ)
}
