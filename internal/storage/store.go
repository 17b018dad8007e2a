package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/sim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	metadataFile   = "metadata.json"
	configFile     = "config.yaml"
	trajectoryFile = "trajectory.csv"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Horizon    [2]float64         `json:"horizon"`
	Samples    int                `json:"samples"`
	Stats      dynamo.SolverStats `json:"stats"`
	Summary    analysis.Summary   `json:"summary"`
	Metrics    map[string]float64 `json:"metrics"`
	Warnings   []sim.Warning      `json:"warnings,omitempty"`
	ElapsedMS  float64            `json:"elapsed_ms"`
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("20060102-150405"), uuid.NewString()[:8])
}

// Save writes the run config, the trajectory with the diagnostic columns
// and, last, its metadata. It returns the new run id. On failure the run
// directory is removed so List never sees a partial run.
func (s *Store) Save(preset string, cfg *config.Config, result *sim.Result) (runID string, err error) {
	now := time.Now()
	runID = newRunID(now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     preset,
		Timestamp:  now,
		Integrator: cfg.Solver.Integrator,
		Horizon:    [2]float64{cfg.Horizon.Start, cfg.Horizon.End},
		Samples:    result.Trajectory.Len(),
		Stats:      result.Trajectory.Stats,
		Summary:    result.Summary,
		Metrics:    result.Metrics,
		Warnings:   result.Warnings,
		ElapsedMS:  float64(result.Elapsed.Microseconds()) / 1000,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	return runID, nil
}

func writeTrajectory(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, result.Trajectory, result.Diagnostics); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the stored runs, newest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Resolve maps "latest" or a unique id prefix to a run id.
func (s *Store) Resolve(ref string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if ref == "latest" {
		if len(runs) == 0 {
			return "", ErrRunNotFound
		}
		return runs[0].ID, nil
	}

	var match string
	for _, r := range runs {
		if r.ID == ref {
			return ref, nil
		}
		if len(ref) > 0 && len(r.ID) >= len(ref) && r.ID[:len(ref)] == ref {
			if match != "" {
				return "", fmt.Errorf("run prefix %q is ambiguous", ref)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, ref)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// Run bundles everything needed to present a stored run.
type Run struct {
	Meta       *RunMetadata
	Config     *config.Config
	Trajectory *dynamo.Trajectory
}

// Open resolves ref and loads the run. The diagnostic is not read back;
// callers recompute it from the trajectory and config.
func (s *Store) Open(ref string) (*Run, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.LoadConfig(id)
	if err != nil {
		return nil, err
	}
	traj, err := s.LoadTrajectory(id)
	if err != nil {
		return nil, err
	}
	traj.Stats = meta.Stats
	return &Run{Meta: meta, Config: cfg, Trajectory: traj}, nil
}
