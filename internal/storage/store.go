package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a persisted derivation. The seed itself is never
// written; Fingerprint identifies the derived material instead.
type RunMetadata struct {
	ID          string                        `json:"id"`
	Command     string                        `json:"command"`
	Timestamp   time.Time                     `json:"timestamp"`
	Fingerprint string                        `json:"fingerprint"`
	Sim         dynamo.Config                 `json:"sim"`
	Systems     []systems.Info                `json:"systems"`
	Metrics     map[string]map[string]float64 `json:"metrics,omitempty"`
	Spectra     []analysis.Spectrum           `json:"spectra,omitempty"`
	Files       []string                      `json:"files,omitempty"`
}

// Save assigns meta a fresh run id and writes it along with one CSV per
// trajectory. Nil trajectories are skipped.
func (s *Store) Save(meta RunMetadata, trajs []*dynamo.Trajectory) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.Files = meta.Files[:0:0]
	for _, traj := range trajs {
		if traj == nil {
			continue
		}
		name := traj.System() + ".csv"
		if err := writeTrajectory(filepath.Join(runDir, name), traj); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		meta.Files = append(meta.Files, name)
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeTrajectory(path string, traj *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := WriteTrajectoryCSV(w, traj); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := checkID(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads the sampled states and times of one system in a run.
func (s *Store) LoadTrajectory(runID, system string) ([]dynamo.State, []float64, error) {
	if err := checkID(runID); err != nil {
		return nil, nil, err
	}
	kind, err := systems.ParseKind(system)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, kind.String()+".csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []dynamo.State{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != dynamo.Dim+1 {
			return nil, nil, fmt.Errorf("row %d: %w: expected %d fields, got %d", i+1, dynamo.ErrShapeMismatch, dynamo.Dim+1, len(record))
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		times = append(times, t)

		state := make(dynamo.State, dynamo.Dim)
		for j := range state {
			state[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		states = append(states, state)
	}

	return states, times, nil
}

func checkID(runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("%w: run id %q: %w", dynamo.ErrInvalidInput, runID, err)
	}
	return nil
}
