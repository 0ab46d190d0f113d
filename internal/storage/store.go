package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/export"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	traceFile    = "trace.csv"
)

// Store keeps one directory per run. Concentration grids are not written;
// they are reproduced exactly by re-running the saved config.
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
	ID        string             `json:"id"`
	Mechanism string             `json:"mechanism"`
	Technique string             `json:"technique"`
	Timestamp time.Time          `json:"timestamp"`
	Samples   int                `json:"samples"`
	TimeStep  float64            `json:"time_step"`
	SpaceStep float64            `json:"space_step"`
	Lambda    float64            `json:"lambda"`
	Warnings  []string           `json:"warnings,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Trace is the persisted time series of a run.
type Trace struct {
	Time      []float64
	Potential []float64
	Current   []float64
}

func (s *Store) Save(cfg *config.Config, res *echem.Result, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%s", strings.ToLower(res.Mechanism.String()), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Mechanism: res.Mechanism.String(),
		Technique: res.Technique.String(),
		Timestamp: time.Now(),
		Samples:   res.Len(),
		TimeStep:  res.Grid.TimeStep,
		SpaceStep: res.Grid.SpaceStep,
		Lambda:    res.Grid.Lambda[echem.Oxidized],
		Warnings:  res.Warnings,
		Metrics:   export.Finite(metrics),
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, configFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeTrace(filepath.Join(runDir, traceFile), res); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, res *echem.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteTraceCSV(f, res)
}

// List returns every readable run, newest first.
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

func (s *Store) Load(runID string) (*RunMetadata, error) {
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

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", runID, err)
	}

	tr := &Trace{}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		vals := make([]float64, 3)
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trace %s line %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		tr.Time = append(tr.Time, vals[0])
		tr.Potential = append(tr.Potential, vals[1])
		tr.Current = append(tr.Current, vals[2])
	}
	return tr, nil
}

// Rerun regenerates the full result, grids included, from the saved config.
func (s *Store) Rerun(runID string) (*echem.Result, error) {
	cfg, err := s.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	return echem.Simulate(p)
}
