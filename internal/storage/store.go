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

	"github.com/sirupsen/logrus"

	"github.com/san-kum/nbodysim/internal/nbody"
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
	stateFile    = "state.bin"
)

var energyHeader = []string{"tick", "time", "kinetic", "potential", "total", "deviation"}

type Store struct {
	baseDir string
	log     logrus.FieldLogger
}

func New(baseDir string, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{baseDir: baseDir, log: log}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Preset    string    `json:"preset,omitempty"`
	Parent    string    `json:"parent,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Seed    int64   `json:"seed"`
	Count   int     `json:"count"`
	Dt      float64 `json:"dt"`
	MaxMass float64 `json:"max_mass"`
	MaxVel  float64 `json:"max_vel"`
	MaxAcc  float64 `json:"max_acc"`

	Ticks     int                `json:"ticks"`
	FinalTick int                `json:"final_tick"`
	Workers   int                `json:"workers"`
	Metrics   map[string]float64 `json:"metrics"`
}

// SetParams copies generation parameters into the metadata.
func (m *RunMetadata) SetParams(p nbody.Params) {
	m.Seed = p.Seed
	m.Count = p.Count
	m.Dt = p.Dt
	m.MaxMass = p.MaxMass
	m.MaxVel = p.MaxVel
	m.MaxAcc = p.MaxAcc
}

func (m *RunMetadata) Params() nbody.Params {
	return nbody.Params{
		Seed:    m.Seed,
		Count:   m.Count,
		Dt:      m.Dt,
		MaxMass: m.MaxMass,
		MaxVel:  m.MaxVel,
		MaxAcc:  m.MaxAcc,
	}
}

// Save creates a new run directory holding the metadata, the sampled
// energy trace and a snapshot of sim's final state. It returns the run ID.
// A run that fails to save is removed so List never sees it half written.
func (s *Store) Save(meta RunMetadata, trace []nbody.Report, sim *nbody.Simulation) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("run_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.FinalTick = sim.TickCount()

	if err := writeRun(runDir, meta, trace, sim); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			s.log.WithError(rmErr).WithField("run", runID).Warn("failed to remove incomplete run")
		}
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"run":     runID,
		"samples": len(trace),
		"tick":    meta.FinalTick,
	}).Debug("run saved")

	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, trace []nbody.Report, sim *nbody.Simulation) error {
	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeEnergy(filepath.Join(runDir, energyFile), trace); err != nil {
		return err
	}
	return sim.Save(filepath.Join(runDir, stateFile))
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeEnergy(path string, trace []nbody.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(energyHeader); err != nil {
		return err
	}

	for _, r := range trace {
		row := []string{
			strconv.Itoa(r.Tick),
			formatFloat(r.Time),
			formatFloat(r.Kinetic),
			formatFloat(r.Potential),
			formatFloat(r.Total),
			formatFloat(r.Deviation()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
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
			s.log.WithError(err).WithField("dir", entry.Name()).Debug("skipping run directory")
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

// LoadEnergy reads back the sampled energy trace of a run. The baseline
// is not stored per row, so Initial is left zero.
func (s *Store) LoadEnergy(runID string) ([]nbody.Report, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(energyHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []nbody.Report{}, nil
	}

	trace := make([]nbody.Report, 0, len(records)-1)
	for i, record := range records[1:] {
		tick, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", energyFile, i+1, err)
		}

		var vals [4]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", energyFile, i+1, err)
			}
		}

		trace = append(trace, nbody.Report{
			Tick:      tick,
			Time:      vals[0],
			Kinetic:   vals[1],
			Potential: vals[2],
			Total:     vals[3],
		})
	}

	return trace, nil
}

// SnapshotPath is the location of a run's final state file.
func (s *Store) SnapshotPath(runID string) string {
	return filepath.Join(s.baseDir, runID, stateFile)
}
