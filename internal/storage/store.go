package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/scan"
)

const (
	metadataFile     = "metadata.json"
	trajectoriesFile = "trajectories.csv"
	scanFile         = "scan.json"

	KindSimulation = "simulation"
	KindScan       = "scan"
)

var ErrNoTrajectories = errors.New("storage: run has no trajectories")

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
	Kind      string             `json:"kind"`
	Model     string             `json:"model"`
	Source    string             `json:"source,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Method    string             `json:"method"`
	TimeEnd   float64            `json:"time_end"`
	TimeStep  float64            `json:"time_step"`
	Points    int                `json:"points"`
	Species   []string           `json:"species"`
	Knob      string             `json:"knob,omitempty"`
	Values    []float64          `json:"values,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func (s *Store) newRun(meta *RunMetadata) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()
	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Save stores one simulation. ID and Timestamp in meta are assigned here.
func (s *Store) Save(meta RunMetadata, res *engine.Results) (string, error) {
	meta.Kind = KindSimulation
	meta.Points = res.Len()
	meta.Species = append([]string(nil), res.SpeciesNames...)

	dir, err := s.newRun(&meta)
	if err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, trajectoriesFile), res); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveScan stores a sweep as metadata plus the full point list.
func (s *Store) SaveScan(meta RunMetadata, knob string, points []scan.Point) (string, error) {
	meta.Kind = KindScan
	meta.Knob = knob
	meta.Values = make([]float64, len(points))
	for i, p := range points {
		meta.Values[i] = p.Value
	}
	if len(points) > 0 {
		meta.Points = points[0].Results.Len()
		meta.Species = append([]string(nil), points[0].Results.SpeciesNames...)
	}

	dir, err := s.newRun(&meta)
	if err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := ExportScanJSON(filepath.Join(dir, scanFile), points); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, res *engine.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := WriteCSV(w, res); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteCSV writes a "time" column followed by one column per species name.
func WriteCSV(w *csv.Writer, res *engine.Results) error {
	header := append([]string{"time"}, res.SpeciesNames...)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for n := 0; n < res.Len(); n++ {
		row[0] = strconv.FormatFloat(res.Time[n], 'g', -1, 64)
		for i, v := range res.Row(n) {
			row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadResults rebuilds the trajectories of a simulation run.
func (s *Store) LoadResults(runID string) (*engine.Results, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNoTrajectories)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNoTrajectories)
	}

	names := append([]string(nil), records[0][1:]...)
	res := &engine.Results{
		Time:         make([]float64, 0, len(records)-1),
		Values:       make([]float64, 0, (len(records)-1)*len(names)),
		SpeciesNames: names,
		NumSpecies:   len(names),
	}
	for line, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s line %d: %w", runID, line+2, err)
			}
			if j == 0 {
				res.Time = append(res.Time, v)
			} else {
				res.Values = append(res.Values, v)
			}
		}
	}
	return res, nil
}

// LoadScan reads back the points of a scan run.
func (s *Store) LoadScan(runID string) ([]scan.Point, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, scanFile))
	if err != nil {
		return nil, err
	}
	var points []scan.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return points, nil
}

// Path is the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
