package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var csvHeader = []string{"step", "time", "body", "x", "y", "vx", "vy", "distance_to_anchor"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type BodyMeta struct {
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
	Anchor bool    `json:"anchor"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	System     string             `json:"system"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	G          float64            `json:"g"`
	Steps      int                `json:"steps"`
	Stride     int                `json:"stride"`
	Ordering   string             `json:"ordering"`
	Integrator string             `json:"integrator"`
	Solver     string             `json:"solver"`
	Bodies     []BodyMeta         `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	Error      string             `json:"error,omitempty"`
}

// Save writes metadata.json and samples.csv under a fresh run directory
// and returns the run ID.
func (s *Store) Save(meta RunMetadata, samples []Sample) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if err := s.Init(); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s_%d", meta.System, meta.Timestamp.Unix())
	runID := base
	for n := 2; ; n++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		runID = fmt.Sprintf("%s-%d", base, n)
	}
	meta.ID = runID
	runDir := filepath.Join(s.baseDir, runID)

	if err := writeRun(runDir, meta, samples); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, samples []Sample) error {
	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(runDir, samplesFile), func(w io.Writer) error {
		return WriteCSV(w, samples)
	})
}

// writeFile reports the error from Close when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Time),
			s.Body,
			formatFloat(s.X),
			formatFloat(s.Y),
			formatFloat(s.VX),
			formatFloat(s.VY),
			formatFloat(s.DistanceToAnchor),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: step: %w", i+1, err)
		}
		vals := make([]float64, 0, 6)
		for _, field := range []string{rec[1], rec[3], rec[4], rec[5], rec[6], rec[7]} {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			vals = append(vals, v)
		}
		samples = append(samples, Sample{
			Step:             step,
			Time:             vals[0],
			Body:             rec[2],
			X:                vals[1],
			Y:                vals[2],
			VX:               vals[3],
			VY:               vals[4],
			DistanceToAnchor: vals[5],
		})
	}
	return samples, nil
}
