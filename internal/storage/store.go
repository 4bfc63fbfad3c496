// Package storage archives evaluation runs on disk. Each run is a directory
// holding metadata.json and data.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quimicai/surfacelab/internal/export"
	"github.com/quimicai/surfacelab/internal/surface"
)

var ErrNoRun = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	dataFile     = "data.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID         string                   `json:"id"`
	Scenario   string                   `json:"scenario,omitempty"`
	Step       string                   `json:"step,omitempty"`
	Domain     string                   `json:"domain"`
	Metric     string                   `json:"metric"`
	Variables  []string                 `json:"variables"`
	Ranges     map[string]surface.Range `json:"ranges,omitempty"`
	Points     int                      `json:"points"`
	Timestamp  time.Time                `json:"timestamp"`
	Min        float64                  `json:"min"`
	Max        float64                  `json:"max"`
	MoneySaved float64                  `json:"money_saved"`
	TimeSaved  string                   `json:"time_saved,omitempty"`
}

// Save writes meta and res under a new run directory and returns the run ID.
// The ID and timestamp of meta are assigned here.
func (s *Store) Save(meta RunMetadata, res *surface.Result, header []string) (string, error) {
	if res.Dims() == 0 {
		return "", export.ErrEmptyResult
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	meta.Timestamp = time.Now().UTC()
	meta.ID = runID(meta)
	meta.Min, meta.Max = res.Bounds()
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	if err := export.WriteJSON(metaFile, meta); err != nil {
		return "", err
	}

	dataOut, err := os.Create(filepath.Join(runDir, dataFile))
	if err != nil {
		return "", err
	}
	defer dataOut.Close()
	if err := export.WriteCSV(dataOut, res, header); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// runID is the step (or domain) slug, the UTC time and a short random
// suffix, so concurrent saves never collide.
func runID(meta RunMetadata) string {
	name := meta.Step
	if name == "" {
		name = meta.Domain
	}
	return fmt.Sprintf("%s_%s_%s", slug(name), meta.Timestamp.Format("20060102T150405"), uuid.NewString()[:8])
}

func slug(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case sb.Len() > 0 && !strings.HasSuffix(sb.String(), "-"):
			sb.WriteByte('-')
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "run"
	}
	return out
}

// List returns every readable run, newest first. Directories without valid
// metadata are skipped.
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadData reads the run's CSV back as its header and numeric rows. Empty
// fields load as NaN.
func (s *Store) LoadData(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, dataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, [][]float64{}, nil
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			if field == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s: %w", runID, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
