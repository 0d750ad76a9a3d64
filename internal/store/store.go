// Package store persists sweep results: one directory per sweep with JSON
// metadata and a CSV result table, plus an optional sqlite database layered
// on the same export contract.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/idtlab/autoignition/internal/sweep"
)

// Store writes sweep runs under a base directory.
type Store struct {
	baseDir string
}

// New returns a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the base directory.
func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// SweepMetadata summarizes one stored sweep.
type SweepMetadata struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Criterion  string    `json:"criterion"`
	Timestamp  time.Time `json:"timestamp"`
	Conditions int       `json:"conditions"`
	Failures   int       `json:"failures"`
}

var csvHeader = []string{"temperature", "pressure", "inv_temperature", "delay", "sigma", "ok", "failure", "flag"}

// Save writes metadata.json and results.csv for the frozen set and returns
// the run ID. Missing delays and sigmas become empty CSV fields, never zeros.
func (s *Store) Save(label, criterion string, rs *sweep.ResultSet) (string, error) {
	runID := fmt.Sprintf("%s_%d", label, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	tab := rs.Export()
	failures := 0
	for _, ok := range tab.OK {
		if !ok {
			failures++
		}
	}

	meta := SweepMetadata{
		ID:         runID,
		Label:      label,
		Criterion:  criterion,
		Timestamp:  time.Now(),
		Conditions: len(tab.OK),
		Failures:   failures,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "results.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for i := range tab.OK {
		row := []string{
			formatFloat(tab.Temperature[i]),
			formatFloat(tab.Pressure[i]),
			formatFloat(tab.InverseTemperature[i]),
			formatMissing(tab.Delay[i]),
			formatMissing(tab.Sigma[i]),
			strconv.FormatBool(tab.OK[i]),
			tab.Failure[i],
			tab.Flag[i],
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatMissing(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return formatFloat(v)
}

// List returns metadata for every stored sweep.
func (s *Store) List() ([]SweepMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SweepMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]SweepMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta SweepMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Load reads the metadata for a run ID.
func (s *Store) Load(runID string) (*SweepMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta SweepMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads a run's result table back; empty delay/sigma fields become
// NaN behind OK=false, matching the export contract.
func (s *Store) LoadTable(runID string) (sweep.Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "results.csv"))
	if err != nil {
		return sweep.Table{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return sweep.Table{}, err
	}
	if len(records) < 1 {
		return sweep.Table{}, fmt.Errorf("store: results.csv for %s is empty", runID)
	}

	var tab sweep.Table
	for _, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			return sweep.Table{}, fmt.Errorf("store: malformed row in %s: %v", runID, rec)
		}
		T, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return sweep.Table{}, err
		}
		P, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return sweep.Table{}, err
		}
		invT, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return sweep.Table{}, err
		}
		ok, err := strconv.ParseBool(rec[5])
		if err != nil {
			return sweep.Table{}, err
		}
		tab.Temperature = append(tab.Temperature, T)
		tab.Pressure = append(tab.Pressure, P)
		tab.InverseTemperature = append(tab.InverseTemperature, invT)
		tab.Delay = append(tab.Delay, parseMissing(rec[3]))
		tab.Sigma = append(tab.Sigma, parseMissing(rec[4]))
		tab.OK = append(tab.OK, ok)
		tab.Failure = append(tab.Failure, rec[6])
		tab.Flag = append(tab.Flag, rec[7])
	}
	return tab, nil
}

func parseMissing(field string) float64 {
	if field == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
