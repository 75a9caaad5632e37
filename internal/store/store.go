// Package store persists finished runs for the CLI: one directory per run
// with metadata.json and a samples.csv of the charted quantities.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/runner"
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

type AlarmRecord struct {
	ID        uint64    `json:"id"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Preset         string             `json:"preset"`
	Timestamp      time.Time          `json:"timestamp"`
	Dt             float64            `json:"dt"`
	Ticks          int                `json:"ticks"`
	FinalPhase     string             `json:"final_phase"`
	FinalBrix      float64            `json:"final_brix"`
	ElapsedSeconds int                `json:"elapsed_seconds"`
	Metrics        map[string]float64 `json:"metrics"`
	Alarms         []AlarmRecord      `json:"alarms"`
}

// Save writes the run under a fresh id and returns it.
func (s *Store) Save(preset string, dt float64, res *runner.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	alarms := make([]AlarmRecord, 0, len(res.Alarms))
	for _, a := range res.Alarms {
		alarms = append(alarms, AlarmRecord{
			ID:        a.ID,
			Severity:  string(a.Severity),
			Message:   a.Message,
			Timestamp: a.Timestamp,
		})
	}

	meta := RunMetadata{
		ID:             runID,
		Preset:         preset,
		Timestamp:      time.Now(),
		Dt:             dt,
		Ticks:          res.TicksTaken,
		FinalPhase:     res.Final.Phase.String(),
		FinalBrix:      res.Final.Brix,
		ElapsedSeconds: res.Final.ElapsedSeconds,
		Metrics:        res.Metrics,
		Alarms:         alarms,
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

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "temperature", "setpoint", "brix", "torque"}); err != nil {
		return "", err
	}
	for _, smp := range res.Samples {
		row := []string{
			strconv.FormatFloat(smp.Time, 'f', 3, 64),
			strconv.FormatFloat(smp.Temperature, 'f', 3, 64),
			strconv.FormatFloat(smp.Setpoint, 'f', 3, 64),
			strconv.FormatFloat(smp.Brix, 'f', 3, 64),
			strconv.FormatFloat(smp.Torque, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads back the charted series of a stored run.
func (s *Store) LoadSamples(runID string) ([]kettle.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []kettle.Sample{}, nil
	}

	samples := make([]kettle.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			return nil, fmt.Errorf("store: malformed sample row with %d fields", len(record))
		}
		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		samples = append(samples, kettle.Sample{
			Time:        vals[0],
			Temperature: vals[1],
			Setpoint:    vals[2],
			Brix:        vals[3],
			Torque:      vals[4],
		})
	}
	return samples, nil
}
