// Package report writes a demonstration run to a JSON file on request.
// Nothing is persisted implicitly; the OS trust store remains the only
// state the tool relies on.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/druarnfield/rootprobe/internal/compare"
)

// Report is the serialized form of one demonstration run.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Version     string         `json:"version"`
	Result      compare.Result `json:"result"`
}

// New wraps a demonstration result for saving.
func New(result compare.Result, version string) *Report {
	return &Report{
		GeneratedAt: time.Now(),
		Version:     version,
		Result:      result,
	}
}

// Save writes the report as indented JSON, creating parent directories
// as needed.
func Save(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a previously saved report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
