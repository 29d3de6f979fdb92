package match

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveLog writes a point log to disk as JSON.
func SaveLog(path string, log *Log) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for point log: %w", err)
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling point log: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing point log: %w", err)
	}

	return nil
}

// LoadLog reads a point log from disk. Derived fields on the stored events
// are dropped so that the log is always re-derived from its inputs.
func LoadLog(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading point log: %w", err)
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("unmarshaling point log: %w", err)
	}

	for i := range log.Points {
		log.Points[i] = log.Points[i].Input()
	}
	return &log, nil
}
