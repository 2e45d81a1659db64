package schema

import "time"

// Manifest describes one set of exported artifacts.
type Manifest struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	Source       string    `json:"source" yaml:"source"`
	Format       string    `json:"format" yaml:"format"`
	Requirements int       `json:"requirements" yaml:"requirements"`
	UseCases     int       `json:"use_cases" yaml:"use_cases"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}
