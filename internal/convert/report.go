// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pla2blif/pkg/types"
)

// Report is the on-disk YAML form of a batch run.
type Report struct {
	RunID       string             `yaml:"run_id"`
	StartedAt   time.Time          `yaml:"started_at"`
	FinishedAt  time.Time          `yaml:"finished_at"`
	Summary     ReportSummary      `yaml:"summary"`
	Conversions []types.Conversion `yaml:"conversions"`
}

// ReportSummary holds the per-status counts of a run.
type ReportSummary struct {
	Converted int `yaml:"converted"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
	Canceled  int `yaml:"canceled"`
	Total     int `yaml:"total"`
}

// Report converts the result into its serializable form.
func (r BatchResult) Report() Report {
	return Report{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Summary: ReportSummary{
			Converted: r.Converted,
			Skipped:   r.Skipped,
			Failed:    r.Failed,
			Canceled:  r.Canceled,
			Total:     r.Total(),
		},
		Conversions: r.Conversions,
	}
}

// WriteReport saves the run as YAML at path.
func (r BatchResult) WriteReport(path string) error {
	rep := r.Report()
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &rep, nil
}
