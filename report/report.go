// Package report writes JSON run summaries to disk.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ravencare/ravencare/config"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/logger"
	"github.com/ravencare/ravencare/triage"
)

// Summary is the on-disk report document.
type Summary struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	RunID         string          `json:"run_id,omitempty"`
	TotalPatients int             `json:"total_patients"`
	Matched       int             `json:"matched"`
	Emergency     int             `json:"emergency_referrals"`
	HadErrors     int             `json:"patients_with_errors"`
	Records       []triage.Record `json:"records"`
}

// Writer writes run reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a report writer. The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write saves a timestamped summary report and returns its path. Writing an
// empty run is an error; there is nothing to report.
func (w *Writer) Write(runID string, records []triage.Record) (string, error) {
	if len(records) == 0 {
		return "", errors.New("no triage records to report")
	}

	if err := os.MkdirAll(w.dir, config.DefaultDirPermissions); err != nil {
		return "", errors.Wrapf(err, "failed to create reports directory %q", w.dir)
	}

	summary := Summary{
		GeneratedAt:   time.Now().UTC(),
		RunID:         runID,
		TotalPatients: len(records),
		Records:       records,
	}
	for _, rec := range records {
		if rec.Match != nil {
			summary.Matched++
		} else {
			summary.Emergency++
		}
		if rec.Failed {
			summary.HadErrors++
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode report")
	}

	name := "triage_report_" + summary.GeneratedAt.Format("20060102_150405") + ".json"
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %q", path)
	}

	logger.Infow("Report saved", "path", path, "patients", summary.TotalPatients)
	return path, nil
}
