package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravencare/ravencare/catalog"
	"github.com/ravencare/ravencare/match"
	"github.com/ravencare/ravencare/triage"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewWriter(dir)

	records := []triage.Record{
		{
			Patient: triage.PatientProfile{Name: "Ravi Kumar"},
			Match: &match.Result{
				Doctor:    catalog.Doctor{Name: "Dr. Asha Rao"},
				Specialty: "Cardiology",
				Score:     120.5,
				Quality:   match.QualityExcellent,
			},
		},
		{
			Patient: triage.PatientProfile{Name: "Elin Berg"},
			Failed:  true,
		},
	}

	path, err := w.Write("run-1", records)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "triage_report_"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var summary Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.TotalPatients)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.Emergency)
	assert.Equal(t, 1, summary.HadErrors)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "Ravi Kumar", summary.Records[0].Patient.Name)
}

func TestWriteRejectsEmptyRun(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.Write("run-1", nil)
	assert.Error(t, err)
}
