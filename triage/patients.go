package triage

import (
	"encoding/json"
	"os"

	"github.com/ravencare/ravencare/errors"
)

// LoadPatients reads a patient roster from a JSON file: an array of intake
// records.
func LoadPatients(path string) ([]PatientProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read patient file %s", path)
	}

	var patients []PatientProfile
	if err := json.Unmarshal(raw, &patients); err != nil {
		return nil, errors.Wrapf(err, "failed to parse patient file %s", path)
	}

	return patients, nil
}
