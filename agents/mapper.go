// Package agents implements the triage pipeline stages. Each stage exists in
// two forms: a chat-model agent that asks an upstream provider for a JSON
// assessment, and a deterministic rule-based variant for offline operation.
//
// Model agents never fail on malformed JSON. A reply that cannot be decoded
// is downgraded to a conservative assessment carrying the raw reply in its
// reasoning field, so a flaky model degrades the output instead of killing
// the run. Transport errors still surface as errors.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ravencare/ravencare/ai/chat"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/logger"
	"github.com/ravencare/ravencare/triage"
)

// Mapper is the first stage: symptoms to medical specialty.
type Mapper struct {
	client *chat.Client
}

// NewMapper creates a specialty mapping agent over a chat client.
func NewMapper(client *chat.Client) *Mapper {
	return &Mapper{client: client}
}

// MapSpecialty asks the model to map the patient's symptoms to a specialty.
func (m *Mapper) MapSpecialty(ctx context.Context, patient triage.PatientProfile) (triage.SpecialtyMapping, error) {
	userPrompt := fmt.Sprintf(`Patient Information:
Name: %s
Age: %s
Gender: %s
Symptoms: %s
Pre-existing Conditions: %s
Preferred Language: %s

Please analyze these symptoms and provide specialty mapping.`,
		orUnknown(patient.Name),
		ageString(patient.Age),
		orUnknown(patient.Gender),
		orDefault(patient.Symptoms, "No symptoms provided"),
		joinOrNone(patient.PreExistingConditions),
		orDefault(patient.PreferredLanguage, "English"))

	resp, err := m.client.Complete(ctx, chat.Request{
		SystemPrompt: mapperSystemPrompt,
		UserPrompt:   userPrompt,
		JSONResponse: true,
	})
	if err != nil {
		return triage.SpecialtyMapping{}, errors.Wrap(err, "specialty mapping request failed")
	}

	var mapping triage.SpecialtyMapping
	if err := json.Unmarshal([]byte(resp.Content), &mapping); err != nil {
		logger.Warnw("Specialty mapping reply was not valid JSON, using degraded mapping",
			"patient", patient.Name,
			"error", err)
		return degradedMapping(patient, resp.Content), nil
	}

	return mapping, nil
}

// degradedMapping is the conservative result used when the model's reply
// cannot be decoded.
func degradedMapping(patient triage.PatientProfile, raw string) triage.SpecialtyMapping {
	specialty := patient.MappedSpecialty
	if specialty == "" {
		specialty = "General Medicine"
	}

	preview := patient.Symptoms
	if len(preview) > 50 {
		preview = preview[:50]
	}

	return triage.SpecialtyMapping{
		PrimarySpecialty:    specialty,
		KeySymptoms:         []string{preview},
		PotentialConditions: []string{"Requires further evaluation"},
		Reasoning:           raw,
	}
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func ageString(age *int) string {
	if age == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d", *age)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
