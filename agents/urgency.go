package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ravencare/ravencare/ai/chat"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/logger"
	"github.com/ravencare/ravencare/triage"
)

// UrgencyAgent is the second stage: urgency scoring and risk assessment.
type UrgencyAgent struct {
	client *chat.Client
}

// NewUrgencyAgent creates an urgency assessment agent over a chat client.
func NewUrgencyAgent(client *chat.Client) *UrgencyAgent {
	return &UrgencyAgent{client: client}
}

// AssessUrgency scores how urgently the patient needs care, informed by the
// specialty mapping from the previous stage.
func (a *UrgencyAgent) AssessUrgency(ctx context.Context, patient triage.PatientProfile, mapping triage.SpecialtyMapping) (triage.UrgencyAssessment, error) {
	userPrompt := fmt.Sprintf(`Patient Data:
Name: %s
Age: %s
Gender: %s
Symptoms: %s
Pre-existing Conditions: %s

Specialty Analysis:
Primary Specialty: %s
Key Symptoms: %s
Potential Conditions: %s
Urgency Indicators: %s

Please provide urgency assessment and risk scoring.`,
		orUnknown(patient.Name),
		ageString(patient.Age),
		orUnknown(patient.Gender),
		orDefault(patient.Symptoms, "No symptoms provided"),
		joinOrNone(patient.PreExistingConditions),
		mapping.PrimarySpecialty,
		joinOrNone(mapping.KeySymptoms),
		joinOrNone(mapping.PotentialConditions),
		joinOrNone(mapping.UrgencyIndicators))

	resp, err := a.client.Complete(ctx, chat.Request{
		SystemPrompt: urgencySystemPrompt,
		UserPrompt:   userPrompt,
		JSONResponse: true,
	})
	if err != nil {
		return triage.UrgencyAssessment{}, errors.Wrap(err, "urgency assessment request failed")
	}

	var urgency triage.UrgencyAssessment
	if err := json.Unmarshal([]byte(resp.Content), &urgency); err != nil {
		logger.Warnw("Urgency reply was not valid JSON, using degraded assessment",
			"patient", patient.Name,
			"error", err)
		return degradedUrgency(patient, resp.Content), nil
	}

	return urgency, nil
}

// degradedUrgency assumes moderate risk when the model's reply cannot be
// decoded. Moderate keeps the patient in the standard queue rather than
// silently deprioritizing them.
func degradedUrgency(patient triage.PatientProfile, raw string) triage.UrgencyAssessment {
	return triage.UrgencyAssessment{
		UrgencyScore:     50,
		RiskLevel:        "Moderate",
		TriageCategory:   "Standard",
		TimeToTreatment:  "Within 24 hours",
		RiskFactors:      patient.PreExistingConditions,
		ImmediateActions: []string{"Consult with appropriate specialist"},
		Reasoning:        raw,
	}
}
