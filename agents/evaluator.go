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

// EvaluatorAgent is the third stage: the cross-check of the two earlier
// assessments and the final care plan.
type EvaluatorAgent struct {
	client *chat.Client
}

// NewEvaluatorAgent creates a final evaluation agent over a chat client.
func NewEvaluatorAgent(client *chat.Client) *EvaluatorAgent {
	return &EvaluatorAgent{client: client}
}

// Evaluate reviews the mapping and urgency assessments together and issues
// the final specialty confirmation and care plan.
func (e *EvaluatorAgent) Evaluate(ctx context.Context, patient triage.PatientProfile, mapping triage.SpecialtyMapping, urgency triage.UrgencyAssessment) (triage.FinalEvaluation, error) {
	patientJSON, err := json.MarshalIndent(patient, "", "  ")
	if err != nil {
		return triage.FinalEvaluation{}, errors.Wrap(err, "failed to encode patient data")
	}
	mappingJSON, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return triage.FinalEvaluation{}, errors.Wrap(err, "failed to encode specialty mapping")
	}
	urgencyJSON, err := json.MarshalIndent(urgency, "", "  ")
	if err != nil {
		return triage.FinalEvaluation{}, errors.Wrap(err, "failed to encode urgency assessment")
	}

	userPrompt := fmt.Sprintf(`Patient Information:
%s

Specialty Mapping:
%s

Urgency Assessment:
%s

Please provide your final evaluation and comprehensive recommendation.`,
		patientJSON, mappingJSON, urgencyJSON)

	resp, err := e.client.Complete(ctx, chat.Request{
		SystemPrompt: evaluatorSystemPrompt,
		UserPrompt:   userPrompt,
		JSONResponse: true,
	})
	if err != nil {
		return triage.FinalEvaluation{}, errors.Wrap(err, "final evaluation request failed")
	}

	var evaluation triage.FinalEvaluation
	if err := json.Unmarshal([]byte(resp.Content), &evaluation); err != nil {
		logger.Warnw("Evaluation reply was not valid JSON, using degraded evaluation",
			"patient", patient.Name,
			"error", err)
		return degradedEvaluation(mapping, urgency, resp.Content), nil
	}

	return evaluation, nil
}

// degradedEvaluation confirms the earlier stages' outputs when the model's
// reply cannot be decoded.
func degradedEvaluation(mapping triage.SpecialtyMapping, urgency triage.UrgencyAssessment, raw string) triage.FinalEvaluation {
	specialty := mapping.PrimarySpecialty
	if specialty == "" {
		specialty = "General Medicine"
	}
	priority := urgency.TriageCategory
	if priority == "" {
		priority = "Standard"
	}

	return triage.FinalEvaluation{
		FinalSpecialty:       specialty,
		ConfidenceLevel:      "Moderate",
		RecommendedAction:    "Consult with specialist",
		DoctorRequirements:   "Experienced specialist",
		ConsultationPriority: priority,
		ConsultationDuration: "30 minutes",
		PatientInstructions:  "Please arrive 15 minutes early for your appointment",
		FollowUpRequired:     true,
		EvaluationNotes:      raw,
	}
}
