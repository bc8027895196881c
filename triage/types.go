// Package triage runs patients through the staged assessment pipeline:
// specialty mapping, urgency assessment, final evaluation, doctor matching.
package triage

import (
	"context"
	"time"

	"github.com/ravencare/ravencare/match"
)

// PatientProfile is the intake record for one patient.
type PatientProfile struct {
	Name                  string   `json:"name"`
	Age                   *int     `json:"age,omitempty"`
	Gender                string   `json:"gender,omitempty"`
	Symptoms              string   `json:"symptoms"`
	PreExistingConditions []string `json:"pre_existing_conditions,omitempty"`
	PreferredLanguage     string   `json:"preferred_language,omitempty"`
	PreferredSlot         string   `json:"preferred_slot,omitempty"`
	// MappedSpecialty is an optional pre-assessed specialty used as a
	// degraded fallback when the mapping stage cannot produce one.
	MappedSpecialty string `json:"mapped_specialty,omitempty"`
}

// SpecialtyMapping is the first stage's output: symptoms to specialty.
type SpecialtyMapping struct {
	PrimarySpecialty     string   `json:"primary_specialty"`
	SecondarySpecialties []string `json:"secondary_specialties,omitempty"`
	KeySymptoms          []string `json:"key_symptoms_identified,omitempty"`
	PotentialConditions  []string `json:"potential_conditions,omitempty"`
	UrgencyIndicators    []string `json:"urgency_indicators,omitempty"`
	Reasoning            string   `json:"reasoning,omitempty"`
	Err                  string   `json:"error,omitempty"`
}

// UrgencyAssessment is the second stage's output: urgency and risk.
type UrgencyAssessment struct {
	UrgencyScore     int      `json:"urgency_score"`
	RiskLevel        string   `json:"risk_level,omitempty"`        // Critical/High/Moderate/Low
	TriageCategory   string   `json:"triage_category,omitempty"`   // Emergency/Urgent/Standard/Routine
	TimeToTreatment  string   `json:"time_to_treatment,omitempty"` // e.g. "Within 24 hours"
	RedFlags         []string `json:"red_flags,omitempty"`
	RiskFactors      []string `json:"risk_factors,omitempty"`
	ImmediateActions []string `json:"immediate_actions,omitempty"`
	Reasoning        string   `json:"reasoning,omitempty"`
	Err              string   `json:"error,omitempty"`
}

// FinalEvaluation is the third stage's output: the cross-check and care plan.
type FinalEvaluation struct {
	FinalSpecialty        string   `json:"final_specialty"`
	ConfidenceLevel       string   `json:"confidence_level,omitempty"` // High/Moderate/Low
	RecommendedAction     string   `json:"recommended_action,omitempty"`
	DoctorRequirements    string   `json:"doctor_requirements,omitempty"`
	ConsultationPriority  string   `json:"consultation_priority,omitempty"`
	ConsultationDuration  string   `json:"estimated_consultation_duration,omitempty"`
	PatientInstructions   string   `json:"patient_instructions,omitempty"`
	FollowUpRequired      bool     `json:"follow_up_required,omitempty"`
	AdditionalTestsNeeded []string `json:"additional_tests_needed,omitempty"`
	EvaluationNotes       string   `json:"evaluation_notes,omitempty"`
	Warnings              []string `json:"warnings,omitempty"`
	Err                   string   `json:"error,omitempty"`
}

// State tracks how far a record got through the pipeline.
type State string

// Pipeline states, in order.
const (
	StateInit           State = "init"
	StateMappingDone    State = "mapping_done"
	StateUrgencyDone    State = "urgency_done"
	StateEvaluationDone State = "evaluation_done"
	StateMatchingDone   State = "matching_done"
	StateComplete       State = "complete"
)

// Record is the complete triage outcome for one patient.
type Record struct {
	Patient    PatientProfile    `json:"patient"`
	Timestamp  time.Time         `json:"timestamp"`
	Mapping    SpecialtyMapping  `json:"specialty_mapping"`
	Urgency    UrgencyAssessment `json:"urgency_assessment"`
	Evaluation FinalEvaluation   `json:"final_evaluation"`

	// Match is nil when no doctor could be found; the patient is routed to
	// emergency services instead.
	Match            *match.Result `json:"matched_doctor,omitempty"`
	MatchExplanation string        `json:"match_explanation,omitempty"`
	Preparation      []string      `json:"preparation_advice,omitempty"`

	// Derived signals.
	Severity              string   `json:"severity"`
	SubspecialtyHint      string   `json:"subspecialty_hint,omitempty"`
	AdditionalSpecialties []string `json:"additional_specialties,omitempty"`

	State  State `json:"state"`
	Failed bool  `json:"had_errors"`
}

// MatchQuality returns the record's match tier, with the emergency tier for
// the no-match path.
func (r *Record) MatchQuality() string {
	if r.Match == nil {
		return match.QualityEmergency
	}
	return r.Match.Quality
}

// SpecialtyMapper maps a patient's symptoms to a medical specialty.
type SpecialtyMapper interface {
	MapSpecialty(ctx context.Context, patient PatientProfile) (SpecialtyMapping, error)
}

// UrgencyAssessor scores how urgently the patient needs care.
type UrgencyAssessor interface {
	AssessUrgency(ctx context.Context, patient PatientProfile, mapping SpecialtyMapping) (UrgencyAssessment, error)
}

// Evaluator cross-checks the earlier stages and issues the final plan.
type Evaluator interface {
	Evaluate(ctx context.Context, patient PatientProfile, mapping SpecialtyMapping, urgency UrgencyAssessment) (FinalEvaluation, error)
}
