package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ravencare/ravencare/triage"
)

// Offline stages produce deterministic rule-based assessments without any
// network calls. They back the ai.offline configuration and make the full
// pipeline exercisable in development and tests.

// specialtyRule maps symptom keywords to a specialty. Rules are evaluated in
// order; the first hit wins.
type specialtyRule struct {
	keywords  []string
	specialty string
}

var specialtyRules = []specialtyRule{
	{[]string{"heart", "chest", "cardiac"}, "Cardiology"},
	{[]string{"skin", "rash", "acne"}, "Dermatology"},
	{[]string{"ear", "nose", "throat"}, "ENT"},
	{[]string{"stomach", "digestive", "abdomen"}, "Gastroenterology"},
	{[]string{"liver", "hepatic"}, "Hepatology"},
	{[]string{"brain", "headache", "neurological"}, "Neurology"},
	{[]string{"eye", "vision", "sight"}, "Ophthalmology"},
	{[]string{"bone", "joint", "fracture"}, "Orthopedics"},
	{[]string{"mental", "anxiety", "depression"}, "Psychiatry"},
	{[]string{"lung", "breathing", "respiratory"}, "Pulmonology"},
}

// severityKeywords raise the offline urgency score when present.
var severityKeywords = []string{"severe", "acute", "emergency", "critical", "intensive"}

// OfflineMapper maps symptoms to a specialty by keyword scan.
type OfflineMapper struct{}

// MapSpecialty implements triage.SpecialtyMapper without network calls.
func (OfflineMapper) MapSpecialty(_ context.Context, patient triage.PatientProfile) (triage.SpecialtyMapping, error) {
	symptoms := strings.ToLower(patient.Symptoms)

	specialty := ""
	var matched []string
	for _, rule := range specialtyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(symptoms, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			specialty = rule.specialty
			break
		}
	}

	// Minors route to Pediatrics unless a symptom rule already fired.
	if specialty == "" && patient.Age != nil && *patient.Age < 18 {
		specialty = "Pediatrics"
	}
	if specialty == "" {
		specialty = patient.MappedSpecialty
	}
	if specialty == "" {
		specialty = "General Medicine"
	}

	reasoning := fmt.Sprintf("Rule-based mapping to %s", specialty)
	if len(matched) > 0 {
		reasoning = fmt.Sprintf("Rule-based mapping to %s (keywords: %s)",
			specialty, strings.Join(matched, ", "))
	}

	return triage.SpecialtyMapping{
		PrimarySpecialty: specialty,
		KeySymptoms:      matched,
		Reasoning:        reasoning,
	}, nil
}

// OfflineAssessor scores urgency from symptom keywords, age, and
// pre-existing conditions.
type OfflineAssessor struct{}

// AssessUrgency implements triage.UrgencyAssessor without network calls.
func (OfflineAssessor) AssessUrgency(_ context.Context, patient triage.PatientProfile, _ triage.SpecialtyMapping) (triage.UrgencyAssessment, error) {
	symptoms := strings.ToLower(patient.Symptoms)

	score := 40
	var flags []string
	for _, kw := range severityKeywords {
		if strings.Contains(symptoms, kw) {
			score += 25
			flags = append(flags, kw)
			break
		}
	}
	if patient.Age != nil && (*patient.Age < 5 || *patient.Age > 70) {
		score += 10
	}
	conditionBoost := 5 * len(patient.PreExistingConditions)
	if conditionBoost > 15 {
		conditionBoost = 15
	}
	score += conditionBoost
	if score > 100 {
		score = 100
	}

	var risk, category, treatment string
	switch {
	case score >= 76:
		risk, category, treatment = "Critical", "Emergency", "Immediate"
	case score >= 51:
		risk, category, treatment = "High", "Very Urgent", "Within 2 hours"
	case score >= 26:
		risk, category, treatment = "Moderate", "Urgent", "Within 24 hours"
	default:
		risk, category, treatment = "Low", "Routine", "Within 1 week"
	}

	return triage.UrgencyAssessment{
		UrgencyScore:    score,
		RiskLevel:       risk,
		TriageCategory:  category,
		TimeToTreatment: treatment,
		RedFlags:        flags,
		RiskFactors:     patient.PreExistingConditions,
		Reasoning: fmt.Sprintf("Rule-based score %d from symptom severity, age %s, and %d pre-existing conditions",
			score, ageString(patient.Age), len(patient.PreExistingConditions)),
	}, nil
}

// OfflineEvaluator confirms the mapping and sets priority from the urgency
// band.
type OfflineEvaluator struct{}

// Evaluate implements triage.Evaluator without network calls.
func (OfflineEvaluator) Evaluate(_ context.Context, patient triage.PatientProfile, mapping triage.SpecialtyMapping, urgency triage.UrgencyAssessment) (triage.FinalEvaluation, error) {
	specialty := mapping.PrimarySpecialty
	if specialty == "" {
		specialty = "General Medicine"
	}

	var confidence, priority string
	switch {
	case urgency.UrgencyScore >= 76:
		confidence, priority = "High", "Emergency"
	case urgency.UrgencyScore >= 51:
		confidence, priority = "High", "Immediate"
	case urgency.UrgencyScore >= 26:
		confidence, priority = "Moderate", "Expedited"
	default:
		confidence, priority = "High", "Standard"
	}

	return triage.FinalEvaluation{
		FinalSpecialty:       specialty,
		ConfidenceLevel:      confidence,
		RecommendedAction:    fmt.Sprintf("Schedule %s consultation in %s", strings.ToLower(priority), specialty),
		DoctorRequirements:   "Experienced specialist",
		ConsultationPriority: priority,
		ConsultationDuration: "30 minutes",
		PatientInstructions:  "Please arrive 15 minutes early for your appointment",
		FollowUpRequired:     urgency.UrgencyScore >= 51,
		EvaluationNotes: fmt.Sprintf("Patient %s requires %s attention in %s",
			patient.Name, strings.ToLower(priority), specialty),
	}, nil
}
