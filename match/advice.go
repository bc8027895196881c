package match

import (
	"fmt"
	"strings"
)

// specialtyPreparation holds per-specialty appointment preparation tips.
var specialtyPreparation = map[string][]string{
	"Cardiology": {
		"Bring previous ECG/echo reports if available",
		"Note any chest pain episodes with timing",
	},
	"Gastroenterology": {
		"Keep a food diary for 3 days before visit",
		"Note bowel movement patterns",
	},
	"Neurology": {
		"Document seizure episodes if applicable",
		"Bring previous brain imaging (MRI/CT) reports",
	},
	"Orthopedics": {
		"Bring previous X-rays or MRI scans",
		"Note which movements cause pain",
	},
	"Dermatology": {
		"Document when skin changes started",
		"Avoid makeup on affected areas",
	},
	"Psychiatry": {
		"Keep a mood diary",
		"List previous treatments tried",
	},
}

// Explanation renders a human-readable account of why the doctor was chosen.
func Explanation(result *Result, patientName string) string {
	if result == nil {
		return ""
	}

	var reasons []string

	if result.Details.SlotMatch == "exact" {
		reasons = append(reasons, "appointment slot matches patient preference")
	}
	if result.Details.LanguageMatch {
		reasons = append(reasons, "speaks patient's preferred language")
	}
	if result.Details.SubSpecMatch == "strong" {
		reasons = append(reasons, "has specific expertise in patient's condition")
	}
	if result.Details.ExperienceYears >= 15 {
		reasons = append(reasons, fmt.Sprintf("highly experienced (%d years)", result.Details.ExperienceYears))
	}
	if result.Details.RatingScore >= 4.5 {
		reasons = append(reasons, fmt.Sprintf("excellent patient rating (%.1f/5.0)", result.Details.RatingScore))
	}
	if result.Details.HasAwards {
		reasons = append(reasons, "recognized with professional awards")
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("%s was matched to %s based on specialty alignment.",
			result.Doctor.Name, patientName)
	}
	return fmt.Sprintf("%s was matched to %s because: %s.",
		result.Doctor.Name, patientName, strings.Join(reasons, ", "))
}

// PreparationAdvice suggests what the patient should bring or note for the
// appointment. High urgency prepends an emergency escalation warning.
func PreparationAdvice(specialty string, urgencyScore int, conditions []string) []string {
	suggestions := []string{
		"Bring valid ID and insurance card",
		"List all current medications with dosages",
	}

	if prep, ok := specialtyPreparation[specialty]; ok {
		suggestions = append(suggestions, prep...)
	}

	if urgencyScore >= 80 {
		suggestions = append(
			[]string{"HIGH URGENCY: Go to emergency room if symptoms worsen"},
			suggestions...,
		)
	}

	return suggestions
}
