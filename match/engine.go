// Package match scores doctors against a patient's needs and picks the best
// candidate within a specialty.
package match

import (
	"math"
	"strings"

	"github.com/ravencare/ravencare/catalog"
)

// Match quality tiers.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityLow       = "low"
	// QualityEmergency is reserved for the no-match path: the caller routes
	// the patient to emergency services instead of a named doctor.
	QualityEmergency = "emergency"
)

// Request carries everything the scorer considers for one patient.
type Request struct {
	Specialty        string
	PreferredSlot    string
	Language         string
	UrgencyScore     int
	Age              *int // nil when unknown
	SubspecialtyHint string
	Conditions       []string
}

// Details records how each scoring factor resolved, mirroring the breakdown.
type Details struct {
	SlotMatch         string  `json:"slot_match"` // exact, alternative, none
	LanguageMatch     bool    `json:"language_match"`
	RatingScore       float64 `json:"rating_score"`
	ExperienceYears   int     `json:"experience_years"`
	SubSpecMatch      string  `json:"sub_spec_match,omitempty"` // strong, partial, condition_based
	HasAwards         bool    `json:"has_awards,omitempty"`
	AgeAppropriate    string  `json:"age_appropriate,omitempty"` // pediatric, geriatric_experienced
	UrgencyExperience string  `json:"urgency_experience_match,omitempty"`
}

// Factor is one line of the score breakdown.
type Factor struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Detail string  `json:"detail,omitempty"`
}

// Result is the winning candidate with its score and audit trail.
type Result struct {
	Doctor    catalog.Doctor `json:"doctor"`
	Specialty string         `json:"specialty"` // resolved catalog key
	Score     float64        `json:"match_score"`
	Quality   string         `json:"match_quality"`
	Details   Details        `json:"match_details"`
	Breakdown []Factor       `json:"score_breakdown"`
}

// Engine scores candidates out of a read-only catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates a matching engine over the catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// FindBestMatch returns the best-scoring doctor for the request, or nil when
// the specialty cannot be resolved or has no doctors. A nil result means
// emergency routing, not an error.
//
// Every candidate in the resolved department is scored; a strictly greater
// score replaces the leader, so ties keep the earliest candidate in catalog
// order. The final score is rounded to two decimals.
func (e *Engine) FindBestMatch(req Request) *Result {
	dept, key, ok := e.catalog.Resolve(req.Specialty)
	if !ok || len(dept.Doctors) == 0 {
		return nil
	}

	var best *Result
	bestScore := -1.0

	for _, doctor := range dept.Doctors {
		score, details, breakdown := e.score(doctor, req)
		if score > bestScore {
			bestScore = score
			best = &Result{
				Doctor:    doctor,
				Specialty: key,
				Score:     math.Round(score*100) / 100,
				Quality:   quality(score),
				Details:   details,
				Breakdown: breakdown,
			}
		}
	}

	return best
}

// score applies the weighted criteria to one candidate.
func (e *Engine) score(doctor catalog.Doctor, req Request) (float64, Details, []Factor) {
	var (
		total     float64
		details   Details
		breakdown []Factor
	)

	add := func(name string, points float64, detail string) {
		total += points
		breakdown = append(breakdown, Factor{Name: name, Points: points, Detail: detail})
	}

	// 1. Slot availability (40 points max). High urgency boosts whatever the
	// slot factor earned, so immediate availability dominates.
	var slotScore float64
	switch {
	case contains(doctor.Slots, req.PreferredSlot):
		slotScore = 40
		details.SlotMatch = "exact"
	case len(doctor.Slots) > 0:
		slotScore = 20
		details.SlotMatch = "alternative"
	default:
		details.SlotMatch = "none"
	}
	if req.UrgencyScore >= 70 {
		slotScore *= 1.5
	}
	add("slot", slotScore, details.SlotMatch)

	// 2. Language match (25 points)
	if contains(doctor.LanguagesSpoken, req.Language) {
		details.LanguageMatch = true
		add("language", 25, "match")
	} else {
		add("language", 0, "no match")
	}

	// 3. Doctor rating (20 points max)
	details.RatingScore = doctor.PatientRating
	add("rating", doctor.PatientRating*4, "")

	// 4. Experience, one point per year capped at 15
	details.ExperienceYears = doctor.ExperienceYears
	add("experience", float64(min(doctor.ExperienceYears, 15)), "")

	// 5. Sub-specialization alignment (30 points)
	subSpec := strings.ToLower(doctor.SubSpecialization)
	if req.SubspecialtyHint != "" {
		hintLower := strings.ToLower(req.SubspecialtyHint)
		if strings.Contains(subSpec, hintLower) || anyWordIn(hintLower, subSpec) {
			details.SubSpecMatch = "strong"
			add("subspecialty", 30, "strong")
		} else if subSpec != "" {
			details.SubSpecMatch = "partial"
			add("subspecialty", 10, "partial")
		}
	} else if len(req.Conditions) > 0 {
		conditionText := strings.ToLower(strings.Join(req.Conditions, " "))
		if anyWordIn(conditionText, subSpec) {
			details.SubSpecMatch = "condition_based"
			add("subspecialty", 20, "condition_based")
		}
	}

	// 6. Awards and recognition (10 points max)
	if len(doctor.Awards) > 0 {
		details.HasAwards = true
		add("awards", float64(min(len(doctor.Awards)*5, 10)), "")
	}

	// 7. Age-appropriate care
	if req.Age != nil {
		switch {
		case *req.Age < 18 && catalog.Normalize(req.Specialty) == "Pediatrics":
			details.AgeAppropriate = "pediatric"
			add("age", 10, "pediatric")
		case *req.Age >= 65 && doctor.ExperienceYears >= 10:
			details.AgeAppropriate = "geriatric_experienced"
			add("age", 5, "geriatric_experienced")
		}
	}

	// 8. Urgency-experience alignment: critical cases go to veterans, routine
	// cases are fine with junior doctors.
	if req.UrgencyScore >= 80 && doctor.ExperienceYears >= 15 {
		details.UrgencyExperience = "true"
		add("urgency_experience", 10, "experienced")
	} else if req.UrgencyScore < 50 && doctor.ExperienceYears < 10 {
		details.UrgencyExperience = "routine"
		add("urgency_experience", 5, "routine")
	}

	return total, details, breakdown
}

// quality maps a raw score to its tier.
func quality(score float64) string {
	switch {
	case score >= 100:
		return QualityExcellent
	case score >= 70:
		return QualityGood
	case score >= 50:
		return QualityFair
	default:
		return QualityLow
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// anyWordIn reports whether any whitespace-separated word of text appears as
// a substring of s.
func anyWordIn(text, s string) bool {
	if s == "" {
		return false
	}
	for _, word := range strings.Fields(text) {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
