// Package hints derives matching signals from free-text symptom narratives:
// subspecialty hints, condition severity, and multi-specialty needs.
//
// The keyword table ships embedded in the binary. All functions are pure.
package hints

import (
	_ "embed"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// Severity levels, most to least urgent.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityModerate = "moderate"
	SeverityLow      = "low"
)

type subspecialtyEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type specialtyEntry struct {
	Specialty      string              `yaml:"specialty"`
	Subspecialties []subspecialtyEntry `yaml:"subspecialties"`
}

type keywordTable struct {
	Specialties       []specialtyEntry `yaml:"specialties"`
	EmergencyKeywords []string         `yaml:"emergency_keywords"`
}

var table keywordTable

func init() {
	if err := yaml.Unmarshal(keywordsYAML, &table); err != nil {
		panic("hints: embedded keyword table is invalid: " + err.Error())
	}
}

// SubspecialtyHint extracts a subspecialty hint for the given specialty from
// the symptom narrative and pre-existing conditions.
//
// Hits are counted per subspecialty as case-insensitive substring matches;
// the subspecialty with the strictly greatest count wins, ties going to the
// one defined first. Returns "" when the specialty has no table entry or no
// keyword hits at all.
func SubspecialtyHint(specialty, narrative string, conditions []string) string {
	entry, ok := lookupSpecialty(specialty)
	if !ok {
		return ""
	}

	text := strings.ToLower(narrative + " " + strings.Join(conditions, " "))

	best := ""
	bestCount := 0
	for _, sub := range entry.Subspecialties {
		count := 0
		for _, keyword := range sub.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				count++
			}
		}
		if count > bestCount {
			best = sub.Name
			bestCount = count
		}
	}

	return best
}

// Severity classifies the condition from the narrative and urgency score.
// An emergency keyword in the narrative forces critical regardless of score.
func Severity(narrative string, urgencyScore int) string {
	narrativeLower := strings.ToLower(narrative)
	for _, keyword := range table.EmergencyKeywords {
		if strings.Contains(narrativeLower, keyword) {
			return SeverityCritical
		}
	}

	switch {
	case urgencyScore >= 90:
		return SeverityCritical
	case urgencyScore >= 70:
		return SeverityHigh
	case urgencyScore >= 40:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// MultiSpecialtyNeeds lists additional specialties worth consulting: up to
// the first two secondary specialties, plus Internal Medicine when any
// evaluation warning signals multi-system involvement. The result is
// deduplicated preserving first appearance.
func MultiSpecialtyNeeds(secondary, warnings []string) []string {
	var additional []string

	if len(secondary) > 2 {
		secondary = secondary[:2]
	}
	additional = append(additional, secondary...)

	multiSystemKeywords := []string{"multiple", "systemic", "comprehensive", "coordinated"}
	for _, warning := range warnings {
		warningLower := strings.ToLower(warning)
		hit := false
		for _, kw := range multiSystemKeywords {
			if strings.Contains(warningLower, kw) {
				hit = true
				break
			}
		}
		if hit {
			additional = append(additional, "Internal Medicine")
			break
		}
	}

	return dedupe(additional)
}

func lookupSpecialty(specialty string) (specialtyEntry, bool) {
	normalized := cases.Title(language.English).String(specialty)
	for _, entry := range table.Specialties {
		if entry.Specialty == normalized {
			return entry, true
		}
	}
	return specialtyEntry{}, false
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
