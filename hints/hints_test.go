package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubspecialtyHintStent(t *testing.T) {
	hint := SubspecialtyHint("Cardiology", "chest tightness after stent placement last year", nil)
	assert.Equal(t, "Interventional", hint)
}

func TestSubspecialtyHintCountsConditions(t *testing.T) {
	// One interventional hit in the narrative, two electrophysiology hits
	// once conditions are folded in.
	hint := SubspecialtyHint("cardiology",
		"had an angioplasty, now palpitations",
		[]string{"atrial fibrillation"})
	assert.Equal(t, "Electrophysiology", hint)
}

func TestSubspecialtyHintTieBreaksFirstDefined(t *testing.T) {
	// "coronary" (Interventional) and "arrhythmia" (Electrophysiology) are
	// one hit each; the first-defined subspecialty wins.
	hint := SubspecialtyHint("Cardiology", "coronary disease with arrhythmia", nil)
	assert.Equal(t, "Interventional", hint)
}

func TestSubspecialtyHintNoSignal(t *testing.T) {
	assert.Empty(t, SubspecialtyHint("Cardiology", "itchy elbow", nil))
	assert.Empty(t, SubspecialtyHint("Rheumatology", "joint pain", nil))
}

func TestSubspecialtyHintNormalizesSpecialty(t *testing.T) {
	assert.Equal(t, "Sinus", SubspecialtyHint("ENT", "recurring sinusitis", nil))
	assert.Equal(t, "Spine", SubspecialtyHint("orthopedics", "sciatica down the left leg", nil))
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		score     int
		want      string
	}{
		{"emergency keyword overrides low score", "crushing chest pain", 10, SeverityCritical},
		{"score 90 critical", "mild ache", 90, SeverityCritical},
		{"score 70 high", "mild ache", 70, SeverityHigh},
		{"score 69 moderate", "mild ache", 69, SeverityModerate},
		{"score 40 moderate", "mild ache", 40, SeverityModerate},
		{"score 39 low", "mild ache", 39, SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Severity(tt.narrative, tt.score))
		})
	}
}

func TestMultiSpecialtyNeeds(t *testing.T) {
	got := MultiSpecialtyNeeds(
		[]string{"Pulmonology", "Neurology", "Dermatology"},
		[]string{"requires coordinated care across systems"},
	)
	assert.Equal(t, []string{"Pulmonology", "Neurology", "Internal Medicine"}, got)
}

func TestMultiSpecialtyNeedsDedupes(t *testing.T) {
	got := MultiSpecialtyNeeds(
		[]string{"Internal Medicine"},
		[]string{"multiple organ involvement suspected"},
	)
	assert.Equal(t, []string{"Internal Medicine"}, got)
}

func TestMultiSpecialtyNeedsEmpty(t *testing.T) {
	assert.Empty(t, MultiSpecialtyNeeds(nil, []string{"follow up in two weeks"}))
}
