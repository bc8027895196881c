package triage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravencare/ravencare/catalog"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/events"
	"github.com/ravencare/ravencare/match"
)

type mapperFunc func(context.Context, PatientProfile) (SpecialtyMapping, error)

func (f mapperFunc) MapSpecialty(ctx context.Context, p PatientProfile) (SpecialtyMapping, error) {
	return f(ctx, p)
}

type assessorFunc func(context.Context, PatientProfile, SpecialtyMapping) (UrgencyAssessment, error)

func (f assessorFunc) AssessUrgency(ctx context.Context, p PatientProfile, m SpecialtyMapping) (UrgencyAssessment, error) {
	return f(ctx, p, m)
}

type evaluatorFunc func(context.Context, PatientProfile, SpecialtyMapping, UrgencyAssessment) (FinalEvaluation, error)

func (f evaluatorFunc) Evaluate(ctx context.Context, p PatientProfile, m SpecialtyMapping, u UrgencyAssessment) (FinalEvaluation, error) {
	return f(ctx, p, m, u)
}

func testEngine() *match.Engine {
	c := catalog.New()
	c.Add("cardiology", &catalog.Department{
		Specialty: "Cardiology",
		Doctors: []catalog.Doctor{
			{
				Name:              "Dr. Asha Rao",
				SubSpecialization: "Interventional Cardiology",
				Slots:             []string{"09:00"},
				LanguagesSpoken:   []string{"English"},
				PatientRating:     4.8,
				ExperienceYears:   18,
			},
		},
	})
	return match.NewEngine(c)
}

func okMapper(specialty string) mapperFunc {
	return func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		return SpecialtyMapping{
			PrimarySpecialty:    specialty,
			PotentialConditions: []string{"Coronary artery disease"},
			Reasoning:           "cardiac presentation",
		}, nil
	}
}

func okAssessor(score int) assessorFunc {
	return func(context.Context, PatientProfile, SpecialtyMapping) (UrgencyAssessment, error) {
		return UrgencyAssessment{UrgencyScore: score, RiskLevel: "High", TriageCategory: "Urgent"}, nil
	}
}

func okEvaluator(specialty string) evaluatorFunc {
	return func(_ context.Context, _ PatientProfile, m SpecialtyMapping, u UrgencyAssessment) (FinalEvaluation, error) {
		return FinalEvaluation{FinalSpecialty: specialty, ConfidenceLevel: "High"}, nil
	}
}

func newTestPipeline(m SpecialtyMapper, a UrgencyAssessor, e Evaluator) (*Pipeline, *events.Log) {
	log := events.NewLog()
	return NewPipeline(m, a, e, testEngine(), log, 50), log
}

func patientsFixture(names ...string) []PatientProfile {
	out := make([]PatientProfile, 0, len(names))
	for _, name := range names {
		out = append(out, PatientProfile{
			Name:              name,
			Symptoms:          "chest pain radiating to left arm",
			PreferredSlot:     "09:00",
			PreferredLanguage: "English",
		})
	}
	return out
}

func TestRunProducesRecordPerPatientInOrder(t *testing.T) {
	p, _ := newTestPipeline(okMapper("Cardiology"), okAssessor(60), okEvaluator("Cardiology"))

	patients := patientsFixture("Ravi", "Elin", "Mina")
	records := p.Run(context.Background(), patients)

	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, patients[i].Name, rec.Patient.Name)
		assert.Equal(t, StateComplete, rec.State)
		assert.False(t, rec.Failed)
		require.NotNil(t, rec.Match)
		assert.Equal(t, "Dr. Asha Rao", rec.Match.Doctor.Name)
	}
}

func TestUrgencyStageFailureIsContained(t *testing.T) {
	failing := assessorFunc(func(context.Context, PatientProfile, SpecialtyMapping) (UrgencyAssessment, error) {
		return UrgencyAssessment{}, errors.New("model backend unreachable")
	})
	p, log := newTestPipeline(okMapper("Cardiology"), failing, okEvaluator("Cardiology"))

	records := p.Run(context.Background(), patientsFixture("Ravi", "Elin"))

	// Every patient still gets a record.
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.True(t, rec.Failed)
		assert.Equal(t, StateComplete, rec.State)
		// Placeholder urgency keeps downstream stages running.
		assert.Equal(t, 50, rec.Urgency.UrgencyScore)
		assert.Equal(t, "Moderate", rec.Urgency.RiskLevel)
		assert.NotEmpty(t, rec.Urgency.Err)
		assert.NotNil(t, rec.Match)
	}

	// The failure was broadcast, not swallowed.
	var sawError bool
	for _, ev := range log.All() {
		if ev.Type == events.TypeError {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestEvaluationFailureFallsBackToMappingSpecialty(t *testing.T) {
	failing := evaluatorFunc(func(context.Context, PatientProfile, SpecialtyMapping, UrgencyAssessment) (FinalEvaluation, error) {
		return FinalEvaluation{}, errors.New("bad response")
	})
	p, _ := newTestPipeline(okMapper("Cardiology"), okAssessor(60), failing)

	records := p.Run(context.Background(), patientsFixture("Ravi"))
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.Failed)
	assert.Equal(t, "Cardiology", rec.Evaluation.FinalSpecialty)
	require.NotNil(t, rec.Match)
	assert.Equal(t, "Cardiology", rec.Match.Specialty)
}

func TestMatchingUsesEvaluationSpecialtyFirst(t *testing.T) {
	p, _ := newTestPipeline(okMapper("Dermatology"), okAssessor(60), okEvaluator("Cardiology"))

	records := p.Run(context.Background(), patientsFixture("Ravi"))
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Match)
	assert.Equal(t, "Cardiology", records[0].Match.Specialty)
}

func TestHintPrefersFirstPotentialCondition(t *testing.T) {
	p, _ := newTestPipeline(okMapper("Cardiology"), okAssessor(60), okEvaluator("Cardiology"))

	records := p.Run(context.Background(), patientsFixture("Ravi"))
	require.Len(t, records, 1)
	assert.Equal(t, "Coronary artery disease", records[0].SubspecialtyHint)
}

func TestHintFallsBackToKeywordExtraction(t *testing.T) {
	bare := mapperFunc(func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		return SpecialtyMapping{PrimarySpecialty: "Cardiology"}, nil
	})
	p, _ := newTestPipeline(bare, okAssessor(60), okEvaluator("Cardiology"))

	patients := []PatientProfile{{
		Name:     "Ravi",
		Symptoms: "chest tightness after stent placement",
	}}
	records := p.Run(context.Background(), patients)
	require.Len(t, records, 1)
	assert.Equal(t, "Interventional", records[0].SubspecialtyHint)
}

func TestNoSpecialtyMeansEmergencyReferral(t *testing.T) {
	failingMapper := mapperFunc(func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		return SpecialtyMapping{}, errors.New("mapping backend down")
	})
	failingEvaluator := evaluatorFunc(func(context.Context, PatientProfile, SpecialtyMapping, UrgencyAssessment) (FinalEvaluation, error) {
		return FinalEvaluation{}, errors.New("evaluation backend down")
	})
	p, log := newTestPipeline(failingMapper, okAssessor(60), failingEvaluator)

	records := p.Run(context.Background(), patientsFixture("Ravi"))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Nil(t, rec.Match)
	assert.Equal(t, match.QualityEmergency, rec.MatchQuality())
	assert.Equal(t, StateComplete, rec.State)

	var sawWarning bool
	for _, ev := range log.All() {
		if ev.Type == events.TypeWarning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}

func TestDerivedSeverityAndPreparation(t *testing.T) {
	p, _ := newTestPipeline(okMapper("Cardiology"), okAssessor(85), okEvaluator("Cardiology"))

	records := p.Run(context.Background(), patientsFixture("Ravi"))
	require.Len(t, records, 1)

	rec := records[0]
	// "chest pain" is an emergency keyword.
	assert.Equal(t, "critical", rec.Severity)
	require.NotEmpty(t, rec.Preparation)
	assert.Equal(t, "HIGH URGENCY: Go to emergency room if symptoms worsen", rec.Preparation[0])
	assert.NotEmpty(t, rec.MatchExplanation)
}

func TestProgressObserverSeesEverySubstep(t *testing.T) {
	p, _ := newTestPipeline(okMapper("Cardiology"), okAssessor(60), okEvaluator("Cardiology"))

	type call struct {
		current int
		step    string
	}
	var calls []call
	p.SetProgressFunc(func(current, total int, step string) {
		calls = append(calls, call{current, step})
	})

	p.Run(context.Background(), patientsFixture("Ravi", "Elin"))

	want := []call{
		{1, "mapping"}, {1, "urgency"}, {1, "evaluation"}, {1, "matching"},
		{2, "mapping"}, {2, "urgency"}, {2, "evaluation"}, {2, "matching"},
	}
	assert.Equal(t, want, calls)
}
