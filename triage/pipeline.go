package triage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ravencare/ravencare/events"
	"github.com/ravencare/ravencare/hints"
	"github.com/ravencare/ravencare/logger"
	"github.com/ravencare/ravencare/match"
)

// Defaults applied when the intake record leaves a preference blank.
const (
	DefaultPreferredSlot = "09:00"
	DefaultLanguage      = "English"
)

// ProgressFunc observes per-substep progress: current patient (1-based),
// total patients, and the substep name.
type ProgressFunc func(current, total int, step string)

// Pipeline folds patients through the assessment stages.
//
// Stage failures never abort a run: the failing stage's output is replaced
// with a defaulted placeholder, the record is flagged, and processing
// continues. The output slice always has one record per input patient, in
// input order.
type Pipeline struct {
	mu        sync.RWMutex
	mapper    SpecialtyMapper
	assessor  UrgencyAssessor
	evaluator Evaluator

	engine         *match.Engine
	events         *events.Log
	defaultUrgency int
	progress       ProgressFunc
}

// NewPipeline wires the stage collaborators together. defaultUrgency is the
// score assumed when the urgency stage fails.
func NewPipeline(mapper SpecialtyMapper, assessor UrgencyAssessor, evaluator Evaluator,
	engine *match.Engine, eventLog *events.Log, defaultUrgency int) *Pipeline {
	return &Pipeline{
		mapper:         mapper,
		assessor:       assessor,
		evaluator:      evaluator,
		engine:         engine,
		events:         eventLog,
		defaultUrgency: defaultUrgency,
	}
}

// SetProgressFunc registers a progress observer. Pass nil to clear.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.progress = fn
}

// SetStages replaces the assessment stages, e.g. after a config reload. The
// swap is picked up at the next patient boundary; callers who must not mix
// stage sets within a run gate the swap on the run lifecycle.
func (p *Pipeline) SetStages(mapper SpecialtyMapper, assessor UrgencyAssessor, evaluator Evaluator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mapper = mapper
	p.assessor = assessor
	p.evaluator = evaluator
}

// stages snapshots the current stage set under the read lock.
func (p *Pipeline) stages() (SpecialtyMapper, UrgencyAssessor, Evaluator) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapper, p.assessor, p.evaluator
}

// Run processes all patients in order and returns one record each.
func (p *Pipeline) Run(ctx context.Context, patients []PatientProfile) []Record {
	total := len(patients)
	records := make([]Record, 0, total)

	for i, patient := range patients {
		p.events.Info(
			fmt.Sprintf("Processing patient %d/%d: %s", i+1, total, patient.Name),
			map[string]interface{}{
				"patient_number": i + 1,
				"patient_name":   patient.Name,
				"total":          total,
				"progress":       percent(i, total),
			})

		rec := p.processPatient(ctx, patient, i+1, total)
		records = append(records, rec)

		p.events.Success(
			fmt.Sprintf("Completed triage for %s", patient.Name),
			map[string]interface{}{
				"specialty":     rec.Evaluation.FinalSpecialty,
				"urgency":       rec.Urgency.UrgencyScore,
				"doctor":        matchedDoctorName(rec.Match),
				"match_score":   matchedScore(rec.Match),
				"match_quality": rec.MatchQuality(),
				"progress":      percent(i+1, total),
			})
	}

	return records
}

// processPatient walks one patient through every stage.
func (p *Pipeline) processPatient(ctx context.Context, patient PatientProfile, current, total int) Record {
	rec := Record{
		Patient:   patient,
		Timestamp: time.Now().UTC(),
		State:     StateInit,
	}

	mapper, assessor, evaluator := p.stages()

	// Stage 1: specialty mapping.
	p.step(current, total, "mapping")
	p.events.Info(fmt.Sprintf("Analyzing symptoms for %s", patient.Name), nil)
	mapping, err := mapper.MapSpecialty(ctx, patient)
	if err != nil {
		rec.Mapping = SpecialtyMapping{Err: err.Error()}
		rec.Failed = true
		p.stageFailed(patient.Name, "mapping", err)
	} else {
		rec.Mapping = mapping
		p.events.Success(
			fmt.Sprintf("Primary specialty: %s", mapping.PrimarySpecialty),
			map[string]interface{}{"specialty": mapping.PrimarySpecialty})
	}
	rec.State = StateMappingDone

	// Stage 2: urgency assessment.
	p.step(current, total, "urgency")
	p.events.Info(fmt.Sprintf("Assessing urgency for %s", patient.Name), nil)
	urgency, err := assessor.AssessUrgency(ctx, patient, rec.Mapping)
	if err != nil {
		rec.Urgency = UrgencyAssessment{
			UrgencyScore:    p.defaultUrgency,
			RiskLevel:       "Moderate",
			TriageCategory:  "Standard",
			TimeToTreatment: "Within 24 hours",
			Err:             err.Error(),
		}
		rec.Failed = true
		p.stageFailed(patient.Name, "urgency", err)
	} else {
		rec.Urgency = urgency
		p.events.Success(
			fmt.Sprintf("Urgency score: %d/100", urgency.UrgencyScore),
			map[string]interface{}{"urgency_score": urgency.UrgencyScore})
	}
	rec.State = StateUrgencyDone

	// Stage 3: final evaluation.
	p.step(current, total, "evaluation")
	p.events.Info(fmt.Sprintf("Final evaluation for %s", patient.Name), nil)
	evaluation, err := evaluator.Evaluate(ctx, patient, rec.Mapping, rec.Urgency)
	if err != nil {
		rec.Evaluation = FinalEvaluation{
			FinalSpecialty:       rec.Mapping.PrimarySpecialty,
			ConfidenceLevel:      "Moderate",
			ConsultationPriority: rec.Urgency.TriageCategory,
			Err:                  err.Error(),
		}
		rec.Failed = true
		p.stageFailed(patient.Name, "evaluation", err)
	} else {
		rec.Evaluation = evaluation
		p.events.Success(
			fmt.Sprintf("Final specialty: %s", evaluation.FinalSpecialty),
			map[string]interface{}{"specialty": evaluation.FinalSpecialty})
	}
	rec.State = StateEvaluationDone

	// Stage 4: doctor matching.
	p.step(current, total, "matching")
	p.runMatching(&rec)
	rec.State = StateMatchingDone

	// Derived signals for the report.
	rec.Severity = hints.Severity(patient.Symptoms, rec.Urgency.UrgencyScore)
	rec.AdditionalSpecialties = hints.MultiSpecialtyNeeds(
		rec.Mapping.SecondarySpecialties, rec.Evaluation.Warnings)
	if rec.Match != nil {
		rec.MatchExplanation = match.Explanation(rec.Match, patient.Name)
		rec.Preparation = match.PreparationAdvice(
			rec.Match.Specialty, rec.Urgency.UrgencyScore, patient.PreExistingConditions)
	}

	rec.State = StateComplete
	return rec
}

// runMatching picks the matching inputs out of the stage results and asks the
// engine for the best doctor.
func (p *Pipeline) runMatching(rec *Record) {
	specialty := rec.Evaluation.FinalSpecialty
	if specialty == "" {
		specialty = rec.Mapping.PrimarySpecialty
	}
	if specialty == "" {
		p.events.Warning(
			fmt.Sprintf("No specialty resolved for %s - emergency referral", rec.Patient.Name), nil)
		return
	}

	// The first potential condition is the strongest subspecialty signal;
	// with none, fall back to keyword extraction over the narrative.
	hint := ""
	if len(rec.Mapping.PotentialConditions) > 0 {
		hint = rec.Mapping.PotentialConditions[0]
	} else {
		hint = hints.SubspecialtyHint(specialty, rec.Patient.Symptoms, rec.Patient.PreExistingConditions)
	}
	rec.SubspecialtyHint = hint

	slot := rec.Patient.PreferredSlot
	if slot == "" {
		slot = DefaultPreferredSlot
	}
	language := rec.Patient.PreferredLanguage
	if language == "" {
		language = DefaultLanguage
	}

	result := p.engine.FindBestMatch(match.Request{
		Specialty:        specialty,
		PreferredSlot:    slot,
		Language:         language,
		UrgencyScore:     rec.Urgency.UrgencyScore,
		Age:              rec.Patient.Age,
		SubspecialtyHint: hint,
		Conditions:       rec.Patient.PreExistingConditions,
	})
	rec.Match = result

	if result != nil {
		p.events.Success(
			fmt.Sprintf("Matched %s (score %.2f, %s)", result.Doctor.Name, result.Score, result.Quality),
			map[string]interface{}{
				"doctor":        result.Doctor.Name,
				"match_score":   result.Score,
				"match_quality": result.Quality,
			})
	} else {
		p.events.Warning(
			fmt.Sprintf("No doctor match for %s - emergency referral", rec.Patient.Name),
			map[string]interface{}{"specialty": specialty})
	}
}

func (p *Pipeline) step(current, total int, step string) {
	if p.progress != nil {
		p.progress(current, total, step)
	}
}

func (p *Pipeline) stageFailed(patientName, stage string, err error) {
	logger.Errorw("Triage stage failed",
		"patient", patientName,
		"stage", stage,
		"error", err)
	p.events.Error(
		fmt.Sprintf("Stage %s failed for %s: %v", stage, patientName, err),
		map[string]interface{}{"stage": stage, "patient_name": patientName})
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

func matchedDoctorName(result *match.Result) string {
	if result == nil {
		return ""
	}
	return result.Doctor.Name
}

func matchedScore(result *match.Result) float64 {
	if result == nil {
		return 0
	}
	return result.Score
}
