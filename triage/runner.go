package triage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/events"
	"github.com/ravencare/ravencare/logger"
)

// Status is a point-in-time snapshot of the run lifecycle.
type Status struct {
	Running        bool      `json:"running"`
	RunID          string    `json:"run_id,omitempty"`
	CurrentPatient int       `json:"current_patient"`
	TotalPatients  int       `json:"total_patients"`
	Progress       int       `json:"progress"` // percent, 0-100
	Step           string    `json:"step,omitempty"`
	StartedAt      time.Time `json:"started_at"`
}

// Runner owns the run lifecycle: one background triage run at a time, its
// event log, and the completed results.
type Runner struct {
	pipeline *Pipeline
	log      *events.Log

	active atomic.Bool

	mu      sync.RWMutex
	status  Status
	results []Record

	onComplete func([]Record)
}

// NewRunner wires a runner to its pipeline and event log. The runner takes
// over the pipeline's progress reporting.
func NewRunner(pipeline *Pipeline, log *events.Log) *Runner {
	r := &Runner{pipeline: pipeline, log: log}
	pipeline.SetProgressFunc(r.updateProgress)
	return r
}

// OnComplete registers a hook that receives the records of a finished run.
// A run that dies to a panic delivers nil, so waiters always wake up.
// Must be set before Start.
func (r *Runner) OnComplete(fn func([]Record)) {
	r.onComplete = fn
}

// SetStages swaps the pipeline's assessment stages. Rejected with
// ErrRunActive while a run is in flight; the new stages apply to the next run.
func (r *Runner) SetStages(mapper SpecialtyMapper, assessor UrgencyAssessor, evaluator Evaluator) error {
	if r.active.Load() {
		return errors.ErrRunActive
	}
	r.pipeline.SetStages(mapper, assessor, evaluator)
	return nil
}

// Events exposes the run's event log.
func (r *Runner) Events() *events.Log {
	return r.log
}

// Active reports whether a run is in flight.
func (r *Runner) Active() bool {
	return r.active.Load()
}

// Start launches a background run over the patients and returns its run ID.
// A second Start while a run is in flight fails with ErrRunActive; runs are
// never queued. The event log is reset for the new run.
func (r *Runner) Start(patients []PatientProfile) (string, error) {
	if !r.active.CompareAndSwap(false, true) {
		return "", errors.ErrRunActive
	}

	if len(patients) == 0 {
		r.active.Store(false)
		return "", errors.NewInvalidRequestError("no patients to process")
	}

	runID := uuid.NewString()
	r.log.Reset()

	r.mu.Lock()
	r.status = Status{
		Running:       true,
		RunID:         runID,
		TotalPatients: len(patients),
		Step:          "starting",
		StartedAt:     time.Now().UTC(),
	}
	r.results = nil
	r.mu.Unlock()

	go r.run(runID, patients)

	return runID, nil
}

// run executes the pipeline in the background. The active flag is cleared on
// every exit path, including panics.
func (r *Runner) run(runID string, patients []PatientProfile) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorw("Triage run panicked",
				"run_id", runID,
				"panic", rec)
			r.log.Error(fmt.Sprintf("Triage run failed: %v", rec),
				map[string]interface{}{"run_id": runID})
			r.setStep("error", false)
			if r.onComplete != nil {
				r.onComplete(nil)
			}
		}
		r.active.Store(false)
	}()

	logger.Infow("Triage run started",
		"run_id", runID,
		"patients", len(patients))
	r.log.Info(fmt.Sprintf("Starting triage for %d patients", len(patients)),
		map[string]interface{}{"run_id": runID, "total": len(patients)})

	records := r.pipeline.Run(context.Background(), patients)

	r.mu.Lock()
	r.results = records
	r.status.Running = false
	r.status.CurrentPatient = len(patients)
	r.status.Progress = 100
	r.status.Step = "complete"
	r.mu.Unlock()

	r.log.Success(fmt.Sprintf("Triage complete: %d patients processed", len(records)),
		map[string]interface{}{"run_id": runID, "total": len(records)})
	logger.Infow("Triage run complete",
		"run_id", runID,
		"records", len(records))

	if r.onComplete != nil {
		r.onComplete(records)
	}
}

// Status returns a snapshot of the current or last run.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status := r.status
	status.Running = r.active.Load()
	return status
}

// Results returns the records of the most recently completed run.
func (r *Runner) Results() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.results))
	copy(out, r.results)
	return out
}

// updateProgress is the pipeline's progress observer.
func (r *Runner) updateProgress(current, total int, step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.CurrentPatient = current
	r.status.TotalPatients = total
	r.status.Step = step
	if total > 0 {
		// Current patient is mid-flight; count the finished ones.
		r.status.Progress = (current - 1) * 100 / total
	}
}

func (r *Runner) setStep(step string, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Step = step
	r.status.Running = running
}
