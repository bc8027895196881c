package triage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/events"
)

func newTestRunner(m SpecialtyMapper, a UrgencyAssessor, e Evaluator) *Runner {
	log := events.NewLog()
	pipeline := NewPipeline(m, a, e, testEngine(), log, 50)
	return NewRunner(pipeline, log)
}

func waitForIdle(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for r.Active() {
		select {
		case <-deadline:
			t.Fatal("runner did not go idle")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStartRejectsEmptyRoster(t *testing.T) {
	r := newTestRunner(okMapper("Cardiology"), okAssessor(60), okEvaluator("Cardiology"))

	_, err := r.Start(nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))

	// The flag was released; a real run can still start.
	_, err = r.Start(patientsFixture("Ravi"))
	require.NoError(t, err)
	waitForIdle(t, r)
}

func TestSecondStartWhileRunningIsRejected(t *testing.T) {
	release := make(chan struct{})
	blocking := mapperFunc(func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		<-release
		return SpecialtyMapping{PrimarySpecialty: "Cardiology"}, nil
	})
	r := newTestRunner(blocking, okAssessor(60), okEvaluator("Cardiology"))

	runID, err := r.Start(patientsFixture("Ravi"))
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	_, err = r.Start(patientsFixture("Elin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRunActive))

	close(release)
	waitForIdle(t, r)

	// Once idle, a new run gets a fresh ID.
	second, err := r.Start(patientsFixture("Elin"))
	require.NoError(t, err)
	assert.NotEqual(t, runID, second)
	waitForIdle(t, r)
}

func TestRunCompletesAndExposesResults(t *testing.T) {
	r := newTestRunner(okMapper("Cardiology"), okAssessor(60), okEvaluator("Cardiology"))

	done := make(chan []Record, 1)
	r.OnComplete(func(records []Record) { done <- records })

	_, err := r.Start(patientsFixture("Ravi", "Elin"))
	require.NoError(t, err)

	select {
	case records := <-done:
		assert.Len(t, records, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not complete")
	}
	waitForIdle(t, r)

	status := r.Status()
	assert.False(t, status.Running)
	assert.Equal(t, "complete", status.Step)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 2, status.TotalPatients)

	assert.Len(t, r.Results(), 2)
}

func TestPanicClearsActiveFlag(t *testing.T) {
	panicking := mapperFunc(func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		panic("boom")
	})
	r := newTestRunner(panicking, okAssessor(60), okEvaluator("Cardiology"))

	_, err := r.Start(patientsFixture("Ravi"))
	require.NoError(t, err)
	waitForIdle(t, r)

	status := r.Status()
	assert.False(t, status.Running)
	assert.Equal(t, "error", status.Step)

	// The diagnostic reached the event log.
	var sawError bool
	for _, ev := range r.Events().All() {
		if ev.Type == events.TypeError {
			sawError = true
		}
	}
	assert.True(t, sawError)

	// And the runner accepts new runs again.
	_, err = r.Start(patientsFixture("Elin"))
	require.NoError(t, err)
	waitForIdle(t, r)
}

func TestPanicDeliversNilToOnComplete(t *testing.T) {
	panicking := mapperFunc(func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		panic("boom")
	})
	r := newTestRunner(panicking, okAssessor(60), okEvaluator("Cardiology"))

	done := make(chan []Record, 1)
	r.OnComplete(func(records []Record) { done <- records })

	_, err := r.Start(patientsFixture("Ravi"))
	require.NoError(t, err)

	// Waiters must wake up even when the run dies; nil marks the failure.
	select {
	case records := <-done:
		assert.Nil(t, records)
	case <-time.After(5 * time.Second):
		t.Fatal("completion hook never fired after panic")
	}
	waitForIdle(t, r)
}

func TestSetStagesGatedOnRunLifecycle(t *testing.T) {
	release := make(chan struct{})
	blocking := mapperFunc(func(context.Context, PatientProfile) (SpecialtyMapping, error) {
		<-release
		return SpecialtyMapping{PrimarySpecialty: "Cardiology"}, nil
	})
	r := newTestRunner(blocking, okAssessor(60), okEvaluator("Cardiology"))

	_, err := r.Start(patientsFixture("Ravi"))
	require.NoError(t, err)

	// Mid-run swaps are refused so a run never mixes stage sets.
	err = r.SetStages(okMapper("Neurology"), okAssessor(60), okEvaluator("Neurology"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRunActive))

	close(release)
	waitForIdle(t, r)

	require.NoError(t,
		r.SetStages(okMapper("Neurology"), okAssessor(60), okEvaluator("Neurology")))

	_, err = r.Start(patientsFixture("Elin"))
	require.NoError(t, err)
	waitForIdle(t, r)

	results := r.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Neurology", results[0].Mapping.PrimarySpecialty)
}

func TestNewRunResetsEventLog(t *testing.T) {
	r := newTestRunner(okMapper("Cardiology"), okAssessor(60), okEvaluator("Cardiology"))

	_, err := r.Start(patientsFixture("Ravi"))
	require.NoError(t, err)
	waitForIdle(t, r)
	firstLen := r.Events().Len()
	require.Greater(t, firstLen, 0)

	_, err = r.Start(patientsFixture("Elin"))
	require.NoError(t, err)
	waitForIdle(t, r)

	// The log holds only the second run's events.
	for _, ev := range r.Events().All() {
		assert.NotContains(t, ev.Message, "Ravi")
	}
}
