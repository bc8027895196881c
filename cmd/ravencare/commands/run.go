package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/events"
	"github.com/ravencare/ravencare/report"
	"github.com/ravencare/ravencare/triage"
)

// RunCmd runs batch triage over a patient file and writes a summary report.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run batch triage over a patient file",
	Long: `Process every patient in the roster through the assessment pipeline and
the doctor-matching engine, streaming progress to the terminal. A JSON
summary report is written when the run completes.`,
	RunE: runTriage,
}

var (
	runConfigPath   string
	runPatientsFile string
	runOffline      bool
	runNoReport     bool
)

func init() {
	RunCmd.Flags().StringVar(&runConfigPath, "config", "", "Config file path (overrides discovery)")
	RunCmd.Flags().StringVar(&runPatientsFile, "patients", "", "Patient file (overrides config)")
	RunCmd.Flags().BoolVar(&runOffline, "offline", false, "Use rule-based stages, no API calls")
	RunCmd.Flags().BoolVar(&runNoReport, "no-report", false, "Skip writing the JSON summary report")
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	patientsFile := runPatientsFile
	if patientsFile == "" {
		patientsFile = cfg.Data.PatientsFile
	}
	patients, err := triage.LoadPatients(patientsFile)
	if err != nil {
		return errors.Wrap(err, "failed to load patients")
	}

	runner, cat, err := buildRunner(cfg, runOffline)
	if err != nil {
		return err
	}

	printStartupBanner(countDoctors(cat), cat.Len(), 0)
	pterm.Printf("Loaded %s patients from %s\n\n",
		pterm.Green(fmt.Sprintf("%d", len(patients))), patientsFile)

	// Stream run events to the terminal while the run is in flight.
	sub := runner.Events().Subscribe()
	var emitterWG sync.WaitGroup
	emitterWG.Add(1)
	go func() {
		defer emitterWG.Done()
		emitEvents(sub)
	}()

	done := make(chan []triage.Record, 1)
	runner.OnComplete(func(records []triage.Record) { done <- records })

	runID, err := runner.Start(patients)
	if err != nil {
		runner.Events().Unsubscribe(sub)
		close(sub)
		emitterWG.Wait()
		return errors.Wrap(err, "failed to start triage run")
	}

	records := <-done
	// Give trailing events a moment to drain before tearing down.
	time.Sleep(50 * time.Millisecond)
	runner.Events().Unsubscribe(sub)
	close(sub)
	emitterWG.Wait()

	// A nil delivery means the run died before producing records.
	if records == nil {
		return errors.Newf("triage run %s failed before completing", runID)
	}

	printRunSummary(records)

	if !runNoReport {
		path, err := report.NewWriter(cfg.Data.ReportsDir).Write(runID, records)
		if err != nil {
			return errors.Wrap(err, "failed to write report")
		}
		pterm.Success.Printf("Report saved: %s\n", path)
	}

	return nil
}

// emitEvents renders run events until the subscription channel closes.
func emitEvents(sub chan events.Event) {
	for ev := range sub {
		switch ev.Type {
		case events.TypeSuccess:
			pterm.Success.Println(ev.Message)
		case events.TypeError:
			pterm.Error.Println(ev.Message)
		case events.TypeWarning:
			pterm.Warning.Println(ev.Message)
		case events.TypeHeartbeat:
			// Keepalives are for network consumers, not terminals.
		default:
			pterm.Info.Println(ev.Message)
		}
	}
}

// printRunSummary renders the per-patient outcome table.
func printRunSummary(records []triage.Record) {
	rows := pterm.TableData{
		{"Patient", "Specialty", "Urgency", "Doctor", "Quality"},
	}
	for _, rec := range records {
		doctor := "Emergency referral"
		if rec.Match != nil {
			doctor = rec.Match.Doctor.Name
		}
		specialty := rec.Evaluation.FinalSpecialty
		if specialty == "" {
			specialty = "-"
		}
		rows = append(rows, []string{
			rec.Patient.Name,
			specialty,
			fmt.Sprintf("%d/100", rec.Urgency.UrgencyScore),
			doctor,
			rec.MatchQuality(),
		})
	}

	fmt.Println()
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	fmt.Println()
}
