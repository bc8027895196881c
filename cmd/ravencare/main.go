package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ravencare/ravencare/cmd/ravencare/commands"
	"github.com/ravencare/ravencare/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ravencare",
	Short: "RavenCare - AI-assisted medical triage and doctor matching",
	Long: `RavenCare - staged patient assessment and doctor matching.

Patients flow through three assessment stages (specialty mapping, urgency
scoring, final evaluation) and a weighted doctor-matching engine over the
hospital roster.

Available commands:
  run     - Run batch triage over a patient file
  serve   - Start the HTTP server and websocket event stream
  doctors - List the doctor catalog
  version - Show version information

Examples:
  ravencare run --patients patients.json   # Batch triage with a report
  ravencare run --offline                  # Rule-based stages, no API calls
  ravencare serve                          # Start the dashboard backend
  ravencare doctors                        # Show the loaded roster`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DoctorsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
