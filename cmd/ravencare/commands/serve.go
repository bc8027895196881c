package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ravencare/ravencare/agents"
	"github.com/ravencare/ravencare/catalog"
	"github.com/ravencare/ravencare/config"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/logger"
	"github.com/ravencare/ravencare/server"
	"github.com/ravencare/ravencare/triage"
)

// ServeCmd starts the RavenCare web server.
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the RavenCare HTTP server",
	Long: `Launch the triage backend: run control and results endpoints, roster
queries, and a websocket stream of run events for the dashboard.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveOffline    bool
	servePort       int
)

func init() {
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Config file path (overrides discovery)")
	ServeCmd.Flags().BoolVar(&serveOffline, "offline", false, "Use rule-based stages, no API calls")
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if servePort > 0 {
		cfg.Server.Port = &servePort
	}

	runner, cat, err := buildRunner(cfg, serveOffline)
	if err != nil {
		return err
	}

	printStartupBanner(countDoctors(cat), cat.Len(), cfg.Server.EffectivePort())

	if watcher := watchConfig(serveConfigPath, runner); watcher != nil {
		defer watcher.Stop()
	}

	srv := server.New(*cfg, runner, cat)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Infow("Received shutdown signal", "signal", sig.String())
		if err := srv.Shutdown(); err != nil {
			return errors.Wrap(err, "shutdown failed")
		}
	}
	return nil
}

// watchConfig starts a config file watcher that rebuilds the stage agents on
// change, so API keys and model settings apply without a restart. Returns nil
// when no config file exists to watch; the server runs fine without one.
func watchConfig(configPath string, runner *triage.Runner) *config.ConfigWatcher {
	if configPath == "" {
		configPath = config.ProjectConfigPath()
	}
	if configPath == "" {
		return nil
	}

	watcher, err := config.NewConfigWatcher(configPath)
	if err != nil {
		logger.Warnw("Config watcher unavailable",
			"path", configPath,
			"error", err)
		return nil
	}

	watcher.OnReload(func(newCfg *config.Config) error {
		ai := newCfg.AI
		if serveOffline {
			ai.Offline = true
		}
		mapper, assessor, evaluator := agents.FromConfig(ai)
		if err := runner.SetStages(mapper, assessor, evaluator); err != nil {
			return errors.Wrap(err, "stage reload deferred")
		}
		logger.Infow("Stage agents rebuilt from config",
			"path", configPath,
			"offline", ai.Offline)
		return nil
	})

	watcher.Start()
	logger.Infow("Watching config for changes", "path", configPath)
	return watcher
}

// countDoctors sums rosters across all loaded specialties.
func countDoctors(cat *catalog.Catalog) int {
	total := 0
	for _, key := range cat.Specialties() {
		if dept, ok := cat.Department(key); ok {
			total += len(dept.Doctors)
		}
	}
	return total
}
