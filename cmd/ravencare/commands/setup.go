// Package commands holds the ravencare CLI subcommands.
package commands

import (
	"github.com/ravencare/ravencare/agents"
	"github.com/ravencare/ravencare/catalog"
	"github.com/ravencare/ravencare/config"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/events"
	"github.com/ravencare/ravencare/match"
	"github.com/ravencare/ravencare/triage"
)

// loadConfig resolves configuration, honoring an explicit --config path.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// buildRunner wires the full triage stack from configuration: catalog,
// matching engine, stage agents, pipeline, and runner.
func buildRunner(cfg *config.Config, offline bool) (*triage.Runner, *catalog.Catalog, error) {
	cat := catalog.Load(cfg.Data.DoctorsDir, cfg.Data.Specialties)
	if cat.Len() == 0 {
		return nil, nil, errors.Newf("no specialties loaded from %q", cfg.Data.DoctorsDir)
	}

	ai := cfg.AI
	if offline {
		ai.Offline = true
	}
	mapper, assessor, evaluator := agents.FromConfig(ai)

	log := events.NewLog()
	pipeline := triage.NewPipeline(mapper, assessor, evaluator,
		match.NewEngine(cat), log, cfg.Triage.DefaultUrgencyScore)

	return triage.NewRunner(pipeline, log), cat, nil
}
