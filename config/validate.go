package config

import (
	"fmt"
)

// Validate checks the configuration for values that cannot work at runtime.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port != nil {
		if *c.Server.Port <= 0 || *c.Server.Port > 65535 {
			return fmt.Errorf("server.port must be in 1-65535, got %d", *c.Server.Port)
		}
	}

	if c.Data.DoctorsDir == "" {
		return fmt.Errorf("data.doctors_dir must not be empty")
	}
	if len(c.Data.Specialties) == 0 {
		return fmt.Errorf("data.specialties must list at least one specialty")
	}

	if c.Triage.DefaultUrgencyScore < 0 || c.Triage.DefaultUrgencyScore > 100 {
		return fmt.Errorf("triage.default_urgency_score must be in 0-100, got %d", c.Triage.DefaultUrgencyScore)
	}
	if c.Triage.HeartbeatSeconds <= 0 {
		return fmt.Errorf("triage.heartbeat_seconds must be positive, got %d", c.Triage.HeartbeatSeconds)
	}

	if !c.AI.Offline {
		for name, agent := range map[string]Agent{
			"ai.mapper":    c.AI.Mapper,
			"ai.urgency":   c.AI.Urgency,
			"ai.evaluator": c.AI.Evaluator,
		} {
			if err := agent.validate(name); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a Agent) validate(name string) error {
	if a.BaseURL == "" {
		return fmt.Errorf("%s.base_url must not be empty", name)
	}
	if a.Model == "" {
		return fmt.Errorf("%s.model must not be empty", name)
	}
	if a.TimeoutSeconds <= 0 {
		return fmt.Errorf("%s.timeout_seconds must be positive, got %d", name, a.TimeoutSeconds)
	}
	if a.RequestsPerMinute <= 0 {
		return fmt.Errorf("%s.requests_per_minute must be positive, got %d", name, a.RequestsPerMinute)
	}
	return nil
}
