package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})

	// Data defaults
	v.SetDefault("data.doctors_dir", "Doctor_Details")
	v.SetDefault("data.patients_file", "patients.json")
	v.SetDefault("data.reports_dir", ".")
	v.SetDefault("data.specialties", []string{
		"cardiology",
		"dermatology",
		"ent",
		"gastroenterology",
		"hepatology",
		"neurology",
		"ophthalmology",
		"orthpedics",
		"pediatrics",
		"psychiatry",
		"pulmonology",
	})

	// Triage defaults
	v.SetDefault("triage.default_urgency_score", 50)
	v.SetDefault("triage.heartbeat_seconds", 1)

	// Stage agent defaults
	v.SetDefault("ai.offline", false)

	v.SetDefault("ai.mapper.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("ai.mapper.model", "gemini-2.0-flash")
	v.SetDefault("ai.mapper.timeout_seconds", 60)
	v.SetDefault("ai.mapper.max_tokens", 1000)
	v.SetDefault("ai.mapper.temperature", 0.2)
	v.SetDefault("ai.mapper.requests_per_minute", 10)

	v.SetDefault("ai.urgency.base_url", "https://api.x.ai/v1")
	v.SetDefault("ai.urgency.model", "grok-3-mini")
	v.SetDefault("ai.urgency.timeout_seconds", 60)
	v.SetDefault("ai.urgency.max_tokens", 1000)
	v.SetDefault("ai.urgency.temperature", 0.2)
	v.SetDefault("ai.urgency.requests_per_minute", 10)

	v.SetDefault("ai.evaluator.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.evaluator.model", "o4-mini")
	v.SetDefault("ai.evaluator.timeout_seconds", 90)
	v.SetDefault("ai.evaluator.max_tokens", 1500)
	v.SetDefault("ai.evaluator.temperature", 0.2)
	v.SetDefault("ai.evaluator.requests_per_minute", 10)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("ai.mapper.api_key", "RAVENCARE_GEMINI_API_KEY")
	v.BindEnv("ai.urgency.api_key", "RAVENCARE_XAI_API_KEY")
	v.BindEnv("ai.evaluator.api_key", "RAVENCARE_OPENAI_API_KEY")
}
