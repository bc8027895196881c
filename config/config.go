// Package config loads and watches the RavenCare configuration.
//
// Configuration is read from TOML files merged with RAVENCARE_* environment
// variables. Precedence (lowest to highest): user config < project config <
// environment variables.
package config

// Config represents the core RavenCare configuration
type Config struct {
	Server Server `mapstructure:"server"`
	Data   Data   `mapstructure:"data"`
	Triage Triage `mapstructure:"triage"`
	AI     AI     `mapstructure:"ai"`
}

// Server configures the RavenCare web server
type Server struct {
	Port           *int     `mapstructure:"port"` // nil = default 8787, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Data configures on-disk data locations
type Data struct {
	DoctorsDir   string   `mapstructure:"doctors_dir"`   // directory of per-specialty JSON files
	PatientsFile string   `mapstructure:"patients_file"` // default patient roster for batch runs
	ReportsDir   string   `mapstructure:"reports_dir"`   // where run summary reports are written
	Specialties  []string `mapstructure:"specialties"`   // catalog load order (lowercase file stems)
}

// Triage configures the run pipeline
type Triage struct {
	DefaultUrgencyScore int `mapstructure:"default_urgency_score"` // used when the urgency stage fails
	HeartbeatSeconds    int `mapstructure:"heartbeat_seconds"`     // event stream keepalive interval
}

// AI configures the three assessment stage agents
type AI struct {
	Offline   bool  `mapstructure:"offline"` // use rule-based stages, no network calls
	Mapper    Agent `mapstructure:"mapper"`
	Urgency   Agent `mapstructure:"urgency"`
	Evaluator Agent `mapstructure:"evaluator"`
}

// Agent configures one chat-completion backed stage
type Agent struct {
	BaseURL           string  `mapstructure:"base_url"`
	Model             string  `mapstructure:"model"`
	APIKey            string  `mapstructure:"api_key"` // bound to env, never persisted
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// Server port constants
const (
	DefaultServerPort = 8787
)

// DefaultDirPermissions for created config/report directories
const DefaultDirPermissions = 0o755

// EffectivePort resolves the configured port, applying the default when unset.
func (s Server) EffectivePort() int {
	if s.Port == nil {
		return DefaultServerPort
	}
	return *s.Port
}
