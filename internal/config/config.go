// Package config provides configuration loading and validation for the prep agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
	"github.com/shiyoungwoo/Resume-assistant/internal/store"
)

// Environments accepted by Validate.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the agent configuration. Values come from an optional JSON file,
// then environment variables, then defaults for anything still unset.
type Config struct {
	Env  string `json:"env,omitempty" envconfig:"APP_ENV"`
	Port int    `json:"port,omitempty" envconfig:"APP_PORT"`

	// Storage
	Store       string `json:"store,omitempty" envconfig:"STORE_BACKEND"` // memory, sqlite or postgres
	DBPath      string `json:"db_path,omitempty" envconfig:"DB_PATH"`     // SQLite file
	DatabaseURL string `json:"database_url,omitempty" envconfig:"DATABASE_URL"`

	// AI service
	APIKey        string `json:"api_key,omitempty" envconfig:"GEMINI_API_KEY"`
	ModelLite     string `json:"model_lite,omitempty" envconfig:"GEMINI_MODEL_LITE"`
	ModelStandard string `json:"model_standard,omitempty" envconfig:"GEMINI_MODEL_STANDARD"`
	ModelAdvanced string `json:"model_advanced,omitempty" envconfig:"GEMINI_MODEL_ADVANCED"`

	// Behavior
	InitialPoints  int  `json:"initial_points,omitempty" envconfig:"INITIAL_POINTS"` // 0 uses the default
	NoAutoGenerate bool `json:"no_auto_generate,omitempty" envconfig:"NO_AUTO_GENERATE"`
	Verbose        bool `json:"verbose,omitempty" envconfig:"VERBOSE"`

	// HTTP
	RateLimitRPS      float64  `json:"rate_limit_rps,omitempty" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst    int      `json:"rate_limit_burst,omitempty" envconfig:"RATE_LIMIT_BURST"`
	RateLimitDisabled bool     `json:"rate_limit_disabled,omitempty" envconfig:"RATE_LIMIT_DISABLED"`
	CORSOrigins       []string `json:"cors_origins,omitempty" envconfig:"CORS_TRUSTED_ORIGINS"`
}

// Defaults returns the values used for unset fields.
func Defaults() Config {
	return Config{
		Env:            EnvDevelopment,
		Port:           8080,
		Store:          store.BackendSQLite,
		DBPath:         filepath.Join("data", "prep.db"),
		InitialPoints:  ledger.DefaultInitialPoints,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		CORSOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Load reads the file at path (if any), overlays the environment, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// The API key is not checked here since only some commands need it.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("config error: unknown env %q", c.Env)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}

	switch c.Store {
	case store.BackendMemory:
	case store.BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("config error: 'db_path' is required for the sqlite store")
		}
	case store.BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	default:
		return fmt.Errorf("config error: unknown store %q", c.Store)
	}

	if c.InitialPoints < 0 {
		return fmt.Errorf("config error: 'initial_points' must be non-negative")
	}

	if !c.RateLimitDisabled {
		if c.RateLimitRPS <= 0 {
			return fmt.Errorf("config error: 'rate_limit_rps' must be positive")
		}
		if c.RateLimitBurst < 1 {
			return fmt.Errorf("config error: 'rate_limit_burst' must be at least 1")
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bool fields cannot tell unset from false and are never merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Env == "" {
		result.Env = defaults.Env
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Store == "" {
		if result.DatabaseURL != "" {
			result.Store = store.BackendPostgres
		} else {
			result.Store = defaults.Store
		}
	}
	if result.DBPath == "" {
		result.DBPath = defaults.DBPath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ModelLite == "" {
		result.ModelLite = defaults.ModelLite
	}
	if result.ModelStandard == "" {
		result.ModelStandard = defaults.ModelStandard
	}
	if result.ModelAdvanced == "" {
		result.ModelAdvanced = defaults.ModelAdvanced
	}
	if result.InitialPoints == 0 {
		result.InitialPoints = defaults.InitialPoints
	}
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = append([]string(nil), defaults.CORSOrigins...)
	}

	return result
}

// StoreDSN returns the connection string for the configured store.
func (c *Config) StoreDSN() string {
	if c.Store == store.BackendPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// LLMConfig returns the model configuration with any overrides applied.
func (c *Config) LLMConfig() *llm.Config {
	return llm.DefaultConfig().
		WithModel(llm.TierLite, c.ModelLite).
		WithModel(llm.TierStandard, c.ModelStandard).
		WithModel(llm.TierAdvanced, c.ModelAdvanced)
}

// RequireAPIKey reports an error when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY (or 'api_key') is required")
	}
	return nil
}
