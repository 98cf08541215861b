package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the TechTive backend.
// Environment variables are parsed from the TECHTIVE_ prefix.
type Config struct {
	// Build target selects the high-level environment: local, cloud-dev, cloud.
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// DBDriver is derived from BuildTarget when set to "auto".
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	// HTTP configuration.
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres configuration (cloud targets).
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite configuration (local target).
	SQLitePath string `envconfig:"SQLITE_PATH" default:"techtive.db"`

	// Emotion classification service (HuggingFace Inference API).
	HFAPIToken string `envconfig:"HF_API_TOKEN" default:""`
	HFModelURL string `envconfig:"HF_MODEL_URL" default:"https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"`

	// Text generation service (OpenAI-compatible).
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`

	// Auth mode: "static" accepts the local development token only.
	AuthMode string `envconfig:"AUTH_MODE" default:"static"`

	// Pipeline worker tuning.
	WorkerBatchSize       int `envconfig:"WORKER_BATCH_SIZE" default:"50"`
	WorkerIntervalSeconds int `envconfig:"WORKER_INTERVAL_SECONDS" default:"2"`

	// Health checker cadence.
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// New loads configuration from the environment and resolves derived defaults.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TECHTIVE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults validates BuildTarget and derives DBDriver when "auto".
func (c *Config) ResolveDefaults() error {
	var defaultDB string
	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("TECHTIVE_POSTGRES_DSN is required for the %s target", c.BuildTarget)
	}
	return nil
}
