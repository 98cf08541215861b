// Package factory constructs configured adapters (store, classifier,
// generator, verifier) so the run packages stay declarative.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/classifier"
	"github.com/JiwonJeong414/TechTive-Backend/internal/config"
	"github.com/JiwonJeong414/TechTive-Backend/internal/generator"
	storepkg "github.com/JiwonJeong414/TechTive-Backend/internal/store"
	storepg "github.com/JiwonJeong414/TechTive-Backend/internal/store/postgres"
	storelite "github.com/JiwonJeong414/TechTive-Backend/internal/store/sqlite"
)

// NewStore opens the configured database backend.
func NewStore(cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("TECHTIVE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "postgres").Msg("store ready")
		return storepg.NewWithDB(db), nil
	case "sqlite":
		db, err := storelite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("store ready")
		return storelite.NewWithDB(db)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewClassifier builds the emotion classifier client.
func NewClassifier(cfg *config.Config) (classifier.Classifier, error) {
	if cfg.HFModelURL == "" {
		return nil, fmt.Errorf("TECHTIVE_HF_MODEL_URL is required")
	}
	return classifier.NewHuggingFace(cfg.HFModelURL, cfg.HFAPIToken), nil
}

// NewGenerator builds the chat-completion provider for advice and
// memory summaries.
func NewGenerator(cfg *config.Config) (generator.Provider, error) {
	return generator.NewOpenAI(generator.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
}

// NewVerifier selects the token verifier for the configured auth mode.
func NewVerifier(cfg *config.Config, log zerolog.Logger) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case "static":
		log.Warn().Msg("static token verifier active; do not expose this deployment publicly")
		return auth.NewStaticVerifier(), nil
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE: %s", cfg.AuthMode)
	}
}
