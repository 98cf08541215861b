// Package pipelineworker boots the background pipeline: it shares the
// server's store and adapters but runs only the task loop.
package pipelineworker

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/JiwonJeong414/TechTive-Backend/internal/config"
	"github.com/JiwonJeong414/TechTive-Backend/internal/factory"
	"github.com/JiwonJeong414/TechTive-Backend/internal/logger"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
	"github.com/JiwonJeong414/TechTive-Backend/internal/tasks"
)

// Run starts the pipeline worker and blocks until shutdown or error.
func Run() error {
	log := logger.New("pipeline-worker")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store unavailable")
		return err
	}

	cls, err := factory.NewClassifier(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Classifier unavailable")
		return err
	}

	gen, err := factory.NewGenerator(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Generator unavailable")
		return err
	}

	notes := services.NewNoteService(st)
	memories := services.NewMemoryService(st, gen, log)
	advice := services.NewAdviceService(st, memories, services.NewContextBuilder(st), gen, log)

	w := tasks.NewWorker(st, cls, notes, advice, tasks.Config{
		BatchSize: cfg.WorkerBatchSize,
		Interval:  time.Duration(cfg.WorkerIntervalSeconds) * time.Second,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Stack().Err(err).Msg("pipeline worker exit")
		return err
	}
	return nil
}
