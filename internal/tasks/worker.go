// Package tasks runs the asynchronous pipeline: it leases queued tasks and
// executes note classification and advice generation against the upstream
// model providers.
package tasks

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JiwonJeong414/TechTive-Backend/internal/classifier"
	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

const (
	// maxRetries bounds re-deliveries after the initial attempt. A task runs
	// at most 1+maxRetries times before it settles.
	maxRetries = 3
	// retryDelay is the fixed cooldown before a transient failure retries.
	// Re-enqueueing instead of sleeping keeps the worker free for other
	// users' tasks.
	retryDelay = 45 * time.Second
	// leaseVisibility is how long a claimed task stays invisible. Generous
	// enough to cover slow upstream calls; a crashed worker's claim expires
	// after this.
	leaseVisibility = 5 * time.Minute
)

// Config controls batch size and polling cadence.
type Config struct {
	BatchSize int
	Interval  time.Duration
}

// Worker leases and executes pipeline tasks until its context is canceled.
type Worker struct {
	store  store.Store
	cls    classifier.Classifier
	notes  *services.NoteService
	advice *services.AdviceService
	cfg    Config
	log    zerolog.Logger
}

func NewWorker(s store.Store, cls classifier.Classifier, notes *services.NoteService, advice *services.AdviceService, cfg Config, log zerolog.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	return &Worker{store: s, cls: cls, notes: notes, advice: advice, cfg: cfg, log: log}
}

// Run starts the polling loop until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Int("batch", w.cfg.BatchSize).Dur("interval", w.cfg.Interval).Msg("pipeline worker starting")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("pipeline worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				// Log and continue; per-task backoff prevents hot-looping.
				w.log.Error().Err(err).Msg("pipeline batch failed")
			}
		}
	}
}

// ProcessOnce leases one batch and handles every task in it. Exported so
// tests and the CLI can drive the worker without the polling loop.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	leased, err := w.store.Tasks().Lease(ctx, w.cfg.BatchSize, leaseVisibility)
	if err != nil {
		return errors.Wrap(err, "lease tasks")
	}

	for _, t := range leased {
		w.handle(ctx, t)
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, t *model.Task) {
	log := w.log.With().Str("taskId", t.TaskID).Str("op", t.Op).
		Str("userId", t.UserID).Int("attempt", t.AttemptCount).Logger()

	var err error
	switch t.Op {
	case model.TaskClassifyNote:
		err = w.classifyNote(ctx, t)
	case model.TaskGenerateAdvice:
		err = w.generateAdvice(ctx, t)
	default:
		w.settleFailed(ctx, t, errors.Errorf("unknown op %q", t.Op), log)
		return
	}

	if err == nil {
		if e := w.store.Tasks().MarkDone(ctx, t.TaskID); e != nil {
			log.Error().Err(e).Msg("mark done failed")
		}
		return
	}

	if retryable(t.Op, err) && t.AttemptCount < maxRetries {
		log.Warn().Err(err).Dur("delay", retryDelay).Msg("transient failure, rescheduling")
		if e := w.store.Tasks().Reschedule(ctx, t.TaskID, retryDelay, err.Error()); e != nil {
			log.Error().Err(e).Msg("reschedule failed")
		}
		return
	}

	w.settle(ctx, t, err, log)
}

// retryable decides whether a failure is worth another attempt.
// Classification retries only on upstream errors flagged transient (cold
// model, rate limit). Advice generation retries on anything except domain
// errors, since provider hiccups dominate its failure modes.
func retryable(op string, err error) bool {
	switch op {
	case model.TaskClassifyNote:
		return classifier.IsTransient(err)
	case model.TaskGenerateAdvice:
		return !errors.Is(err, model.ErrNoContext) &&
			!errors.Is(err, model.ErrValidation) &&
			!errors.Is(err, model.ErrNotFound)
	default:
		return false
	}
}

// settle finishes a task that will not retry. Classification degrades to a
// neutral vector so the note is never stuck unclassified; everything else
// records the failure.
func (w *Worker) settle(ctx context.Context, t *model.Task, cause error, log zerolog.Logger) {
	if t.Op == model.TaskClassifyNote && t.NoteID != nil {
		if err := w.notes.ApplyClassification(ctx, *t.NoteID, emotion.NeutralFallback(), time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("neutral fallback write failed")
			w.settleFailed(ctx, t, cause, log)
			return
		}
		log.Warn().Err(cause).Msg("classification gave up, applied neutral fallback")
		if err := w.store.Tasks().MarkDone(ctx, t.TaskID); err != nil {
			log.Error().Err(err).Msg("mark done failed")
		}
		return
	}
	w.settleFailed(ctx, t, cause, log)
}

func (w *Worker) settleFailed(ctx context.Context, t *model.Task, cause error, log zerolog.Logger) {
	log.Error().Err(cause).Msg("task failed permanently")
	if err := w.store.Tasks().MarkFailed(ctx, t.TaskID, cause.Error()); err != nil {
		log.Error().Err(err).Msg("mark failed failed")
	}
}

func (w *Worker) classifyNote(ctx context.Context, t *model.Task) error {
	if t.NoteID == nil {
		return errors.New("classify task without note id")
	}
	n, err := w.store.Notes().GetByID(ctx, t.UserID, *t.NoteID)
	if errors.Is(err, model.ErrNotFound) {
		// Note deleted while queued; nothing to classify.
		return nil
	}
	if err != nil {
		return err
	}
	if n.ClassifiedAt != nil {
		// Already classified (duplicate task after an edit race).
		return nil
	}

	v, err := w.cls.Classify(ctx, n.Content)
	if err != nil {
		return err
	}
	return w.notes.ApplyClassification(ctx, n.NoteID, v, time.Now().UTC())
}

// generateAdvice serializes per user so two queued requests cannot read the
// same un-summarized notes.
func (w *Worker) generateAdvice(ctx context.Context, t *model.Task) error {
	return w.store.WithUserLock(ctx, t.UserID, func(ctx context.Context) error {
		_, err := w.advice.GenerateAdvice(ctx, t.UserID)
		if errors.Is(err, model.ErrNoContext) {
			// User deleted their notes after requesting advice.
			return errors.Wrap(err, "no journal content to advise on")
		}
		return err
	})
}
