package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JiwonJeong414/TechTive-Backend/internal/generator"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// AdviceNoteThreshold is the number of new notes since the last advice that
// makes a user eligible for another one.
const AdviceNoteThreshold = 3

const (
	adviceTemperature = 0.75
	adviceMaxTokens   = 180
)

const adviceSystemPrompt = "You are a thoughtful, supportive companion for a " +
	"personal journaling app. Offer one piece of specific, actionable advice " +
	"grounded in what the person has written. Speak directly to them. " +
	"Do not diagnose and do not mention that you are an AI. Keep it under 120 words."

// Eligibility is the result of the advice gate.
type Eligibility struct {
	Eligible       bool `json:"eligible"`
	NotesSinceLast int  `json:"notesSinceLast"`
	NotesRequired  int  `json:"notesRequired"`
}

// AdviceService gates and generates personalized advice.
type AdviceService struct {
	store    store.Store
	memories *MemoryService
	builder  *ContextBuilder
	gen      generator.Provider
	log      zerolog.Logger
}

func NewAdviceService(s store.Store, mem *MemoryService, cb *ContextBuilder, gen generator.Provider, log zerolog.Logger) *AdviceService {
	return &AdviceService{store: s, memories: mem, builder: cb, gen: gen, log: log}
}

// CheckEligibility counts notes written since the last advice. The gate
// fails closed: any storage error reports ineligible alongside the error.
func (s *AdviceService) CheckEligibility(ctx context.Context, userID string) (Eligibility, error) {
	out := Eligibility{NotesRequired: AdviceNoteThreshold}

	var since *model.Advice
	latest, err := s.store.Advice().Latest(ctx, userID)
	switch {
	case err == nil:
		since = latest
	case errors.Is(err, model.ErrNotFound):
		// First advice: every note counts.
	default:
		return out, err
	}

	var n int
	if since == nil {
		n, err = s.store.Notes().CountSince(ctx, userID, nil)
	} else {
		n, err = s.store.Notes().CountSince(ctx, userID, &since.CreationTime)
	}
	if err != nil {
		return out, err
	}

	out.NotesSinceLast = n
	out.Eligible = n >= AdviceNoteThreshold
	return out, nil
}

// RequestAdvice enqueues an advice generation task after checking the gate.
// The heavy lifting happens in the pipeline worker.
func (s *AdviceService) RequestAdvice(ctx context.Context, userID string) (*model.Task, error) {
	elig, err := s.CheckEligibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, errors.Wrapf(model.ErrValidation,
			"not enough new notes for advice: %d of %d", elig.NotesSinceLast, elig.NotesRequired)
	}
	return s.store.Tasks().Enqueue(ctx, &model.Task{
		UserID: userID,
		Op:     model.TaskGenerateAdvice,
	})
}

// GenerateAdvice runs the full pipeline for one user: fold pending notes
// into memories, build the context, ask the model, persist with provenance.
// Callers must hold the per-user lock so concurrent runs cannot double-count
// the same notes.
func (s *AdviceService) GenerateAdvice(ctx context.Context, userID string) (*model.Advice, error) {
	if _, err := s.memories.Rollup(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "memory rollup")
	}

	actx, err := s.builder.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	content, err := s.gen.Complete(ctx, adviceSystemPrompt, actx.Prompt(),
		generator.WithTemperature(adviceTemperature),
		generator.WithMaxTokens(adviceMaxTokens))
	if err != nil {
		return nil, errors.Wrap(err, "advice generation")
	}

	return s.store.Advice().Create(ctx, &model.Advice{
		UserID:          userID,
		Content:         content,
		TriggerType:     model.TriggerNoteCount,
		MemoryCount:     len(actx.Memories),
		NoteCount:       len(actx.RecentNotes),
		DominantEmotion: actx.DominantEmotion,
	})
}

func (s *AdviceService) LatestAdvice(ctx context.Context, userID string) (*model.Advice, error) {
	return s.store.Advice().Latest(ctx, userID)
}

func (s *AdviceService) ListAdvice(ctx context.Context, userID string, p model.Page) ([]*model.Advice, int, error) {
	return s.store.Advice().List(ctx, userID, p)
}

func (s *AdviceService) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return s.store.Tasks().Get(ctx, userID, taskID)
}
