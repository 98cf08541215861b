package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

func newAdviceService(st store.Store, gen *fakeProvider) *AdviceService {
	mem := NewMemoryService(st, gen, testLogger())
	cb := NewContextBuilder(st)
	return NewAdviceService(st, mem, cb, gen, testLogger())
}

func TestEligibilityFirstAdvice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := newAdviceService(st, &fakeProvider{})

	elig, err := svc.CheckEligibility(ctx, u.UserID)
	require.NoError(t, err)
	assert.False(t, elig.Eligible)
	assert.Equal(t, 0, elig.NotesSinceLast)
	assert.Equal(t, AdviceNoteThreshold, elig.NotesRequired)

	for i := 0; i < AdviceNoteThreshold; i++ {
		writeNote(t, st, u.UserID, "entry", emotion.Vector{Neutral: 1})
	}

	elig, err = svc.CheckEligibility(ctx, u.UserID)
	require.NoError(t, err)
	assert.True(t, elig.Eligible)
	assert.Equal(t, 3, elig.NotesSinceLast)
}

func TestEligibilityResetsAfterAdvice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := newAdviceService(st, &fakeProvider{})

	for i := 0; i < 3; i++ {
		writeNote(t, st, u.UserID, "entry", emotion.Vector{Joy: 1})
	}
	_, err := st.Advice().Create(ctx, &model.Advice{
		UserID: u.UserID, Content: "prior advice",
		TriggerType: model.TriggerNoteCount, DominantEmotion: emotion.Joy,
	})
	require.NoError(t, err)

	elig, err := svc.CheckEligibility(ctx, u.UserID)
	require.NoError(t, err)
	assert.False(t, elig.Eligible, "only notes after the last advice count")
	assert.Equal(t, 0, elig.NotesSinceLast)
}

func TestRequestAdviceGatesAndEnqueues(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := newAdviceService(st, &fakeProvider{})

	_, err := svc.RequestAdvice(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrValidation)

	for i := 0; i < 3; i++ {
		writeNote(t, st, u.UserID, "entry", emotion.Vector{Joy: 1})
	}

	task, err := svc.RequestAdvice(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskGenerateAdvice, task.Op)
	assert.Equal(t, model.TaskPending, task.Status)

	got, err := svc.GetTask(ctx, u.UserID, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, task.TaskID, got.TaskID)
}

func TestGenerateAdviceFullPipeline(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	gen := &fakeProvider{reply: "try a short walk before bed"}
	svc := newAdviceService(st, gen)

	for i := 0; i < 3; i++ {
		writeNote(t, st, u.UserID, "rough day", emotion.Vector{Sadness: 0.8, Neutral: 0.2})
	}

	a, err := svc.GenerateAdvice(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "try a short walk before bed", a.Content)
	assert.Equal(t, model.TriggerNoteCount, a.TriggerType)
	assert.Equal(t, 1, a.MemoryCount, "rollup folded the three notes first")
	assert.Equal(t, 3, a.NoteCount)
	assert.Equal(t, emotion.Sadness, a.DominantEmotion)

	// Two provider calls: one summary, one advice. The advice call carries
	// its tuned parameters.
	require.Equal(t, 2, gen.calls)
	last := gen.options[len(gen.options)-1]
	assert.InDelta(t, adviceTemperature, last.Temperature, 1e-6)
	assert.Equal(t, adviceMaxTokens, last.MaxTokens)

	latest, err := svc.LatestAdvice(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, a.AdviceID, latest.AdviceID)
}

func TestGenerateAdviceNoContext(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := newAdviceService(st, &fakeProvider{})

	_, err := svc.GenerateAdvice(context.Background(), u.UserID)
	assert.ErrorIs(t, err, model.ErrNoContext)
}

func TestGenerateAdviceProviderFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := newAdviceService(st, &fakeProvider{fail: true})

	writeNote(t, st, u.UserID, "entry", emotion.Vector{Joy: 1})

	_, err := svc.GenerateAdvice(ctx, u.UserID)
	require.Error(t, err)

	_, err = svc.LatestAdvice(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAdvicePromptIncludesEvidence(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)

	writeNote(t, st, u.UserID, "nervous about the interview", emotion.Vector{Fear: 0.9, Neutral: 0.1})

	cb := NewContextBuilder(st)
	actx, err := cb.Build(ctx, u.UserID)
	require.NoError(t, err)

	prompt := actx.Prompt()
	assert.Contains(t, prompt, "nervous about the interview")
	assert.Contains(t, prompt, "fear")
	assert.Equal(t, emotion.Fear, actx.DominantEmotion)
}

func TestContextBuilderNeutralWhenUnclassified(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)

	_, err := st.Notes().Create(ctx, &model.Note{UserID: u.UserID, Content: "fresh entry"})
	require.NoError(t, err)

	cb := NewContextBuilder(st)
	actx, err := cb.Build(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, emotion.Neutral, actx.DominantEmotion)
	assert.InDelta(t, 1.0, actx.AverageEmotions.Neutral, 1e-9)
}
