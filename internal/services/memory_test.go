package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

func writeNote(t *testing.T, st store.Store, userID, content string, v emotion.Vector) *model.Note {
	t.Helper()
	ctx := context.Background()
	n, err := st.Notes().Create(ctx, &model.Note{UserID: userID, Content: content})
	require.NoError(t, err)
	require.NoError(t, st.Notes().SetEmotions(ctx, n.NoteID, v, time.Now().UTC()))
	time.Sleep(5 * time.Millisecond)
	return n
}

func TestRollupBelowThresholdCreatesNothing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewMemoryService(st, &fakeProvider{}, testLogger())

	writeNote(t, st, u.UserID, "one", emotion.Vector{Joy: 1})
	writeNote(t, st, u.UserID, "two", emotion.Vector{Joy: 1})

	created, err := svc.Rollup(ctx, u.UserID)
	require.NoError(t, err)
	assert.Empty(t, created)

	n, err := svc.PendingNoteCount(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRollupCreatesMemoryPerThreeNotes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	gen := &fakeProvider{reply: "a calm week of steady progress"}
	svc := NewMemoryService(st, gen, testLogger())

	first := writeNote(t, st, u.UserID, "one", emotion.Vector{Joy: 0.9, Neutral: 0.1})
	writeNote(t, st, u.UserID, "two", emotion.Vector{Joy: 0.6, Sadness: 0.4})
	third := writeNote(t, st, u.UserID, "three", emotion.Vector{Joy: 0.3, Neutral: 0.7})
	writeNote(t, st, u.UserID, "four", emotion.Vector{Fear: 1})

	created, err := svc.Rollup(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, created, 1, "only one full batch of three exists")

	m := created[0]
	assert.Equal(t, 3, m.NoteCount)
	assert.Equal(t, "a calm week of steady progress", m.Summary)
	assert.Equal(t, first.CreationTime.Unix(), m.FirstNoteTime.Unix())
	assert.Equal(t, third.CreationTime.Unix(), m.LastNoteTime.Unix())
	assert.Equal(t, emotion.Joy, m.DominantEmotion)
	assert.InDelta(t, 0.6, m.EmotionalIntensity, 0.001)
	require.NotNil(t, m.Themes)
	assert.Equal(t, "joy, neutral", *m.Themes)

	// The fourth note remains pending for the next batch.
	pending, err := svc.PendingNoteCount(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestRollupDrainsMultipleBatches(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewMemoryService(st, &fakeProvider{}, testLogger())

	for i := 0; i < 7; i++ {
		writeNote(t, st, u.UserID, "entry", emotion.Vector{Neutral: 1})
	}

	created, err := svc.Rollup(ctx, u.UserID)
	require.NoError(t, err)
	assert.Len(t, created, 2)

	pending, err := svc.PendingNoteCount(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	// Batches are disjoint and contiguous.
	assert.True(t, created[0].LastNoteTime.Before(created[1].FirstNoteTime))
}

func TestRollupSummaryFailureKeepsBatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewMemoryService(st, &fakeProvider{fail: true}, testLogger())

	for i := 0; i < 3; i++ {
		writeNote(t, st, u.UserID, "entry", emotion.Vector{Sadness: 1})
	}

	created, err := svc.Rollup(ctx, u.UserID)
	require.NoError(t, err, "summary failure must not block aggregation")
	require.Len(t, created, 1)
	assert.Empty(t, created[0].Summary, "best-effort summary stays empty on failure")
	assert.Equal(t, 3, created[0].NoteCount)
	assert.Equal(t, emotion.Sadness, created[0].DominantEmotion)
}

func TestRollupUnclassifiedNotesHaveNoThemes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewMemoryService(st, &fakeProvider{}, testLogger())

	for i := 0; i < 3; i++ {
		_, err := st.Notes().Create(ctx, &model.Note{UserID: u.UserID, Content: "entry"})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	created, err := svc.Rollup(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].Themes)
}
