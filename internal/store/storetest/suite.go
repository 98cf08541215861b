// Package storetest holds a driver-agnostic compliance suite for store.Store
// implementations. Each driver package runs it against a fresh database.
package storetest

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

// Factory returns a store backed by a clean database for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the compliance suite against the given factory.
func Run(t *testing.T, factory Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, factory(t)) })
	t.Run("Notes", func(t *testing.T) { testNotes(t, factory(t)) })
	t.Run("NoteWindowing", func(t *testing.T) { testNoteWindowing(t, factory(t)) })
	t.Run("Memories", func(t *testing.T) { testMemories(t, factory(t)) })
	t.Run("Advice", func(t *testing.T) { testAdvice(t, factory(t)) })
	t.Run("Quotes", func(t *testing.T) { testQuotes(t, factory(t)) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, factory(t)) })
	t.Run("UserLock", func(t *testing.T) { testUserLock(t, factory(t)) })
	t.Run("CascadeDelete", func(t *testing.T) { testCascadeDelete(t, factory(t)) })
}

func mustUser(t *testing.T, s store.Store, subject string) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &model.User{Subject: subject})
	require.NoError(t, err)
	return u
}

func mustNote(t *testing.T, s store.Store, userID, content string) *model.Note {
	t.Helper()
	n, err := s.Notes().Create(context.Background(), &model.Note{UserID: userID, Content: content})
	require.NoError(t, err)
	return n
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := mustUser(t, s, "firebase|alice")
	require.NotEmpty(t, u.UserID)
	assert.False(t, u.CreationTime.IsZero())

	got, err := s.Users().Get(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Subject, got.Subject)

	bySub, err := s.Users().GetBySubject(ctx, "firebase|alice")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, bySub.UserID)

	_, err = s.Users().GetBySubject(ctx, "firebase|nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Users().Delete(ctx, u.UserID))
	_, err = s.Users().Get(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, s.Users().Delete(ctx, u.UserID), model.ErrNotFound)
}

func testNotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|notes")

	n := mustNote(t, s, u.UserID, "first entry")
	require.NotEmpty(t, n.NoteID)
	assert.Nil(t, n.ClassifiedAt)
	assert.Zero(t, n.Emotions.Joy)

	got, err := s.Notes().GetByID(ctx, u.UserID, n.NoteID)
	require.NoError(t, err)
	assert.Equal(t, "first entry", got.Content)

	// Ownership is part of the key.
	other := mustUser(t, s, "firebase|other")
	_, err = s.Notes().GetByID(ctx, other.UserID, n.NoteID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	v := emotion.Vector{Joy: 0.9, Neutral: 0.1}
	at := time.Now().UTC()
	require.NoError(t, s.Notes().SetEmotions(ctx, n.NoteID, v, at))

	got, err = s.Notes().GetByID(ctx, u.UserID, n.NoteID)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, got.Emotions.Joy, 1e-9)
	require.NotNil(t, got.ClassifiedAt)

	// Editing the text clears the stale classification.
	updated, err := s.Notes().UpdateContent(ctx, u.UserID, n.NoteID, "revised entry")
	require.NoError(t, err)
	assert.Equal(t, "revised entry", updated.Content)
	assert.Nil(t, updated.ClassifiedAt)
	assert.Zero(t, updated.Emotions.Joy)

	_, err = s.Notes().UpdateContent(ctx, u.UserID, "does-not-exist", "x")
	assert.ErrorIs(t, err, model.ErrNotFound)

	mustNote(t, s, u.UserID, "second entry")
	mustNote(t, s, u.UserID, "third entry")

	page, total, err := s.Notes().List(ctx, u.UserID, model.Page{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "third entry", page[0].Content)

	page2, _, err := s.Notes().List(ctx, u.UserID, model.Page{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page2, 1)

	recent, err := s.Notes().ListRecent(ctx, u.UserID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third entry", recent[0].Content)

	require.NoError(t, s.Notes().Delete(ctx, u.UserID, n.NoteID))
	assert.ErrorIs(t, s.Notes().Delete(ctx, u.UserID, n.NoteID), model.ErrNotFound)
}

func testNoteWindowing(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|window")

	a := mustNote(t, s, u.UserID, "a")
	time.Sleep(5 * time.Millisecond)
	b := mustNote(t, s, u.UserID, "b")
	time.Sleep(5 * time.Millisecond)
	c := mustNote(t, s, u.UserID, "c")

	all, err := s.Notes().ListAfter(ctx, u.UserID, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, a.NoteID, all[0].NoteID, "oldest first")
	assert.Equal(t, c.NoteID, all[2].NoteID)

	// Strictly-after cut: the boundary note itself is excluded.
	after, err := s.Notes().ListAfter(ctx, u.UserID, &a.CreationTime, 10)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, b.NoteID, after[0].NoteID)

	n, err := s.Notes().CountSince(ctx, u.UserID, &a.CreationTime)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Notes().CountSince(ctx, u.UserID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	limited, err := s.Notes().ListAfter(ctx, u.UserID, nil, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, a.NoteID, limited[0].NoteID)
}

func testMemories(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|memories")

	_, err := s.Memories().Latest(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := s.Memories().Create(ctx, &model.Memory{
			UserID:             u.UserID,
			Summary:            "week in review",
			NoteCount:          3,
			FirstNoteTime:      base,
			LastNoteTime:       base.Add(30 * time.Minute),
			DominantEmotion:    emotion.Joy,
			EmotionalIntensity: 0.42,
		})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	latest, err := s.Memories().Latest(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, emotion.Joy, latest.DominantEmotion)
	assert.InDelta(t, 0.42, latest.EmotionalIntensity, 1e-9)
	assert.Nil(t, latest.Themes)

	recent, err := s.Memories().ListRecent(ctx, u.UserID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, latest.MemoryID, recent[0].MemoryID)

	page, total, err := s.Memories().List(ctx, u.UserID, model.Page{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 3)
}

func testAdvice(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|advice")

	_, err := s.Advice().Latest(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	first, err := s.Advice().Create(ctx, &model.Advice{
		UserID:          u.UserID,
		Content:         "take a walk",
		TriggerType:     model.TriggerNoteCount,
		MemoryCount:     2,
		NoteCount:       3,
		DominantEmotion: emotion.Sadness,
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	second, err := s.Advice().Create(ctx, &model.Advice{
		UserID:          u.UserID,
		Content:         "call a friend",
		TriggerType:     model.TriggerNoteCount,
		DominantEmotion: emotion.Neutral,
	})
	require.NoError(t, err)

	latest, err := s.Advice().Latest(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, second.AdviceID, latest.AdviceID)

	page, total, err := s.Advice().List(ctx, u.UserID, model.Page{Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, second.AdviceID, page[0].AdviceID)

	page2, _, err := s.Advice().List(ctx, u.UserID, model.Page{Page: 2, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, first.AdviceID, page2[0].AdviceID)
}

func testQuotes(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Quotes().Random(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	q, err := s.Quotes().Add(ctx, &model.Quote{Content: "what you seek is seeking you", Author: "Rumi"})
	require.NoError(t, err)
	assert.NotZero(t, q.QuoteID)

	got, err := s.Quotes().Random(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rumi", got.Author)
}

func testTasks(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|tasks")
	n := mustNote(t, s, u.UserID, "entry")

	tk, err := s.Tasks().Enqueue(ctx, &model.Task{
		UserID: u.UserID,
		Op:     model.TaskClassifyNote,
		NoteID: &n.NoteID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskPending, tk.Status)
	assert.Equal(t, 0, tk.AttemptCount)
	require.NotNil(t, tk.NoteID)

	got, err := s.Tasks().Get(ctx, u.UserID, tk.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskClassifyNote, got.Op)

	other := mustUser(t, s, "firebase|tasks2")
	_, err = s.Tasks().Get(ctx, other.UserID, tk.TaskID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	leased, err := s.Tasks().Lease(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, leased, 1)
	assert.Equal(t, tk.TaskID, leased[0].TaskID)

	// Leased tasks are invisible until the visibility timeout expires.
	again, err := s.Tasks().Lease(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, s.Tasks().Reschedule(ctx, tk.TaskID, 0, "upstream warming up"))
	retried, err := s.Tasks().Lease(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, retried, 1)
	assert.Equal(t, 1, retried[0].AttemptCount)
	require.NotNil(t, retried[0].LastError)
	assert.Equal(t, "upstream warming up", *retried[0].LastError)

	require.NoError(t, s.Tasks().MarkDone(ctx, tk.TaskID))
	got, err = s.Tasks().Get(ctx, u.UserID, tk.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, got.Status)
	assert.Nil(t, got.LastError)

	tk2, err := s.Tasks().Enqueue(ctx, &model.Task{UserID: u.UserID, Op: model.TaskGenerateAdvice})
	require.NoError(t, err)
	require.NoError(t, s.Tasks().MarkFailed(ctx, tk2.TaskID, "gave up after 3 attempts"))
	got, err = s.Tasks().Get(ctx, u.UserID, tk2.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskFailed, got.Status)

	// Done and failed tasks never lease.
	none, err := s.Tasks().Lease(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testUserLock(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|lock")

	var inside int
	done := make(chan struct{})
	entered := make(chan struct{})

	go func() {
		defer close(done)
		_ = s.WithUserLock(ctx, u.UserID, func(ctx context.Context) error {
			close(entered)
			time.Sleep(100 * time.Millisecond)
			inside++
			return nil
		})
	}()

	<-entered
	err := s.WithUserLock(ctx, u.UserID, func(ctx context.Context) error {
		// Must observe the first holder's write: proves mutual exclusion.
		assert.Equal(t, 1, inside)
		inside++
		return nil
	})
	require.NoError(t, err)
	<-done
	assert.Equal(t, 2, inside)
}

func testCascadeDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "firebase|cascade")
	n := mustNote(t, s, u.UserID, "entry")

	_, err := s.Memories().Create(ctx, &model.Memory{
		UserID: u.UserID, Summary: "s", NoteCount: 3,
		FirstNoteTime: time.Now().UTC(), LastNoteTime: time.Now().UTC(),
		DominantEmotion: emotion.Neutral,
	})
	require.NoError(t, err)
	_, err = s.Advice().Create(ctx, &model.Advice{
		UserID: u.UserID, Content: "c", TriggerType: model.TriggerNoteCount,
		DominantEmotion: emotion.Neutral,
	})
	require.NoError(t, err)
	_, err = s.Tasks().Enqueue(ctx, &model.Task{UserID: u.UserID, Op: model.TaskClassifyNote, NoteID: &n.NoteID})
	require.NoError(t, err)

	require.NoError(t, s.Users().Delete(ctx, u.UserID))

	_, err = s.Notes().GetByID(ctx, u.UserID, n.NoteID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Memories().Latest(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Advice().Latest(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
