package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
)

func TestCreateNoteEnqueuesClassification(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewNoteService(st)

	n, err := svc.CreateNote(ctx, u.UserID, "long day at the lab")
	require.NoError(t, err)
	assert.Nil(t, n.ClassifiedAt)

	tasks, err := st.Tasks().Lease(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskClassifyNote, tasks[0].Op)
	require.NotNil(t, tasks[0].NoteID)
	assert.Equal(t, n.NoteID, *tasks[0].NoteID)
}

func TestCreateNoteRejectsBlankContent(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewNoteService(st)

	_, err := svc.CreateNote(context.Background(), u.UserID, "   \n\t ")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestUpdateNoteClearsAndReclassifies(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewNoteService(st)

	n, err := svc.CreateNote(ctx, u.UserID, "v1")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyClassification(ctx, n.NoteID, emotion.Vector{Joy: 1}, time.Now().UTC()))

	updated, err := svc.UpdateNote(ctx, u.UserID, n.NoteID, "v2")
	require.NoError(t, err)
	assert.Nil(t, updated.ClassifiedAt)
	assert.Zero(t, updated.Emotions.Joy)

	// One task from create plus one from the edit.
	tasks, err := st.Tasks().Lease(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestUpdateNoteUnknownID(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewNoteService(st)

	_, err := svc.UpdateNote(context.Background(), u.UserID, "missing", "content")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestNoteOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestUser(t, st)
	svc := NewNoteService(st)

	bob, err := st.Users().Create(ctx, &model.User{Subject: "firebase|bob"})
	require.NoError(t, err)

	n, err := svc.CreateNote(ctx, alice.UserID, "private thoughts")
	require.NoError(t, err)

	_, err = svc.GetNote(ctx, bob.UserID, n.NoteID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteNote(ctx, bob.UserID, n.NoteID), model.ErrNotFound)
}
