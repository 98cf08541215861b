package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// NoteService orchestrates journal note use cases. Writes also enqueue a
// classification task; the pipeline worker fills in emotions asynchronously.
type NoteService struct {
	store store.Store
}

func NewNoteService(s store.Store) *NoteService {
	return &NoteService{store: s}
}

func (s *NoteService) CreateNote(ctx context.Context, userID, content string) (*model.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.Wrap(model.ErrValidation, "note content must not be empty")
	}

	n, err := s.store.Notes().Create(ctx, &model.Note{UserID: userID, Content: content})
	if err != nil {
		return nil, err
	}
	if err := s.enqueueClassify(ctx, userID, n.NoteID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) UpdateNote(ctx context.Context, userID, noteID, content string) (*model.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.Wrap(model.ErrValidation, "note content must not be empty")
	}

	n, err := s.store.Notes().UpdateContent(ctx, userID, noteID, content)
	if err != nil {
		return nil, err
	}
	// The edit cleared the old classification; schedule a fresh one.
	if err := s.enqueueClassify(ctx, userID, n.NoteID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) enqueueClassify(ctx context.Context, userID, noteID string) error {
	_, err := s.store.Tasks().Enqueue(ctx, &model.Task{
		UserID: userID,
		Op:     model.TaskClassifyNote,
		NoteID: &noteID,
	})
	return errors.Wrap(err, "enqueue classification")
}

func (s *NoteService) GetNote(ctx context.Context, userID, noteID string) (*model.Note, error) {
	return s.store.Notes().GetByID(ctx, userID, noteID)
}

func (s *NoteService) ListNotes(ctx context.Context, userID string, p model.Page) ([]*model.Note, int, error) {
	return s.store.Notes().List(ctx, userID, p)
}

func (s *NoteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	return s.store.Notes().Delete(ctx, userID, noteID)
}

// ApplyClassification writes a classification result back onto the note.
// Called by the pipeline worker, never by request handlers.
func (s *NoteService) ApplyClassification(ctx context.Context, noteID string, v emotion.Vector, at time.Time) error {
	return s.store.Notes().SetEmotions(ctx, noteID, v, at)
}
