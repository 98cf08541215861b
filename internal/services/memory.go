package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/generator"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// NotesPerMemory is the batch size for aggregation: every memory summarizes
// exactly this many contiguous notes, oldest first.
const NotesPerMemory = 3

const summarySystemPrompt = "You summarize personal journal entries. " +
	"Write a short third-person summary of the period the entries cover. " +
	"Be concrete and kind. Two sentences at most."

// MemoryService folds batches of un-summarized notes into memories.
type MemoryService struct {
	store store.Store
	gen   generator.Provider
	log   zerolog.Logger
}

func NewMemoryService(s store.Store, gen generator.Provider, log zerolog.Logger) *MemoryService {
	return &MemoryService{store: s, gen: gen, log: log}
}

// ListMemories returns the memory history newest-first.
func (s *MemoryService) ListMemories(ctx context.Context, userID string, p model.Page) ([]*model.Memory, int, error) {
	return s.store.Memories().List(ctx, userID, p)
}

// summarizedThrough returns the creation time of the newest summarized note,
// or nil when the user has no memories yet.
func (s *MemoryService) summarizedThrough(ctx context.Context, userID string) (*model.Memory, error) {
	latest, err := s.store.Memories().Latest(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// PendingNoteCount reports how many notes are waiting to be summarized.
func (s *MemoryService) PendingNoteCount(ctx context.Context, userID string) (int, error) {
	latest, err := s.summarizedThrough(ctx, userID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return s.store.Notes().CountSince(ctx, userID, nil)
	}
	return s.store.Notes().CountSince(ctx, userID, &latest.LastNoteTime)
}

// Rollup creates memories until fewer than NotesPerMemory notes remain
// un-summarized. It returns the memories created, oldest first.
func (s *MemoryService) Rollup(ctx context.Context, userID string) ([]*model.Memory, error) {
	var created []*model.Memory
	for {
		latest, err := s.summarizedThrough(ctx, userID)
		if err != nil {
			return created, err
		}
		var notes []*model.Note
		if latest == nil {
			notes, err = s.store.Notes().ListAfter(ctx, userID, nil, NotesPerMemory)
		} else {
			notes, err = s.store.Notes().ListAfter(ctx, userID, &latest.LastNoteTime, NotesPerMemory)
		}
		if err != nil {
			return created, err
		}
		if len(notes) < NotesPerMemory {
			return created, nil
		}

		m, err := s.createFromBatch(ctx, userID, notes)
		if err != nil {
			return created, err
		}
		created = append(created, m)
	}
}

func (s *MemoryService) createFromBatch(ctx context.Context, userID string, notes []*model.Note) (*model.Memory, error) {
	vecs := make([]emotion.Vector, len(notes))
	for i, n := range notes {
		vecs[i] = n.Emotions
	}
	avg := emotion.Average(vecs)
	dominant, intensity := avg.Dominant()

	summary := s.summarize(ctx, notes)
	themes := batchThemes(notes)

	return s.store.Memories().Create(ctx, &model.Memory{
		UserID:             userID,
		Summary:            summary,
		NoteCount:          len(notes),
		FirstNoteTime:      notes[0].CreationTime,
		LastNoteTime:       notes[len(notes)-1].CreationTime,
		DominantEmotion:    dominant,
		EmotionalIntensity: emotion.Round3(intensity),
		Themes:             themes,
	})
}

// summarize asks the model for a summary. Summaries are best-effort: on
// failure the memory keeps an empty summary so batch accounting never stalls.
func (s *MemoryService) summarize(ctx context.Context, notes []*model.Note) string {
	var b strings.Builder
	for i, n := range notes {
		fmt.Fprintf(&b, "Entry %d (%s):\n%s\n\n", i+1, n.CreationTime.Format("Jan 2"), n.Content)
	}

	out, err := s.gen.Complete(ctx, summarySystemPrompt, b.String(),
		generator.WithTemperature(0.5), generator.WithMaxTokens(150))
	if err != nil {
		s.log.Warn().Err(err).Msg("memory summary generation failed, storing empty summary")
		return ""
	}
	return out
}

// batchThemes lists the distinct dominant emotions across the batch.
func batchThemes(notes []*model.Note) *string {
	seen := map[emotion.Label]bool{}
	for _, n := range notes {
		if n.ClassifiedAt == nil {
			continue
		}
		d, _ := n.Emotions.Dominant()
		seen[d] = true
	}
	var parts []string
	for _, l := range emotion.Labels() {
		if seen[l] {
			parts = append(parts, string(l))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, ", ")
	return &joined
}
