package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

const (
	// MaxMemoriesForAdvice bounds how many recent memories feed the prompt.
	MaxMemoriesForAdvice = 5
	// RecentNotesForAdvice bounds how many raw recent notes feed the prompt.
	RecentNotesForAdvice = 3
)

// AdviceContext is the assembled evidence an advice prompt is built from.
type AdviceContext struct {
	Memories        []*model.Memory
	RecentNotes     []*model.Note
	AverageEmotions emotion.Vector
	DominantEmotion emotion.Label
}

// ContextBuilder gathers a user's recent memories and notes into a prompt
// context. It is deliberately read-only.
type ContextBuilder struct {
	store store.Store
}

func NewContextBuilder(s store.Store) *ContextBuilder {
	return &ContextBuilder{store: s}
}

// Build returns model.ErrNoContext when the user has neither memories nor
// notes; advice generated from nothing would be generic filler.
func (b *ContextBuilder) Build(ctx context.Context, userID string) (*AdviceContext, error) {
	mems, err := b.store.Memories().ListRecent(ctx, userID, MaxMemoriesForAdvice)
	if err != nil {
		return nil, err
	}
	notes, err := b.store.Notes().ListRecent(ctx, userID, RecentNotesForAdvice)
	if err != nil {
		return nil, err
	}
	if len(mems) == 0 && len(notes) == 0 {
		return nil, model.ErrNoContext
	}

	var vecs []emotion.Vector
	for _, n := range notes {
		if n.ClassifiedAt != nil {
			vecs = append(vecs, n.Emotions)
		}
	}
	avg := emotion.NeutralFallback()
	if len(vecs) > 0 {
		avg = emotion.Average(vecs)
	}
	dominant, _ := avg.Dominant()

	return &AdviceContext{
		Memories:        mems,
		RecentNotes:     notes,
		AverageEmotions: avg,
		DominantEmotion: dominant,
	}, nil
}

// Prompt renders the context as the user message for the advice model.
func (c *AdviceContext) Prompt() string {
	var b strings.Builder

	if len(c.Memories) > 0 {
		b.WriteString("Longer-term patterns from past journal entries:\n")
		for _, m := range c.Memories {
			fmt.Fprintf(&b, "- %s (dominant emotion: %s)\n", m.Summary, m.DominantEmotion)
		}
		b.WriteString("\n")
	}
	if len(c.RecentNotes) > 0 {
		b.WriteString("Most recent journal entries, newest first:\n")
		for _, n := range c.RecentNotes {
			fmt.Fprintf(&b, "- %s\n", n.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Overall mood lately: %s.\n", c.DominantEmotion)
	return b.String()
}
