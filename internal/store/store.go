package store

import (
	"context"
	"time"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
)

// Store exposes persistence operations required by the services and the
// pipeline worker. Implementations live under internal/store/<driver>/.
type Store interface {
	Users() Users
	Notes() Notes
	Memories() Memories
	Advice() Advice
	Quotes() Quotes
	Tasks() Tasks

	// WithUserLock runs fn while holding an exclusive per-user lock. The
	// pipeline worker wraps "read notes -> decide eligibility -> write
	// memory/advice" in it so two concurrent runs cannot double-count the
	// same note batch.
	WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error

	// HealthPing reports backend connectivity.
	HealthPing(ctx context.Context) error
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	// Delete removes the user and cascades to notes, memories, advice and
	// tasks in a single transaction.
	Delete(ctx context.Context, userID string) error
}

type Notes interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	GetByID(ctx context.Context, userID, noteID string) (*model.Note, error)
	// List returns notes newest-first with the total count for pagination.
	List(ctx context.Context, userID string, p model.Page) ([]*model.Note, int, error)
	// ListRecent returns up to limit notes newest-first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.Note, error)
	// ListAfter returns up to limit notes created strictly after the given
	// time (all notes when after is nil), oldest-first. This is the
	// un-summarized slice consumed by the memory aggregator.
	ListAfter(ctx context.Context, userID string, after *time.Time, limit int) ([]*model.Note, error)
	// CountSince counts notes created strictly after since (all when nil).
	CountSince(ctx context.Context, userID string, since *time.Time) (int, error)
	// UpdateContent replaces the note text and clears its classification.
	UpdateContent(ctx context.Context, userID, noteID, content string) (*model.Note, error)
	// SetEmotions writes the classification result back onto the note.
	SetEmotions(ctx context.Context, noteID string, v emotion.Vector, at time.Time) error
	Delete(ctx context.Context, userID, noteID string) error
}

type Memories interface {
	Create(ctx context.Context, m *model.Memory) (*model.Memory, error)
	// Latest returns the most recent memory or model.ErrNotFound.
	Latest(ctx context.Context, userID string) (*model.Memory, error)
	// ListRecent returns up to limit memories newest-first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.Memory, error)
	List(ctx context.Context, userID string, p model.Page) ([]*model.Memory, int, error)
}

type Advice interface {
	Create(ctx context.Context, a *model.Advice) (*model.Advice, error)
	// Latest returns the most recent advice or model.ErrNotFound.
	Latest(ctx context.Context, userID string) (*model.Advice, error)
	List(ctx context.Context, userID string, p model.Page) ([]*model.Advice, int, error)
}

type Quotes interface {
	Add(ctx context.Context, q *model.Quote) (*model.Quote, error)
	// Random returns a uniformly random quote or model.ErrNotFound when the
	// table is empty.
	Random(ctx context.Context) (*model.Quote, error)
}

type Tasks interface {
	Enqueue(ctx context.Context, t *model.Task) (*model.Task, error)
	Get(ctx context.Context, userID, taskID string) (*model.Task, error)
	// Lease atomically claims up to limit due pending tasks. Claimed tasks
	// become invisible for the visibility timeout, so a crashed worker's
	// lease expires rather than wedging the queue.
	Lease(ctx context.Context, limit int, visibility time.Duration) ([]*model.Task, error)
	MarkDone(ctx context.Context, taskID string) error
	// MarkFailed records a terminal failure.
	MarkFailed(ctx context.Context, taskID, reason string) error
	// Reschedule re-enqueues the task after delay, incrementing its attempt
	// count. Used for cooperative retry backoff.
	Reschedule(ctx context.Context, taskID string, delay time.Duration, reason string) error
}
