package model

import (
	"time"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
)

// User represents an account resolved from the external identity provider.
type User struct {
	UserID       string    `json:"userId"`
	Subject      string    `json:"subject"` // identity-provider subject (unique)
	CreationTime time.Time `json:"creationTime"`
}

// Note is a user-submitted journal entry. Emotions is populated exactly once
// by the classification pipeline; ClassifiedAt is nil until then. A content
// update clears ClassifiedAt and re-triggers classification.
type Note struct {
	NoteID       string         `json:"noteId"`
	UserID       string         `json:"userId"`
	Content      string         `json:"content"`
	Emotions     emotion.Vector `json:"emotions"`
	ClassifiedAt *time.Time     `json:"classifiedAt,omitempty"`
	CreationTime time.Time      `json:"creationTime"`
	UpdateTime   time.Time      `json:"updateTime"`
}

// Memory is an immutable summary of a contiguous batch of notes.
type Memory struct {
	MemoryID           string        `json:"memoryId"`
	UserID             string        `json:"userId"`
	Summary            string        `json:"summary"`
	NoteCount          int           `json:"noteCount"`
	FirstNoteTime      time.Time     `json:"firstNoteTime"`
	LastNoteTime       time.Time     `json:"lastNoteTime"`
	DominantEmotion    emotion.Label `json:"dominantEmotion"`
	EmotionalIntensity float64       `json:"emotionalIntensity"`
	Themes             *string       `json:"themes,omitempty"`
	CreationTime       time.Time     `json:"creationTime"`
}

// Advice is a generated, immutable advice artifact with provenance counts.
type Advice struct {
	AdviceID        string        `json:"adviceId"`
	UserID          string        `json:"userId"`
	Content         string        `json:"content"`
	TriggerType     string        `json:"triggerType"`
	MemoryCount     int           `json:"memoryCount"`
	NoteCount       int           `json:"noteCount"`
	DominantEmotion emotion.Label `json:"dominantEmotion"`
	CreationTime    time.Time     `json:"creationTime"`
}

// TriggerNoteCount is the only trigger type currently produced.
const TriggerNoteCount = "note_count"

// Quote is an inspirational quote served at random.
type Quote struct {
	QuoteID int64  `json:"quoteId"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Task op names processed by the pipeline worker.
const (
	TaskClassifyNote   = "classify_note"
	TaskGenerateAdvice = "generate_advice"
)

// Task statuses.
const (
	TaskPending = "pending"
	TaskDone    = "done"
	TaskFailed  = "failed"
)

// Task is a queued background job. Clients poll its status by id.
type Task struct {
	TaskID        string    `json:"taskId"`
	UserID        string    `json:"userId"`
	Op            string    `json:"op"`
	NoteID        *string   `json:"noteId,omitempty"`
	Status        string    `json:"status"`
	AttemptCount  int       `json:"attemptCount"`
	NextAttemptAt time.Time `json:"-"`
	LastError     *string   `json:"lastError,omitempty"`
	CreationTime  time.Time `json:"creationTime"`
	UpdateTime    time.Time `json:"updateTime"`
}

// Page captures pagination parameters for history listings.
type Page struct {
	Page    int
	PerPage int
}

// Normalize applies the defaults used by the history endpoints.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 10
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}
