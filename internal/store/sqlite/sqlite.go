// Package sqlite implements store.Store on modernc.org/sqlite for the local
// build target and for tests that need a real database without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// Open opens (or creates) a SQLite database at path with WAL mode and
// foreign keys enabled, and bootstraps the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// under concurrent use from the server and the worker.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := bootstrap(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB wraps an existing connection (used by tests).
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := bootstrap(db); err != nil {
		return nil, err
	}
	return &liteStore{db: db}, nil
}

func bootstrap(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id       TEXT PRIMARY KEY,
    subject       TEXT NOT NULL UNIQUE,
    creation_time TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS notes (
    note_id       TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    content       TEXT NOT NULL,
    anger REAL NOT NULL DEFAULT 0, disgust REAL NOT NULL DEFAULT 0,
    fear REAL NOT NULL DEFAULT 0, joy REAL NOT NULL DEFAULT 0,
    neutral REAL NOT NULL DEFAULT 0, sadness REAL NOT NULL DEFAULT 0,
    surprise REAL NOT NULL DEFAULT 0,
    classified_at TIMESTAMP,
    creation_time TIMESTAMP NOT NULL,
    update_time   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes (user_id, creation_time);
CREATE TABLE IF NOT EXISTS memories (
    memory_id           TEXT PRIMARY KEY,
    user_id             TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    summary             TEXT NOT NULL,
    note_count          INTEGER NOT NULL,
    first_note_time     TIMESTAMP NOT NULL,
    last_note_time      TIMESTAMP NOT NULL,
    dominant_emotion    TEXT NOT NULL,
    emotional_intensity REAL NOT NULL DEFAULT 0,
    themes              TEXT,
    creation_time       TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS advice (
    advice_id        TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    content          TEXT NOT NULL,
    trigger_type     TEXT NOT NULL DEFAULT 'note_count',
    memory_count     INTEGER NOT NULL DEFAULT 0,
    note_count       INTEGER NOT NULL DEFAULT 0,
    dominant_emotion TEXT NOT NULL DEFAULT 'neutral',
    creation_time    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS quotes (
    quote_id INTEGER PRIMARY KEY AUTOINCREMENT,
    content  TEXT NOT NULL,
    author   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
    task_id         TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    op              TEXT NOT NULL,
    note_id         TEXT,
    status          TEXT NOT NULL DEFAULT 'pending',
    attempt_count   INTEGER NOT NULL DEFAULT 0,
    next_attempt_at TIMESTAMP NOT NULL,
    last_error      TEXT,
    creation_time   TIMESTAMP NOT NULL,
    update_time     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks (status, next_attempt_at);
`

type liteStore struct {
	db    *sql.DB
	locks sync.Map // userID -> *sync.Mutex
}

func (s *liteStore) Users() store.Users       { return &users{db: s.db} }
func (s *liteStore) Notes() store.Notes       { return &notes{db: s.db} }
func (s *liteStore) Memories() store.Memories { return &memories{db: s.db} }
func (s *liteStore) Advice() store.Advice     { return &advice{db: s.db} }
func (s *liteStore) Quotes() store.Quotes     { return &quotes{db: s.db} }
func (s *liteStore) Tasks() store.Tasks       { return &tasks{db: s.db} }

func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithUserLock uses an in-process mutex per user. SQLite deployments run a
// single process, so a process-local lock is sufficient.
func (s *liteStore) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func now() time.Time { return time.Now().UTC() }

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	created := now()
	if _, err := u.db.ExecContext(ctx,
		`INSERT INTO users (user_id, subject, creation_time) VALUES (?,?,?)`,
		id, m.Subject, created); err != nil {
		return nil, err
	}
	return &model.User{UserID: id, Subject: m.Subject, CreationTime: created}, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx,
		`SELECT user_id, subject, creation_time FROM users WHERE user_id=?`, userID)
	if err := row.Scan(&out.UserID, &out.Subject, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (u *users) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx,
		`SELECT user_id, subject, creation_time FROM users WHERE subject=?`, subject)
	if err := row.Scan(&out.UserID, &out.Subject, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM tasks WHERE user_id=?`,
		`DELETE FROM advice WHERE user_id=?`,
		`DELETE FROM memories WHERE user_id=?`,
		`DELETE FROM notes WHERE user_id=?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id=?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

// --- Notes ---

type notes struct{ db *sql.DB }

const noteColumns = `note_id, user_id, content,
    anger, disgust, fear, joy, neutral, sadness, surprise,
    classified_at, creation_time, update_time`

func scanNote(row interface{ Scan(...interface{}) error }) (*model.Note, error) {
	var n model.Note
	if err := row.Scan(
		&n.NoteID, &n.UserID, &n.Content,
		&n.Emotions.Anger, &n.Emotions.Disgust, &n.Emotions.Fear, &n.Emotions.Joy,
		&n.Emotions.Neutral, &n.Emotions.Sadness, &n.Emotions.Surprise,
		&n.ClassifiedAt, &n.CreationTime, &n.UpdateTime,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *notes) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	id := n.NoteID
	if id == "" {
		id = uuid.New().String()
	}
	created := now()
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO notes (note_id, user_id, content, creation_time, update_time)
        VALUES (?,?,?,?,?)
    `, id, n.UserID, n.Content, created, created); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *notes) get(ctx context.Context, noteID string) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE note_id=?`, noteID)
	n, err := scanNote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *notes) GetByID(ctx context.Context, userID, noteID string) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id=? AND note_id=?`, userID, noteID)
	n, err := scanNote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *notes) List(ctx context.Context, userID string, p model.Page) ([]*model.Note, int, error) {
	p = p.Normalize()
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id=?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+noteColumns+` FROM notes
        WHERE user_id=?
        ORDER BY creation_time DESC, note_id DESC
        LIMIT ? OFFSET ?
    `, userID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, n)
	}
	return res, total, rows.Err()
}

func (s *notes) ListRecent(ctx context.Context, userID string, limit int) ([]*model.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+noteColumns+` FROM notes
        WHERE user_id=?
        ORDER BY creation_time DESC, note_id DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

func (s *notes) ListAfter(ctx context.Context, userID string, after *time.Time, limit int) ([]*model.Note, error) {
	q := `SELECT ` + noteColumns + ` FROM notes WHERE user_id=?`
	args := []interface{}{userID}
	if after != nil {
		q += ` AND creation_time > ?`
		args = append(args, *after)
	}
	q += ` ORDER BY creation_time ASC, note_id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

func (s *notes) CountSince(ctx context.Context, userID string, since *time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM notes WHERE user_id=?`
	args := []interface{}{userID}
	if since != nil {
		q += ` AND creation_time > ?`
		args = append(args, *since)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *notes) UpdateContent(ctx context.Context, userID, noteID, content string) (*model.Note, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE notes
        SET content=?,
            anger=0, disgust=0, fear=0, joy=0, neutral=0, sadness=0, surprise=0,
            classified_at=NULL,
            update_time=?
        WHERE user_id=? AND note_id=?
    `, content, now(), userID, noteID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return s.get(ctx, noteID)
}

func (s *notes) SetEmotions(ctx context.Context, noteID string, v emotion.Vector, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE notes
        SET anger=?, disgust=?, fear=?, joy=?, neutral=?, sadness=?, surprise=?,
            classified_at=?, update_time=?
        WHERE note_id=?
    `, v.Anger, v.Disgust, v.Fear, v.Joy, v.Neutral, v.Sadness, v.Surprise, at, now(), noteID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *notes) Delete(ctx context.Context, userID, noteID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id=? AND note_id=?`, userID, noteID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Memories ---

type memories struct{ db *sql.DB }

const memoryColumns = `memory_id, user_id, summary, note_count,
    first_note_time, last_note_time, dominant_emotion, emotional_intensity,
    themes, creation_time`

func scanMemory(row interface{ Scan(...interface{}) error }) (*model.Memory, error) {
	var m model.Memory
	if err := row.Scan(
		&m.MemoryID, &m.UserID, &m.Summary, &m.NoteCount,
		&m.FirstNoteTime, &m.LastNoteTime, &m.DominantEmotion, &m.EmotionalIntensity,
		&m.Themes, &m.CreationTime,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *memories) Create(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	id := m.MemoryID
	if id == "" {
		id = uuid.New().String()
	}
	created := now()
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO memories (memory_id, user_id, summary, note_count,
            first_note_time, last_note_time, dominant_emotion, emotional_intensity,
            themes, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.Summary, m.NoteCount,
		m.FirstNoteTime, m.LastNoteTime, string(m.DominantEmotion), m.EmotionalIntensity,
		m.Themes, created); err != nil {
		return nil, err
	}
	out := *m
	out.MemoryID = id
	out.CreationTime = created
	return &out, nil
}

func (s *memories) Latest(ctx context.Context, userID string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+memoryColumns+` FROM memories
        WHERE user_id=?
        ORDER BY creation_time DESC, memory_id DESC
        LIMIT 1
    `, userID)
	m, err := scanMemory(row)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *memories) ListRecent(ctx context.Context, userID string, limit int) ([]*model.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+memoryColumns+` FROM memories
        WHERE user_id=?
        ORDER BY creation_time DESC, memory_id DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *memories) List(ctx context.Context, userID string, p model.Page) ([]*model.Memory, int, error) {
	p = p.Normalize()
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE user_id=?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+memoryColumns+` FROM memories
        WHERE user_id=?
        ORDER BY creation_time DESC, memory_id DESC
        LIMIT ? OFFSET ?
    `, userID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, m)
	}
	return res, total, rows.Err()
}

// --- Advice ---

type advice struct{ db *sql.DB }

const adviceColumns = `advice_id, user_id, content, trigger_type,
    memory_count, note_count, dominant_emotion, creation_time`

func scanAdvice(row interface{ Scan(...interface{}) error }) (*model.Advice, error) {
	var a model.Advice
	if err := row.Scan(
		&a.AdviceID, &a.UserID, &a.Content, &a.TriggerType,
		&a.MemoryCount, &a.NoteCount, &a.DominantEmotion, &a.CreationTime,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *advice) Create(ctx context.Context, a *model.Advice) (*model.Advice, error) {
	id := a.AdviceID
	if id == "" {
		id = uuid.New().String()
	}
	created := now()
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO advice (advice_id, user_id, content, trigger_type,
            memory_count, note_count, dominant_emotion, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
    `, id, a.UserID, a.Content, a.TriggerType,
		a.MemoryCount, a.NoteCount, string(a.DominantEmotion), created); err != nil {
		return nil, err
	}
	out := *a
	out.AdviceID = id
	out.CreationTime = created
	return &out, nil
}

func (s *advice) Latest(ctx context.Context, userID string) (*model.Advice, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+adviceColumns+` FROM advice
        WHERE user_id=?
        ORDER BY creation_time DESC, advice_id DESC
        LIMIT 1
    `, userID)
	a, err := scanAdvice(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *advice) List(ctx context.Context, userID string, p model.Page) ([]*model.Advice, int, error) {
	p = p.Normalize()
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM advice WHERE user_id=?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+adviceColumns+` FROM advice
        WHERE user_id=?
        ORDER BY creation_time DESC, advice_id DESC
        LIMIT ? OFFSET ?
    `, userID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Advice
	for rows.Next() {
		a, err := scanAdvice(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, a)
	}
	return res, total, rows.Err()
}

// --- Quotes ---

type quotes struct{ db *sql.DB }

func (s *quotes) Add(ctx context.Context, q *model.Quote) (*model.Quote, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (content, author) VALUES (?,?)`, q.Content, q.Author)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *q
	out.QuoteID = id
	return &out, nil
}

func (s *quotes) Random(ctx context.Context) (*model.Quote, error) {
	var q model.Quote
	row := s.db.QueryRowContext(ctx,
		`SELECT quote_id, content, author FROM quotes ORDER BY random() LIMIT 1`)
	if err := row.Scan(&q.QuoteID, &q.Content, &q.Author); err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// --- Tasks ---

type tasks struct{ db *sql.DB }

const taskColumns = `task_id, user_id, op, note_id, status, attempt_count,
    next_attempt_at, last_error, creation_time, update_time`

func scanTask(row interface{ Scan(...interface{}) error }) (*model.Task, error) {
	var t model.Task
	if err := row.Scan(
		&t.TaskID, &t.UserID, &t.Op, &t.NoteID, &t.Status, &t.AttemptCount,
		&t.NextAttemptAt, &t.LastError, &t.CreationTime, &t.UpdateTime,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *tasks) Enqueue(ctx context.Context, t *model.Task) (*model.Task, error) {
	id := t.TaskID
	if id == "" {
		id = uuid.New().String()
	}
	created := now()
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO tasks (task_id, user_id, op, note_id, status, next_attempt_at,
            creation_time, update_time)
        VALUES (?,?,?,?,'pending',?,?,?)
    `, id, t.UserID, t.Op, t.NoteID, created, created, created); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *tasks) get(ctx context.Context, taskID string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_id=?`, taskID)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *tasks) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id=? AND task_id=?`, userID, taskID)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Lease claims due pending rows inside a transaction. SQLite's single-writer
// model makes the select-then-update pair atomic with respect to other
// leasing transactions.
func (s *tasks) Lease(ctx context.Context, limit int, visibility time.Duration) ([]*model.Task, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
        SELECT `+taskColumns+` FROM tasks
        WHERE status='pending' AND next_attempt_at <= ?
        ORDER BY creation_time ASC
        LIMIT ?
    `, now(), limit)
	if err != nil {
		return nil, err
	}
	var res []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	invisibleUntil := now().Add(visibility)
	for _, t := range res {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET next_attempt_at=?, update_time=? WHERE task_id=?`,
			invisibleUntil, now(), t.TaskID); err != nil {
			return nil, err
		}
	}
	return res, tx.Commit()
}

func (s *tasks) MarkDone(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status='done', last_error=NULL, update_time=? WHERE task_id=?`,
		now(), taskID)
	return err
}

func (s *tasks) MarkFailed(ctx context.Context, taskID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status='failed', last_error=?, update_time=? WHERE task_id=?`,
		reason, now(), taskID)
	return err
}

func (s *tasks) Reschedule(ctx context.Context, taskID string, delay time.Duration, reason string) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE tasks
        SET attempt_count = attempt_count + 1,
            next_attempt_at = ?,
            last_error = ?,
            update_time = ?
        WHERE task_id=?
    `, now().Add(delay), reason, now(), taskID)
	return err
}
