package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users       { return &users{db: s.db} }
func (s *pgStore) Notes() store.Notes       { return &notes{db: s.db} }
func (s *pgStore) Memories() store.Memories { return &memories{db: s.db} }
func (s *pgStore) Advice() store.Advice     { return &advice{db: s.db} }
func (s *pgStore) Quotes() store.Quotes     { return &quotes{db: s.db} }
func (s *pgStore) Tasks() store.Tasks       { return &tasks{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithUserLock serializes fn per user via a session advisory lock held on a
// dedicated connection. hashtext folds the user id into the bigint key space
// pg_advisory_lock expects.
func (s *pgStore) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock(hashtext($1))`, userID); err != nil {
		return err
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock(hashtext($1))`, userID)
	}()

	return fn(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, subject)
        VALUES ($1,$2)
        RETURNING creation_time
    `, id, m.Subject)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	return &model.User{UserID: id, Subject: m.Subject, CreationTime: created}, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, subject, creation_time FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Subject, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (u *users) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, subject, creation_time FROM users WHERE subject=$1
    `, subject)
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
		`DELETE FROM tasks WHERE user_id=$1`,
		`DELETE FROM advice WHERE user_id=$1`,
		`DELETE FROM memories WHERE user_id=$1`,
		`DELETE FROM notes WHERE user_id=$1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, userID)
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
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO notes (note_id, user_id, content)
        VALUES ($1,$2,$3)
        RETURNING `+noteColumns+`
    `, id, n.UserID, n.Content)
	return scanNote(row)
}

func (s *notes) GetByID(ctx context.Context, userID, noteID string) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+noteColumns+` FROM notes WHERE user_id=$1 AND note_id=$2
    `, userID, noteID)
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
		`SELECT COUNT(*) FROM notes WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+noteColumns+` FROM notes
        WHERE user_id=$1
        ORDER BY creation_time DESC, note_id DESC
        LIMIT $2 OFFSET $3
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
        WHERE user_id=$1
        ORDER BY creation_time DESC, note_id DESC
        LIMIT $2
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
	q := `SELECT ` + noteColumns + ` FROM notes WHERE user_id=$1`
	args := []interface{}{userID}
	if after != nil {
		q += ` AND creation_time > $2`
		args = append(args, *after)
	}
	q += fmt.Sprintf(` ORDER BY creation_time ASC, note_id ASC LIMIT %d`, limit)

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
	q := `SELECT COUNT(*) FROM notes WHERE user_id=$1`
	args := []interface{}{userID}
	if since != nil {
		q += ` AND creation_time > $2`
		args = append(args, *since)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *notes) UpdateContent(ctx context.Context, userID, noteID, content string) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx, `
        UPDATE notes
        SET content=$3,
            anger=0, disgust=0, fear=0, joy=0, neutral=0, sadness=0, surprise=0,
            classified_at=NULL,
            update_time=now()
        WHERE user_id=$1 AND note_id=$2
        RETURNING `+noteColumns+`
    `, userID, noteID, content)
	n, err := scanNote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *notes) SetEmotions(ctx context.Context, noteID string, v emotion.Vector, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE notes
        SET anger=$2, disgust=$3, fear=$4, joy=$5, neutral=$6, sadness=$7, surprise=$8,
            classified_at=$9, update_time=now()
        WHERE note_id=$1
    `, noteID, v.Anger, v.Disgust, v.Fear, v.Joy, v.Neutral, v.Sadness, v.Surprise, at)
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
		`DELETE FROM notes WHERE user_id=$1 AND note_id=$2`, userID, noteID)
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
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO memories (memory_id, user_id, summary, note_count,
            first_note_time, last_note_time, dominant_emotion, emotional_intensity, themes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING `+memoryColumns+`
    `, id, m.UserID, m.Summary, m.NoteCount,
		m.FirstNoteTime, m.LastNoteTime, string(m.DominantEmotion), m.EmotionalIntensity, m.Themes)
	return scanMemory(row)
}

func (s *memories) Latest(ctx context.Context, userID string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+memoryColumns+` FROM memories
        WHERE user_id=$1
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
        WHERE user_id=$1
        ORDER BY creation_time DESC, memory_id DESC
        LIMIT $2
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
		`SELECT COUNT(*) FROM memories WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+memoryColumns+` FROM memories
        WHERE user_id=$1
        ORDER BY creation_time DESC, memory_id DESC
        LIMIT $2 OFFSET $3
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
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO advice (advice_id, user_id, content, trigger_type,
            memory_count, note_count, dominant_emotion)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING `+adviceColumns+`
    `, id, a.UserID, a.Content, a.TriggerType,
		a.MemoryCount, a.NoteCount, string(a.DominantEmotion))
	return scanAdvice(row)
}

func (s *advice) Latest(ctx context.Context, userID string) (*model.Advice, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+adviceColumns+` FROM advice
        WHERE user_id=$1
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
		`SELECT COUNT(*) FROM advice WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+adviceColumns+` FROM advice
        WHERE user_id=$1
        ORDER BY creation_time DESC, advice_id DESC
        LIMIT $2 OFFSET $3
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
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO quotes (content, author) VALUES ($1,$2)
        RETURNING quote_id
    `, q.Content, q.Author)
	out := *q
	if err := row.Scan(&out.QuoteID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *quotes) Random(ctx context.Context) (*model.Quote, error) {
	var q model.Quote
	row := s.db.QueryRowContext(ctx, `
        SELECT quote_id, content, author FROM quotes
        ORDER BY random() LIMIT 1
    `)
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
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO tasks (task_id, user_id, op, note_id, status, next_attempt_at)
        VALUES ($1,$2,$3,$4,'pending',now())
        RETURNING `+taskColumns+`
    `, id, t.UserID, t.Op, t.NoteID)
	return scanTask(row)
}

func (s *tasks) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+taskColumns+` FROM tasks WHERE user_id=$1 AND task_id=$2
    `, userID, taskID)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Lease claims due pending rows by pushing their next_attempt_at past the
// visibility window. FOR UPDATE SKIP LOCKED keeps concurrent workers off
// each other's batches; an expired lease simply becomes due again.
func (s *tasks) Lease(ctx context.Context, limit int, visibility time.Duration) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
        UPDATE tasks SET next_attempt_at = now() + make_interval(secs => $2), update_time = now()
        WHERE task_id IN (
            SELECT task_id FROM tasks
            WHERE status='pending' AND next_attempt_at <= now()
            ORDER BY creation_time ASC
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING `+taskColumns+`
    `, limit, visibility.Seconds())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *tasks) MarkDone(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status='done', last_error=NULL, update_time=now() WHERE task_id=$1`, taskID)
	return err
}

func (s *tasks) MarkFailed(ctx context.Context, taskID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status='failed', last_error=$2, update_time=now() WHERE task_id=$1`,
		taskID, reason)
	return err
}

func (s *tasks) Reschedule(ctx context.Context, taskID string, delay time.Duration, reason string) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE tasks
        SET attempt_count = attempt_count + 1,
            next_attempt_at = now() + make_interval(secs => $2),
            last_error = $3,
            update_time = now()
        WHERE task_id=$1
    `, taskID, delay.Seconds(), reason)
	return err
}
