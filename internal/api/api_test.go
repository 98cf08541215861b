package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/generator"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store/sqlite"
)

type staticProvider struct{}

func (staticProvider) Complete(context.Context, string, string, ...generator.Option) (string, error) {
	return "generated", nil
}

type testServer struct {
	router http.Handler
	store  store.Store
	quotes *services.QuoteService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "techtive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := sqlite.NewWithDB(db)
	require.NoError(t, err)

	log := zerolog.Nop()
	users := services.NewUserService(st)
	notes := services.NewNoteService(st)
	mem := services.NewMemoryService(st, staticProvider{}, log)
	advice := services.NewAdviceService(st, mem, services.NewContextBuilder(st), staticProvider{}, log)
	quotes := services.NewQuoteService(st)

	router := NewRouter(Deps{
		Store:    st,
		Users:    users,
		Notes:    notes,
		Memories: mem,
		Advice:   advice,
		Quotes:   quotes,
		Verifier: auth.NewStaticVerifier(),
		Log:      log,
	})
	return &testServer{router: router, store: st, quotes: services.NewQuoteService(st)}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, r)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

const aliceToken = "dev:firebase|alice"

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/notes", "/api/memories", "/api/advice/latest", "/api/users/me"} {
		w := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// Public endpoints stay open.
	w := ts.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNoteLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/notes", aliceToken, map[string]string{"content": "first entry"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Note
	decodeInto(t, w, &created)
	assert.NotEmpty(t, created.NoteID)
	assert.Nil(t, created.ClassifiedAt)

	w = ts.do(t, http.MethodGet, "/api/notes/"+created.NoteID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPut, "/api/notes/"+created.NoteID, aliceToken, map[string]string{"content": "revised"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Note
	decodeInto(t, w, &updated)
	assert.Equal(t, "revised", updated.Content)

	w = ts.do(t, http.MethodGet, "/api/notes?page=1&perPage=10", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []model.Note `json:"items"`
		Total int          `json:"total"`
	}
	decodeInto(t, w, &page)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	w = ts.do(t, http.MethodDelete, "/api/notes/"+created.NoteID, aliceToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/notes/"+created.NoteID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoteValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/notes", aliceToken, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r := httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewBufferString("{not json"))
	r.Header.Set("Authorization", "Bearer "+aliceToken)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotesAreScopedPerUser(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/notes", aliceToken, map[string]string{"content": "alice's entry"})
	require.Equal(t, http.StatusCreated, w.Code)
	var n model.Note
	decodeInto(t, w, &n)

	w = ts.do(t, http.MethodGet, "/api/notes/"+n.NoteID, "dev:firebase|mallory", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdviceFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/advice/latest", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no advice yet")

	w = ts.do(t, http.MethodGet, "/api/advice/eligibility", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var elig services.Eligibility
	decodeInto(t, w, &elig)
	assert.False(t, elig.Eligible)

	w = ts.do(t, http.MethodPost, "/api/advice/generate", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "gated until enough notes")

	for i := 0; i < services.AdviceNoteThreshold; i++ {
		w = ts.do(t, http.MethodPost, "/api/notes", aliceToken, map[string]string{"content": fmt.Sprintf("entry %d", i)})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = ts.do(t, http.MethodGet, "/api/advice/eligibility", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, w, &elig)
	assert.True(t, elig.Eligible)

	w = ts.do(t, http.MethodPost, "/api/advice/generate", aliceToken, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var task model.Task
	decodeInto(t, w, &task)
	require.NotEmpty(t, task.TaskID)
	assert.Equal(t, model.TaskPending, task.Status)

	w = ts.do(t, http.MethodGet, "/api/tasks/"+task.TaskID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var polled model.Task
	decodeInto(t, w, &polled)
	assert.Equal(t, task.TaskID, polled.TaskID)
}

func TestMemoriesEmptyHistory(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/memories", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pageResponse
	decodeInto(t, w, &page)
	assert.Zero(t, page.Total)
}

func TestUsersMeAndDelete(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/users/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me model.User
	decodeInto(t, w, &me)
	assert.Equal(t, "firebase|alice", me.Subject)

	w = ts.do(t, http.MethodDelete, "/api/users/me", aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The next authenticated request transparently re-creates the account.
	w = ts.do(t, http.MethodGet, "/api/users/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var again model.User
	decodeInto(t, w, &again)
	assert.NotEqual(t, me.UserID, again.UserID)
}

func TestRandomQuote(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/quotes/random", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "empty quote table")

	_, err := ts.quotes.Add(context.Background(), "the obstacle is the way", "Marcus Aurelius")
	require.NoError(t, err)

	w = ts.do(t, http.MethodGet, "/api/quotes/random", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var q model.Quote
	decodeInto(t, w, &q)
	assert.Equal(t, "Marcus Aurelius", q.Author)
}

func TestStorageHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/health/db", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
