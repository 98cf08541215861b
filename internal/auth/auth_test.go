package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store/sqlite"
)

func TestBearerToken(t *testing.T) {
	mk := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	tok, err := BearerToken(mk("Bearer abc123"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	tok, err = BearerToken(mk("bearer abc123"))
	require.NoError(t, err, "scheme is case-insensitive")
	assert.Equal(t, "abc123", tok)

	_, err = BearerToken(mk(""))
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = BearerToken(mk("Basic abc123"))
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = BearerToken(mk("Bearer "))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier()

	id, err := v.Verify(context.Background(), "dev:firebase|alice")
	require.NoError(t, err)
	assert.Equal(t, "firebase|alice", id.Subject)

	_, err = v.Verify(context.Background(), "firebase|alice")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = v.Verify(context.Background(), "dev:")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareAttachesUser(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "techtive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := sqlite.NewWithDB(db)
	require.NoError(t, err)
	users := services.NewUserService(st)

	var gotSubject string
	handler := Middleware(NewStaticVerifier(), users, zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			require.True(t, ok)
			gotSubject = u.Subject
			w.WriteHeader(http.StatusNoContent)
		}))

	// First request creates the user, second resolves the same one.
	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		r.Header.Set("Authorization", "Bearer dev:firebase|bob")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "firebase|bob", gotSubject)
	}

	u, err := users.GetOrCreate(context.Background(), "firebase|bob")
	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "techtive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := sqlite.NewWithDB(db)
	require.NoError(t, err)

	handler := Middleware(NewStaticVerifier(), services.NewUserService(st), zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	for _, header := range []string{"", "Basic zzz", "Bearer not-a-dev-token"} {
		r := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}
