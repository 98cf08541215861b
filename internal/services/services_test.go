package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/JiwonJeong414/TechTive-Backend/internal/generator"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store/sqlite"
)

// fakeProvider returns canned text and records prompts. fail switches it to
// an always-error mode.
type fakeProvider struct {
	reply   string
	fail    bool
	calls   int
	systems []string
	users   []string
	options []generator.Options
}

func (f *fakeProvider) Complete(_ context.Context, system, user string, opts ...generator.Option) (string, error) {
	f.calls++
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	o := generator.Options{}
	for _, fn := range opts {
		fn(&o)
	}
	f.options = append(f.options, o)
	if f.fail {
		return "", errors.New("provider unavailable")
	}
	if f.reply == "" {
		return "generated text", nil
	}
	return f.reply, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "techtive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s, err := sqlite.NewWithDB(db)
	require.NoError(t, err)
	return s
}

func newTestUser(t *testing.T, s store.Store) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &model.User{Subject: "firebase|" + t.Name()})
	require.NoError(t, err)
	return u
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
