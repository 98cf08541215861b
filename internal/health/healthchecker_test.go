package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubChecker stands in for a component checker (store, classifier).
type stubChecker struct {
	name string
	up   atomic.Bool
}

func (s *stubChecker) Name() string                         { return s.name }
func (s *stubChecker) IsHealthy() bool                      { return s.up.Load() }
func (s *stubChecker) Start(context.Context, time.Duration) {}

func TestServiceHealthFollowsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &stubChecker{name: "store"}
	cls := &stubChecker{name: "classifier"}
	st.up.Store(true)
	cls.up.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), st, cls)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, svc.IsHealthy)

	// One dependency down takes the whole service down.
	cls.up.Store(false)
	waitTrue(t, func() bool { return !svc.IsHealthy() })

	cls.up.Store(true)
	waitTrue(t, svc.IsHealthy)
}

func TestServiceHealthStartsUnhealthy(t *testing.T) {
	svc := NewServiceHealthChecker(zerolog.Nop(), &stubChecker{name: "store"})
	require.False(t, svc.IsHealthy(), "unhealthy until the first probe passes")
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
