package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type fakePinger struct {
	fail atomic.Int32
}

func (f *fakePinger) HealthPing(context.Context) error {
	if f.fail.Load() == 1 {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingCheckerTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePinger{}
	c := NewPingChecker("store", p, time.Second, zerolog.Nop())
	go c.Start(ctx, 10*time.Millisecond)

	waitTrue(t, c.IsHealthy)

	p.fail.Store(1)
	waitTrue(t, func() bool { return !c.IsHealthy() })

	p.fail.Store(0)
	waitTrue(t, c.IsHealthy)
}
