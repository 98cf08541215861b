package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PingChecker adapts a HealthPinger (store, upstream client) into a
// HealthChecker with a cached flag refreshed on an interval.
type PingChecker struct {
	name    string
	pinger  HealthPinger
	timeout time.Duration
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewPingChecker(name string, p HealthPinger, probeTimeout time.Duration, log zerolog.Logger) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &PingChecker{name: name, pinger: p, timeout: probeTimeout, log: log}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start probes immediately, then on every tick, until ctx is canceled.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.pinger.HealthPing(pctx); err != nil {
			if c.healthy.Swap(0) == 1 {
				c.log.Error().Err(err).Str("component", c.name).Msg("component health: DOWN")
			}
			return
		}
		if c.healthy.Swap(1) == 0 {
			c.log.Info().Str("component", c.name).Msg("component health: UP")
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
