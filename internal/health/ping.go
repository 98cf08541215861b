package health

import "context"

// HealthPinger is a connectivity probe. The store satisfies it by
// round-tripping the database; HealthPing returns nil when the dependency
// is reachable.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
