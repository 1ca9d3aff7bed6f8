package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExpiryNotifier signals, near the expiry instant, that a group should be
// reaped. Delivery is at-least-once at best; the periodic sweep covers
// duplicates and misses, so implementations only need best effort.
type ExpiryNotifier interface {
	Schedule(ctx context.Context, id uuid.UUID, ttl time.Duration) error
}
