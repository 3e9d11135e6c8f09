package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed message IDs (webhook events, domain events)
type IdempotencyStore interface {
	// MarkProcessed returns true if the ID was newly marked, false if it was already seen.
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	// Release forgets an ID so a failed delivery can be retried.
	Release(ctx context.Context, id string) error
}
