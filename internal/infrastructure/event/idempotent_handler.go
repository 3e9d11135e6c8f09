package event

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDedupTTL is how long a handled event ID is remembered
const DefaultDedupTTL = 24 * time.Hour

// HandlerStats counts what an IdempotentHandler did with its events
type HandlerStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler skips events whose ID has already been handled.
// A failed event is released so a redelivery can retry it.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewIdempotentHandler wraps handler; ttl <= 0 uses DefaultDedupTTL
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &IdempotentHandler{handler: handler, store: store, ttl: ttl, logger: logger}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler at most once per event ID and handler
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.key(event)
	fresh, err := h.store.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		// store outage: handle anyway, handlers rebuild state from repositories
		h.logger.Warn("Idempotency check failed",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
	} else if !fresh {
		h.duplicate.Add(1)
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()))
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("Failed to release idempotency key",
				zap.String("key", key),
				zap.Error(relErr))
		}
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns a snapshot of the handler counters
func (h *IdempotentHandler) Stats() HandlerStats {
	return HandlerStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

func (h *IdempotentHandler) key(event shared.DomainEvent) string {
	return fmt.Sprintf("event:%T:%s", h.handler, event.EventID())
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
