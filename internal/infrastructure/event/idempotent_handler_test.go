package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis unavailable")
}

func (failingStore) Release(context.Context, string) error { return nil }

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	ctx := context.Background()
	inner := &recordingHandler{types: []string{"ReviewCreated"}}
	h := NewIdempotentHandler(inner, cache.NewInMemoryIdempotencyStore(), 0, zap.NewNop())

	assert.Equal(t, []string{"ReviewCreated"}, h.EventTypes())
	assert.Equal(t, DefaultDedupTTL, h.ttl)

	evt := newTestEvent("ReviewCreated")
	require.NoError(t, h.Handle(ctx, evt))
	require.NoError(t, h.Handle(ctx, evt))
	require.NoError(t, h.Handle(ctx, newTestEvent("ReviewCreated")))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, HandlerStats{Processed: 2, Duplicate: 1}, h.Stats())
}

func TestIdempotentHandler_FailureReleasesKey(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryIdempotencyStore()
	inner := &recordingHandler{types: []string{"SubscriptionChanged"}, err: errors.New("listing repo down")}
	h := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())

	evt := newTestEvent("SubscriptionChanged")
	assert.Error(t, h.Handle(ctx, evt))
	assert.Equal(t, 0, store.Len())

	inner.err = nil
	require.NoError(t, h.Handle(ctx, evt))
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, HandlerStats{Processed: 1, Failed: 1}, h.Stats())
}

func TestIdempotentHandler_KeysArePerHandler(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryIdempotencyStore()
	first := NewIdempotentHandler(&recordingHandler{}, store, time.Hour, zap.NewNop())
	second := NewIdempotentHandler(&otherHandler{}, store, time.Hour, zap.NewNop())

	evt := newTestEvent("ReviewCreated")
	require.NoError(t, first.Handle(ctx, evt))
	require.NoError(t, second.Handle(ctx, evt))
	assert.Equal(t, int64(1), first.Stats().Processed)
	assert.Equal(t, int64(1), second.Stats().Processed)
}

func TestIdempotentHandler_StoreOutageStillHandles(t *testing.T) {
	inner := &recordingHandler{}
	h := NewIdempotentHandler(inner, failingStore{}, time.Minute, zap.NewNop())

	evt := newTestEvent("BookingConfirmed")
	require.NoError(t, h.Handle(context.Background(), evt))
	require.NoError(t, h.Handle(context.Background(), evt))
	assert.Equal(t, 2, inner.count())
}

type otherHandler struct{ recordingHandler }
