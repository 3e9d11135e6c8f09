// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bizdir/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing to a stopped asynchronous bus
var ErrBusStopped = errors.New("event bus stopped")

// Option configures an InMemoryEventBus
type Option func(*InMemoryEventBus)

// WithAsyncDispatch hands events to a pool of workers instead of running
// handlers on the publisher's goroutine. Workers run between Start and Stop.
func WithAsyncDispatch(workers, queueSize int) Option {
	return func(b *InMemoryEventBus) {
		if workers < 1 {
			workers = 1
		}
		if queueSize < 1 {
			queueSize = 64
		}
		b.workers = workers
		b.queueSize = queueSize
	}
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Handler failures are logged and never propagate to the publisher.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	workers   int
	queueSize int

	mu      sync.RWMutex
	queue   chan envelope
	started atomic.Bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...Option) *InMemoryEventBus {
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to their handlers. A synchronous bus dispatches
// inline; an asynchronous one queues while running and dispatches inline
// before Start.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.workers == 0 {
		for _, e := range events {
			b.dispatch(ctx, e)
		}
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.queue == nil {
		if b.started.Load() {
			return ErrBusStopped
		}
		for _, e := range events {
			b.dispatch(ctx, e)
		}
		return nil
	}
	// handlers outlive the request that published the event
	detached := context.WithoutCancel(ctx)
	for _, e := range events {
		select {
		case b.queue <- envelope{ctx: detached, event: e}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types, falling back to
// the handler's own EventTypes
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the dispatch workers of an asynchronous bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	if b.workers == 0 {
		b.started.Store(true)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.queue != nil {
		return nil
	}
	b.queue = make(chan envelope, b.queueSize)
	b.started.Store(true)
	for range b.workers {
		b.wg.Add(1)
		go b.work(b.queue)
	}
	b.logger.Info("Event bus started", zap.Int("workers", b.workers))
	return nil
}

// Stop closes the queue and waits for queued events to be handled,
// or for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.queue != nil {
		close(b.queue)
		b.queue = nil
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) work(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.dispatch(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.handle(ctx, handler, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err))
		}
	}
}

func (b *InMemoryEventBus) handle(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r))
			err = nil
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
