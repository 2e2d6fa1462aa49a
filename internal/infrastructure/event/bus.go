package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/stocklot/backend/internal/domain/shared"
)

// InMemoryEventBus delivers domain events to subscribed handlers inside the
// publishing process. Dispatch is synchronous and failure-isolated: one
// handler erroring or panicking never stops delivery to the others.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	closed    atomic.Bool
	published atomic.Uint64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event to every handler registered for its type.
// Handler failures are logged, never propagated: ledger writes must not fail
// because a listener did.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.closed.Load() {
		b.logger.Warn("event published after bus shutdown, dropping",
			zap.Int("events", len(events)),
		)
		return nil
	}

	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
		b.published.Add(1)
	}
	return nil
}

// Subscribe registers a handler, defaulting to the event types the handler
// declares for itself
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type it was registered for
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start marks the bus open for publishing
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.closed.Store(false)
	b.logger.Info("event bus started")
	return nil
}

// Stop closes the bus; later publishes are dropped with a warning
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.closed.Store(true)
	b.logger.Info("event bus stopped",
		zap.Uint64("events_published", b.published.Load()),
	)
	return nil
}

// dispatch invokes one handler, converting a panic into an error so the
// publish loop can keep going
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
