package shared

import "context"

// EventPublisher is the write side of the event bus. Application services
// hold this narrow interface so they can emit domain events without knowing
// how delivery works.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler consumes domain events. EventTypes lists the types the
// handler wants; an empty list subscribes it to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventBus wires publishers to handlers and owns the delivery lifecycle.
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler, optionally restricted to the given
	// event types (the handler's own EventTypes apply when none are given)
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
