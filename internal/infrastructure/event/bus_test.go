package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stocklot/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Lot", uuid.New(), uuid.New()),
	}
}

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	fail     bool
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	if h.fail {
		return errors.New("handler failed")
	}
	h.received = append(h.received, event)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to type-specific handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"MovementApplied"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("MovementApplied")))
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("AlertRaised")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "MovementApplied", handler.received[0].EventType())
	})

	t.Run("wildcard handler receives every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("MovementApplied"),
			newTestEvent("AlertRaised"),
			newTestEvent("ReconciliationSessionCompleted"),
		))

		assert.Len(t, handler.received, 3)
	})

	t.Run("failing handler does not block the rest", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{fail: true}
		healthy := &recordingHandler{}
		bus.Subscribe(failing, "MovementApplied")
		bus.Subscribe(healthy, "MovementApplied")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("MovementApplied")))

		assert.Len(t, healthy.received, 1)
	})

	t.Run("panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{panics: true}
		healthy := &recordingHandler{}
		bus.Subscribe(panicking, "MovementApplied")
		bus.Subscribe(healthy, "MovementApplied")

		require.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), newTestEvent("MovementApplied"))
		})
		assert.Len(t, healthy.received, 1)
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"MovementApplied"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("MovementApplied")))

		assert.Empty(t, handler.received)
	})
}
