package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, evt)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to typed and wildcard handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		paid := newTestHandler("InvoicePaid")
		all := newTestHandler()
		bus.Subscribe(paid)
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx, newTestEvent("InvoicePaid"), newTestEvent("InvoiceGenerated")))
		assert.Equal(t, 1, paid.count())
		assert.Equal(t, 2, all.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := newTestHandler("InvoicePaid")
		bus.Subscribe(h, "PaymentRejected")

		_ = bus.Publish(ctx, newTestEvent("InvoicePaid"), newTestEvent("PaymentRejected"))
		assert.Equal(t, 1, h.count())
	})

	t.Run("failing and panicking handlers do not stop delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		failing := newTestHandler("InvoicePaid")
		failing.err = errors.New("handler error")
		panicking := newTestHandler("InvoicePaid")
		panicking.panicWith = "boom"
		healthy := newTestHandler("InvoicePaid")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("InvoicePaid")))
		assert.Equal(t, 1, healthy.count())

		published, failed := bus.Stats()
		assert.Equal(t, int64(1), published)
		assert.Equal(t, int64(2), failed)
	})

	t.Run("unsubscribed handlers receive nothing", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := newTestHandler("InvoicePaid")
		bus.Subscribe(h)
		_ = bus.Publish(ctx, newTestEvent("InvoicePaid"))
		bus.Unsubscribe(h)
		_ = bus.Publish(ctx, newTestEvent("InvoicePaid"))
		assert.Equal(t, 1, h.count())
	})
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.Running())
}
