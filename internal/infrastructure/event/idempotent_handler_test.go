package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/cache"
	"github.com/rentflow/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("processes a new event once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newTestHandler("InvoicePaid")
		h := NewIdempotentHandler(inner, store, nil)
		evt := newTestEvent("InvoicePaid")

		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))

		assert.Equal(t, 1, inner.count())
		assert.Equal(t, IdempotencyStats{Processed: 1, Duplicate: 1}, h.Stats())
		processed, err := store.IsProcessed(ctx, "event:"+evt.EventID().String())
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("handler errors are returned and counted", func(t *testing.T) {
		inner := newTestHandler("InvoicePaid")
		inner.err = errors.New("counter unavailable")
		h := NewIdempotentHandler(inner, cache.NewInMemoryIdempotencyStore(), nil)

		assert.EqualError(t, h.Handle(ctx, newTestEvent("InvoicePaid")), "counter unavailable")
		assert.Equal(t, int64(1), h.Stats().Failed)
	})

	t.Run("store failure lets the event through", func(t *testing.T) {
		store := new(testutil.MockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, mock.Anything, 24*time.Hour).Return(false, errors.New("redis down"))
		inner := newTestHandler("InvoicePaid")
		h := NewIdempotentHandler(inner, store, nil)

		require.NoError(t, h.Handle(ctx, newTestEvent("InvoicePaid")))
		assert.Equal(t, 1, inner.count())
		store.AssertExpectations(t)
	})

	t.Run("disabled config skips the store", func(t *testing.T) {
		store := new(testutil.MockIdempotencyStore)
		inner := newTestHandler("InvoicePaid")
		h := NewIdempotentHandler(inner, store, nil, WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
		evt := newTestEvent("InvoicePaid")

		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))
		assert.Equal(t, 2, inner.count())
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent duplicates run once", func(t *testing.T) {
		inner := newTestHandler("InvoicePaid")
		h := NewIdempotentHandler(inner, cache.NewInMemoryIdempotencyStore(), nil)
		evt := newTestEvent("InvoicePaid")

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = h.Handle(ctx, evt)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, inner.count())
		assert.Equal(t, int64(9), h.Stats().Duplicate)
	})

	t.Run("reports wrapped event types", func(t *testing.T) {
		h := NewIdempotentHandler(newTestHandler("A", "B"), nil, nil)
		assert.Equal(t, []string{"A", "B"}, h.EventTypes())
	})
}
