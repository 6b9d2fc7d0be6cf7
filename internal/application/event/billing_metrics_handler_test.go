package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	infraevent "github.com/rentflow/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordInvoicesGenerated(ctx context.Context, period string, n int64) {
	m.Called(ctx, period, n)
}

func (m *mockRecorder) RecordPaymentSubmitted(ctx context.Context, amount float64) {
	m.Called(ctx, amount)
}

func (m *mockRecorder) RecordInvoicePaid(ctx context.Context)     { m.Called(ctx) }
func (m *mockRecorder) RecordInvoicePartial(ctx context.Context)  { m.Called(ctx) }
func (m *mockRecorder) RecordPaymentRejected(ctx context.Context) { m.Called(ctx) }

var now = time.Date(2024, time.August, 3, 9, 0, 0, 0, time.UTC)

func newInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	period, err := billing.NewPeriod(2024, 8)
	require.NoError(t, err)
	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), uuid.New(), period, valueobject.NewMoneyFromInt(1200), now)
	require.NoError(t, err)
	return inv
}

func TestBillingMetricsHandler_ThroughBus(t *testing.T) {
	rec := new(mockRecorder)
	rec.On("RecordInvoicesGenerated", mock.Anything, "2024-08", int64(1)).Once()
	rec.On("RecordPaymentSubmitted", mock.Anything, 450.0).Once()
	rec.On("RecordInvoicePartial", mock.Anything).Once()
	rec.On("RecordPaymentRejected", mock.Anything).Once()
	rec.On("RecordInvoicePaid", mock.Anything).Once()

	bus := infraevent.NewInMemoryEventBus(nil)
	bus.Subscribe(NewBillingMetricsHandler(rec))

	inv := newInvoice(t)
	require.NoError(t, inv.SubmitPayment(valueobject.NewMoneyFromInt(450), "https://bank.example.com/r/9", now))
	require.NoError(t, inv.MarkPartial(now))
	require.NoError(t, bus.Publish(context.Background(), shared.CollectEvents(inv)...))

	require.NoError(t, bus.Publish(context.Background(),
		billing.NewInvoicePaymentRejectedEvent(inv),
		billing.NewInvoicePaidEvent(inv),
		billing.NewInvoiceUtilitiesUpdatedEvent(inv),
	))

	rec.AssertExpectations(t)
	_, failed := bus.Stats()
	assert.Zero(t, failed)
}

func TestBillingMetricsHandler_UnexpectedEvent(t *testing.T) {
	h := NewBillingMetricsHandler(new(mockRecorder))
	evt := billing.NewInvoiceUtilitiesUpdatedEvent(newInvoice(t))
	assert.Error(t, h.Handle(context.Background(), evt))
}
