// Package event holds application-level subscribers of domain events.
package event

import (
	"context"
	"fmt"

	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
)

// BillingRecorder receives invoice lifecycle counts
type BillingRecorder interface {
	RecordInvoicesGenerated(ctx context.Context, period string, n int64)
	RecordPaymentSubmitted(ctx context.Context, amount float64)
	RecordInvoicePaid(ctx context.Context)
	RecordInvoicePartial(ctx context.Context)
	RecordPaymentRejected(ctx context.Context)
}

// BillingMetricsHandler turns invoice events into metric increments
type BillingMetricsHandler struct {
	recorder BillingRecorder
}

// NewBillingMetricsHandler creates a handler recording to recorder
func NewBillingMetricsHandler(recorder BillingRecorder) *BillingMetricsHandler {
	return &BillingMetricsHandler{recorder: recorder}
}

// EventTypes returns the invoice events that are counted
func (h *BillingMetricsHandler) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceGenerated,
		billing.EventTypeInvoicePaymentSubmitted,
		billing.EventTypeInvoicePaid,
		billing.EventTypeInvoicePartiallyPaid,
		billing.EventTypeInvoicePaymentRejected,
	}
}

// Handle records one event
func (h *BillingMetricsHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	switch e := evt.(type) {
	case *billing.InvoiceGeneratedEvent:
		h.recorder.RecordInvoicesGenerated(ctx, e.Period, 1)
	case *billing.InvoicePaymentSubmittedEvent:
		h.recorder.RecordPaymentSubmitted(ctx, e.Amount.Amount().InexactFloat64())
	case *billing.InvoicePaidEvent:
		h.recorder.RecordInvoicePaid(ctx)
	case *billing.InvoicePartiallyPaidEvent:
		h.recorder.RecordInvoicePartial(ctx)
	case *billing.InvoicePaymentRejectedEvent:
		h.recorder.RecordPaymentRejected(ctx)
	default:
		return fmt.Errorf("unexpected event %T for type %s", evt, evt.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*BillingMetricsHandler)(nil)
