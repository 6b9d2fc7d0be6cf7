package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Metric attribute keys
const (
	AttrPeriod  = attribute.Key("period")
	AttrOutcome = attribute.Key("outcome")
)

// BillingMetrics counts invoice lifecycle activity
type BillingMetrics struct {
	invoicesGenerated metric.Int64Counter
	paymentsSubmitted metric.Int64Counter
	paymentAmount     metric.Float64Counter
	invoicesPaid      metric.Int64Counter
	invoicesPartial   metric.Int64Counter
	paymentsRejected  metric.Int64Counter
	receiptChecks     metric.Int64Counter
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BillingMetrics{}
	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&bm.invoicesGenerated, "billing_invoices_generated_total", "Invoices created by generation runs"},
		{&bm.paymentsSubmitted, "billing_payment_shares_submitted_total", "Payment shares recorded on invoices"},
		{&bm.invoicesPaid, "billing_invoices_paid_total", "Invoices marked paid by an owner"},
		{&bm.invoicesPartial, "billing_invoices_partial_total", "Invoices marked partially paid by an owner"},
		{&bm.paymentsRejected, "billing_payments_rejected_total", "Payment submissions rejected by an owner"},
		{&bm.receiptChecks, "billing_receipt_checks_total", "AI receipt checks by outcome"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("{invoice}"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	bm.paymentAmount, err = meter.Float64Counter("billing_payment_amount_total",
		metric.WithDescription("Sum of payment shares submitted"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter billing_payment_amount_total: %w", err)
	}
	return bm, nil
}

// RecordInvoicesGenerated adds n generated invoices for period
func (m *BillingMetrics) RecordInvoicesGenerated(ctx context.Context, period string, n int64) {
	m.invoicesGenerated.Add(ctx, n, metric.WithAttributes(AttrPeriod.String(period)))
}

// RecordPaymentSubmitted counts one payment share of amount
func (m *BillingMetrics) RecordPaymentSubmitted(ctx context.Context, amount float64) {
	m.paymentsSubmitted.Add(ctx, 1)
	m.paymentAmount.Add(ctx, amount)
}

// RecordInvoicePaid counts an invoice marked paid
func (m *BillingMetrics) RecordInvoicePaid(ctx context.Context) {
	m.invoicesPaid.Add(ctx, 1)
}

// RecordInvoicePartial counts an invoice marked partial
func (m *BillingMetrics) RecordInvoicePartial(ctx context.Context) {
	m.invoicesPartial.Add(ctx, 1)
}

// RecordPaymentRejected counts a rejected submission
func (m *BillingMetrics) RecordPaymentRejected(ctx context.Context) {
	m.paymentsRejected.Add(ctx, 1)
}

// RecordReceiptCheck counts an AI receipt check by outcome
func (m *BillingMetrics) RecordReceiptCheck(ctx context.Context, outcome string) {
	m.receiptChecks.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}
