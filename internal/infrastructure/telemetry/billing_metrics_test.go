package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestBillingMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := NewBillingMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordInvoicesGenerated(ctx, "2024-08", 3)
	bm.RecordPaymentSubmitted(ctx, 500)
	bm.RecordPaymentSubmitted(ctx, 500)
	bm.RecordInvoicePaid(ctx)
	bm.RecordPaymentRejected(ctx)
	bm.RecordReceiptCheck(ctx, "accurate")

	data := collect(t, reader)

	generated, ok := data["billing_invoices_generated_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, generated.DataPoints, 1)
	assert.Equal(t, int64(3), generated.DataPoints[0].Value)
	period, _ := generated.DataPoints[0].Attributes.Value(AttrPeriod)
	assert.Equal(t, "2024-08", period.AsString())

	submitted := data["billing_payment_shares_submitted_total"].(metricdata.Sum[int64])
	assert.Equal(t, int64(2), submitted.DataPoints[0].Value)

	amount := data["billing_payment_amount_total"].(metricdata.Sum[float64])
	assert.Equal(t, 1000.0, amount.DataPoints[0].Value)

	assert.Contains(t, data, "billing_invoices_paid_total")
	assert.Contains(t, data, "billing_payments_rejected_total")
	assert.Contains(t, data, "billing_receipt_checks_total")
}

func TestNewBillingMetrics_NilMeter(t *testing.T) {
	_, err := NewBillingMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}
