package billing

import (
	"context"

	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// publisher publishes invoice events after the write that produced them committed.
// A publish failure is logged; the write already happened.
type publisher struct {
	bus    shared.EventPublisher
	logger *zap.Logger
}

func (p *publisher) publish(ctx context.Context, invoices ...*billing.Invoice) {
	events := shared.CollectEvents(invoices...)
	if p.bus == nil || len(events) == 0 {
		return
	}
	if err := p.bus.Publish(ctx, events...); err != nil {
		p.logger.Warn("Failed to publish invoice events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
