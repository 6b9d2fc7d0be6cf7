package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/tenancy"
)

// GenerationPlan is the outcome of planning a period's invoices
type GenerationPlan struct {
	Period   Period
	Invoices []*Invoice

	// Skipped counts active tenancies that already have an invoice for the period
	Skipped int
}

// PlanInvoices builds the invoices missing for a period.
// Only active tenancies are eligible, and a tenancy that already has an
// invoice for the period is skipped without error.
func PlanInvoices(period Period, tenancies []*tenancy.Tenancy, existing []*Invoice, now time.Time) (*GenerationPlan, error) {
	if period.IsZero() {
		return nil, ErrInvalidPeriod
	}

	billed := make(map[uuid.UUID]struct{}, len(existing))
	for _, inv := range existing {
		if inv.Period == period {
			billed[inv.TenancyID] = struct{}{}
		}
	}

	plan := &GenerationPlan{Period: period, Invoices: make([]*Invoice, 0, len(tenancies))}
	for _, t := range tenancies {
		if !t.Active {
			continue
		}
		if _, ok := billed[t.ID]; ok {
			plan.Skipped++
			continue
		}
		inv, err := NewInvoice(t.ID, t.UserID, t.PropertyID, period, t.FixedMonthlyRent, now)
		if err != nil {
			return nil, err
		}
		plan.Invoices = append(plan.Invoices, inv)
		billed[t.ID] = struct{}{}
	}
	return plan, nil
}
