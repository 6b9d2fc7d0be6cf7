package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationTarget is an invoice that can receive part of a payment
type AllocationTarget struct {
	ID        uuid.UUID
	Period    string // YYYY-MM
	Remaining decimal.Decimal
	CreatedAt time.Time
}

// Allocation is the share of a payment assigned to one target
type Allocation struct {
	TargetID      uuid.UUID
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// AllocationResult contains the result of payment allocation.
// Allocations keep the order of the targets passed in.
type AllocationResult struct {
	Allocations    []Allocation
	TotalAllocated decimal.Decimal
	Unallocated    decimal.Decimal
}

// AmountFor returns the amount allocated to the target, or zero
func (r AllocationResult) AmountFor(targetID uuid.UUID) decimal.Decimal {
	for _, a := range r.Allocations {
		if a.TargetID == targetID {
			return a.Amount
		}
	}
	return decimal.Zero
}

// PaymentAllocationStrategy splits one payment across several invoices
type PaymentAllocationStrategy interface {
	Policy
	// Allocate assigns total across targets. No allocation may exceed its target's remaining balance.
	Allocate(ctx context.Context, total decimal.Decimal, targets []AllocationTarget) (AllocationResult, error)
}
