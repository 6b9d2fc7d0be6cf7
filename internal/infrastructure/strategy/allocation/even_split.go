package allocation

import (
	"context"

	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/strategy"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EvenSplitName is the registry name of the even-split policy
const EvenSplitName = "even_split"

// EvenSplitAllocationStrategy divides a payment evenly across the selected
// invoices, capping each share at that invoice's remaining balance.
// Whatever the caps cut off stays unallocated; it is not redistributed.
type EvenSplitAllocationStrategy struct {
	strategy.Named
}

// NewEvenSplitAllocationStrategy creates a new even-split allocation strategy
func NewEvenSplitAllocationStrategy() *EvenSplitAllocationStrategy {
	return &EvenSplitAllocationStrategy{
		Named: strategy.NewNamed(EvenSplitName,
			"Split the payment evenly, capped at each invoice's remaining balance"),
	}
}

// Allocate assigns min(remaining, total/n) to each target
func (s *EvenSplitAllocationStrategy) Allocate(
	ctx context.Context,
	total decimal.Decimal,
	targets []strategy.AllocationTarget,
) (strategy.AllocationResult, error) {
	if !total.IsPositive() {
		return strategy.AllocationResult{}, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if len(targets) == 0 {
		return strategy.AllocationResult{}, shared.NewDomainError("EMPTY_SELECTION", "Select at least one invoice to pay")
	}

	share := total.DivRound(decimal.NewFromInt(int64(len(targets))), valueobject.MoneyScale+2).Truncate(valueobject.MoneyScale)

	allocations := make([]strategy.Allocation, 0, len(targets))
	totalAllocated := decimal.Zero
	for _, target := range targets {
		balance := decimal.Max(target.Remaining, decimal.Zero)
		amount := decimal.Min(balance, share)

		allocations = append(allocations, strategy.Allocation{
			TargetID:      target.ID,
			Amount:        amount,
			BalanceBefore: balance,
			BalanceAfter:  balance.Sub(amount),
		})
		totalAllocated = totalAllocated.Add(amount)
	}

	return strategy.AllocationResult{
		Allocations:    allocations,
		TotalAllocated: totalAllocated,
		Unallocated:    total.Sub(totalAllocated),
	}, nil
}
