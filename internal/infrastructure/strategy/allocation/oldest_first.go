package allocation

import (
	"context"
	"sort"

	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// OldestFirstName is the registry name of the oldest-first policy
const OldestFirstName = "oldest_first"

// OldestFirstAllocationStrategy pays the earliest billing period in full before the next
type OldestFirstAllocationStrategy struct {
	strategy.Named
}

// NewOldestFirstAllocationStrategy creates a new oldest-first allocation strategy
func NewOldestFirstAllocationStrategy() *OldestFirstAllocationStrategy {
	return &OldestFirstAllocationStrategy{
		Named: strategy.NewNamed(OldestFirstName,
			"Settle the earliest billing period before the next"),
	}
}

// Allocate allocates the payment to targets ordered by period, then creation time.
// Allocations are reported in the order the targets were given.
func (s *OldestFirstAllocationStrategy) Allocate(
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

	order := make([]int, len(targets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := targets[order[a]], targets[order[b]]
		if ta.Period != tb.Period {
			return ta.Period < tb.Period
		}
		return ta.CreatedAt.Before(tb.CreatedAt)
	})

	amounts := make([]decimal.Decimal, len(targets))
	remaining := total
	for _, idx := range order {
		if !remaining.IsPositive() {
			break
		}
		balance := targets[idx].Remaining
		if !balance.IsPositive() {
			continue
		}
		amount := decimal.Min(remaining, balance)
		amounts[idx] = amount
		remaining = remaining.Sub(amount)
	}

	allocations := make([]strategy.Allocation, len(targets))
	totalAllocated := decimal.Zero
	for i, target := range targets {
		balance := decimal.Max(target.Remaining, decimal.Zero)
		allocations[i] = strategy.Allocation{
			TargetID:      target.ID,
			Amount:        amounts[i],
			BalanceBefore: balance,
			BalanceAfter:  balance.Sub(amounts[i]),
		}
		totalAllocated = totalAllocated.Add(amounts[i])
	}

	return strategy.AllocationResult{
		Allocations:    allocations,
		TotalAllocated: totalAllocated,
		Unallocated:    remaining,
	}, nil
}
