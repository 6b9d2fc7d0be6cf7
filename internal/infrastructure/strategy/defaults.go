package strategy

import (
	"github.com/rentflow/backend/internal/domain/shared/strategy"
	"github.com/rentflow/backend/internal/infrastructure/strategy/allocation"
)

// NewRegistryWithDefaults registers even_split (the default) and oldest_first
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()
	builtins := []strategy.PaymentAllocationStrategy{
		allocation.NewEvenSplitAllocationStrategy(),
		allocation.NewOldestFirstAllocationStrategy(),
	}
	for _, s := range builtins {
		if err := r.RegisterAllocationStrategy(s); err != nil {
			return nil, err
		}
	}
	if err := r.SetDefaultAllocation(allocation.EvenSplitName); err != nil {
		return nil, err
	}
	return r, nil
}
