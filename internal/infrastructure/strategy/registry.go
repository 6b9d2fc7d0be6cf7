package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/strategy"
)

// StrategyRegistry holds the payment allocation policies selectable by name
type StrategyRegistry struct {
	mu                sync.RWMutex
	allocation        map[string]strategy.PaymentAllocationStrategy
	defaultAllocation string
}

// NewStrategyRegistry creates an empty registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		allocation: make(map[string]strategy.PaymentAllocationStrategy),
	}
}

// RegisterAllocationStrategy adds a policy; names are unique
func (r *StrategyRegistry) RegisterAllocationStrategy(s strategy.PaymentAllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.allocation[name]; exists {
		return fmt.Errorf("%w: allocation policy %q already registered", shared.ErrAlreadyExists, name)
	}
	r.allocation[name] = s
	return nil
}

// GetAllocationStrategy looks a policy up by name. An empty name selects the default.
func (r *StrategyRegistry) GetAllocationStrategy(name string) (strategy.PaymentAllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		if r.defaultAllocation == "" {
			return nil, fmt.Errorf("%w: no default allocation policy", shared.ErrNotFound)
		}
		name = r.defaultAllocation
	}
	s, ok := r.allocation[name]
	if !ok {
		return nil, fmt.Errorf("%w: allocation policy %q", shared.ErrNotFound, name)
	}
	return s, nil
}

// ListAllocationStrategies returns the registered names, sorted
func (r *StrategyRegistry) ListAllocationStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.allocation))
	for name := range r.allocation {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDefaultAllocation picks the policy used when config names none
func (r *StrategyRegistry) SetDefaultAllocation(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.allocation[name]; !ok {
		return fmt.Errorf("%w: allocation policy %q", shared.ErrNotFound, name)
	}
	r.defaultAllocation = name
	return nil
}

// DefaultAllocation returns the default policy name
func (r *StrategyRegistry) DefaultAllocation() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultAllocation
}
