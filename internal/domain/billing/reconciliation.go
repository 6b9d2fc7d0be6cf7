package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/strategy"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// AllocationPolicy decides how one payment is split across the selected invoices
type AllocationPolicy interface {
	strategy.PaymentAllocationStrategy
}

// Reconciliation errors
var (
	ErrEmptySelection    = shared.NewDomainError("EMPTY_SELECTION", "Select at least one invoice to pay")
	ErrDuplicateSelected = shared.NewDomainError("DUPLICATE_SELECTION", "An invoice cannot be selected twice")
	ErrNothingAllocated  = shared.NewDomainError("INVALID_AMOUNT", "Payment amount is too small to allocate to the selected invoices")
)

// PaymentSubmission is a tenant's payment across a set of invoices
type PaymentSubmission struct {
	Invoices []*Invoice
	Total    valueobject.Money
	ProofURL string
}

// DefaultPaymentAmount is the sum of the remaining balances of the invoices
func DefaultPaymentAmount(invoices []*Invoice) valueobject.Money {
	total := valueobject.Zero()
	for _, inv := range invoices {
		total = total.Add(inv.RemainingBalance())
	}
	return total
}

// AllocationTargets converts invoices into allocation targets, keeping order
func AllocationTargets(invoices []*Invoice) []strategy.AllocationTarget {
	targets := make([]strategy.AllocationTarget, len(invoices))
	for i, inv := range invoices {
		targets[i] = strategy.AllocationTarget{
			ID:        inv.ID,
			Period:    inv.Period.String(),
			Remaining: inv.RemainingBalance().Amount(),
			CreatedAt: inv.CreatedAt,
		}
	}
	return targets
}

// ApplyPayment allocates the submission with the policy and records each share
// on its invoice. Either every invoice is updated or none is.
func ApplyPayment(ctx context.Context, policy AllocationPolicy, sub PaymentSubmission, now time.Time) (strategy.AllocationResult, error) {
	if len(sub.Invoices) == 0 {
		return strategy.AllocationResult{}, ErrEmptySelection
	}
	seen := make(map[uuid.UUID]struct{}, len(sub.Invoices))
	for _, inv := range sub.Invoices {
		if _, dup := seen[inv.ID]; dup {
			return strategy.AllocationResult{}, ErrDuplicateSelected
		}
		seen[inv.ID] = struct{}{}
		if !inv.IsPayable() {
			return strategy.AllocationResult{}, ErrInvoiceNotPayable
		}
	}
	if !sub.Total.IsPositive() {
		return strategy.AllocationResult{}, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if sub.ProofURL == "" {
		return strategy.AllocationResult{}, shared.NewDomainError("PROOF_REQUIRED", "Proof of payment is required")
	}

	result, err := policy.Allocate(ctx, sub.Total.Amount(), AllocationTargets(sub.Invoices))
	if err != nil {
		return strategy.AllocationResult{}, err
	}
	if !result.TotalAllocated.IsPositive() {
		return strategy.AllocationResult{}, ErrNothingAllocated
	}

	// validate every share before mutating any invoice
	shares := make([]valueobject.Money, len(sub.Invoices))
	for i, inv := range sub.Invoices {
		share := valueobject.NewMoney(result.AmountFor(inv.ID))
		if share.GreaterThan(inv.RemainingBalance()) {
			return strategy.AllocationResult{}, shared.NewDomainError("EXCEEDS_OUTSTANDING", "Allocation exceeds the invoice's remaining balance")
		}
		shares[i] = share
	}
	for i, inv := range sub.Invoices {
		if !shares[i].IsPositive() {
			continue
		}
		if err := inv.SubmitPayment(shares[i], sub.ProofURL, now); err != nil {
			return strategy.AllocationResult{}, err
		}
	}
	return result, nil
}
