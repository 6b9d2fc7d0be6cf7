package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending" // No submission, or a submission awaiting review
	InvoiceStatusPartial InvoiceStatus = "partial" // Owner acknowledged a partial payment
	InvoiceStatusPaid    InvoiceStatus = "paid"    // Owner confirmed full payment
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid
}

// CanAcceptPayment returns true if a tenant may submit a payment in this status
func (s InvoiceStatus) CanAcceptPayment() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartial
}

// Invoice errors
var (
	ErrInvoiceNotPayable = shared.NewDomainError("INVOICE_NOT_PAYABLE", "Invoice has no outstanding balance")
	ErrInvoiceFinalized  = shared.NewDomainError("INVALID_STATE", "Invoice is already paid")
)

// Invoice is the billing record for one tenancy in one month
type Invoice struct {
	shared.BaseAggregateRoot
	TenancyID       uuid.UUID
	UserID          uuid.UUID
	PropertyID      uuid.UUID
	Period          Period
	RentAmount      valueobject.Money
	UtilitiesAmount valueobject.Money
	TotalDue        valueobject.Money
	Status          InvoiceStatus

	// SubmittedPaymentAmount is the cumulative amount the tenant has submitted; nil when nothing is submitted
	SubmittedPaymentAmount *valueobject.Money
	PaymentProofURL        *string
	SubmissionDate         *time.Time
	PaymentDate            *time.Time
}

// NewInvoice creates a pending invoice for a tenancy's rent in a period
func NewInvoice(tenancyID, userID, propertyID uuid.UUID, period Period, rent valueobject.Money, now time.Time) (*Invoice, error) {
	if tenancyID == uuid.Nil || userID == uuid.Nil || propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice requires tenancy, user and property")
	}
	if period.IsZero() {
		return nil, ErrInvalidPeriod
	}
	if rent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Rent amount cannot be negative")
	}
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRootAt(now),
		TenancyID:         tenancyID,
		UserID:            userID,
		PropertyID:        propertyID,
		Period:            period,
		RentAmount:        rent,
		UtilitiesAmount:   valueobject.Zero(),
		TotalDue:          rent,
		Status:            InvoiceStatusPending,
	}
	inv.AddDomainEvent(NewInvoiceGeneratedEvent(inv))
	return inv, nil
}

// Submitted returns the cumulative submitted amount, zero when none
func (i *Invoice) Submitted() valueobject.Money {
	if i.SubmittedPaymentAmount == nil {
		return valueobject.Zero()
	}
	return *i.SubmittedPaymentAmount
}

// RemainingBalance is totalDue minus the submitted amount
func (i *Invoice) RemainingBalance() valueobject.Money {
	return i.TotalDue.Subtract(i.Submitted())
}

// IsPayable reports whether a tenant can select the invoice for payment
func (i *Invoice) IsPayable() bool {
	return i.Status.CanAcceptPayment() && i.RemainingBalance().IsPositive()
}

// AwaitingVerification reports whether a submitted proof waits for the owner
func (i *Invoice) AwaitingVerification() bool {
	return i.Status == InvoiceStatusPending && i.PaymentProofURL != nil
}

// SubmitPayment records a tenant payment share with its proof.
// The status returns to pending for owner review.
func (i *Invoice) SubmitPayment(amount valueobject.Money, proofURL string, now time.Time) error {
	if !i.Status.CanAcceptPayment() {
		return ErrInvoiceFinalized
	}
	if !i.IsPayable() {
		return ErrInvoiceNotPayable
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	remaining := i.RemainingBalance()
	if amount.GreaterThan(remaining) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, remaining))
	}
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return shared.NewDomainError("PROOF_REQUIRED", "Proof of payment is required")
	}

	submitted := i.Submitted().Add(amount)
	i.SubmittedPaymentAmount = &submitted
	i.PaymentProofURL = &proofURL
	i.SubmissionDate = &now
	i.Status = InvoiceStatusPending
	i.Touch(now)
	i.AddDomainEvent(NewInvoicePaymentSubmittedEvent(i, amount))
	return nil
}

// MarkPaid settles the invoice. The proof is retained.
func (i *Invoice) MarkPaid(now time.Time) error {
	if i.Status.IsTerminal() {
		return ErrInvoiceFinalized
	}
	i.Status = InvoiceStatusPaid
	i.PaymentDate = &now
	i.Touch(now)
	i.AddDomainEvent(NewInvoicePaidEvent(i))
	return nil
}

// MarkPartial records that the owner accepted a partial payment
func (i *Invoice) MarkPartial(now time.Time) error {
	if i.Status.IsTerminal() {
		return ErrInvoiceFinalized
	}
	if i.SubmittedPaymentAmount == nil {
		return shared.NewDomainError("INVALID_STATE", "No payment has been submitted for this invoice")
	}
	i.Status = InvoiceStatusPartial
	i.Touch(now)
	i.AddDomainEvent(NewInvoicePartiallyPaidEvent(i))
	return nil
}

// Reject discards the tenant's submission so it must be resubmitted from scratch.
// Amounts owed are untouched.
func (i *Invoice) Reject(now time.Time) error {
	if i.Status.IsTerminal() {
		return ErrInvoiceFinalized
	}
	i.Status = InvoiceStatusPending
	i.PaymentProofURL = nil
	i.SubmittedPaymentAmount = nil
	i.SubmissionDate = nil
	i.Touch(now)
	i.AddDomainEvent(NewInvoicePaymentRejectedEvent(i))
	return nil
}

// UpdateUtilities sets the utilities amount and recomputes totalDue
func (i *Invoice) UpdateUtilities(amount valueobject.Money, now time.Time) error {
	if i.Status.IsTerminal() {
		return ErrInvoiceFinalized
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Utilities amount cannot be negative")
	}
	if i.RentAmount.Add(amount).LessThan(i.Submitted()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Total due cannot fall below the amount already submitted")
	}
	i.UtilitiesAmount = amount
	i.TotalDue = i.RentAmount.Add(amount)
	i.Touch(now)
	i.AddDomainEvent(NewInvoiceUtilitiesUpdatedEvent(i))
	return nil
}
