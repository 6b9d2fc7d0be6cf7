package billing

import (
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// Aggregate type constant for Invoice
const AggregateTypeInvoice = "Invoice"

// Invoice domain event types
const (
	EventTypeInvoiceGenerated        = "InvoiceGenerated"
	EventTypeInvoicePaymentSubmitted = "InvoicePaymentSubmitted"
	EventTypeInvoicePaid             = "InvoicePaid"
	EventTypeInvoicePartiallyPaid    = "InvoicePartiallyPaid"
	EventTypeInvoicePaymentRejected  = "InvoicePaymentRejected"
	EventTypeInvoiceUtilitiesUpdated = "InvoiceUtilitiesUpdated"
)

// InvoiceGeneratedEvent is published when an invoice is created for a period
type InvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	TenancyID  uuid.UUID         `json:"tenancy_id"`
	PropertyID uuid.UUID         `json:"property_id"`
	Period     string            `json:"period"`
	TotalDue   valueobject.Money `json:"total_due"`
}

// NewInvoiceGeneratedEvent creates a new InvoiceGeneratedEvent
func NewInvoiceGeneratedEvent(inv *Invoice) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceGenerated, AggregateTypeInvoice, inv.ID),
		TenancyID:       inv.TenancyID,
		PropertyID:      inv.PropertyID,
		Period:          inv.Period.String(),
		TotalDue:        inv.TotalDue,
	}
}

// InvoicePaymentSubmittedEvent is published when a tenant submits a payment share
type InvoicePaymentSubmittedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID         `json:"user_id"`
	Amount    valueobject.Money `json:"amount"`
	Submitted valueobject.Money `json:"submitted"`
}

// NewInvoicePaymentSubmittedEvent creates a new InvoicePaymentSubmittedEvent
func NewInvoicePaymentSubmittedEvent(inv *Invoice, amount valueobject.Money) *InvoicePaymentSubmittedEvent {
	return &InvoicePaymentSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentSubmitted, AggregateTypeInvoice, inv.ID),
		UserID:          inv.UserID,
		Amount:          amount,
		Submitted:       inv.Submitted(),
	}
}

// InvoicePaidEvent is published when the owner marks an invoice paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	TotalDue  valueobject.Money `json:"total_due"`
	Submitted valueobject.Money `json:"submitted"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		TotalDue:        inv.TotalDue,
		Submitted:       inv.Submitted(),
	}
}

// InvoicePartiallyPaidEvent is published when the owner accepts a partial payment
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	Submitted valueobject.Money `json:"submitted"`
	Remaining valueobject.Money `json:"remaining"`
}

// NewInvoicePartiallyPaidEvent creates a new InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(inv *Invoice) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePartiallyPaid, AggregateTypeInvoice, inv.ID),
		Submitted:       inv.Submitted(),
		Remaining:       inv.RemainingBalance(),
	}
}

// InvoicePaymentRejectedEvent is published when the owner rejects a submission
type InvoicePaymentRejectedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewInvoicePaymentRejectedEvent creates a new InvoicePaymentRejectedEvent
func NewInvoicePaymentRejectedEvent(inv *Invoice) *InvoicePaymentRejectedEvent {
	return &InvoicePaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRejected, AggregateTypeInvoice, inv.ID),
		UserID:          inv.UserID,
	}
}

// InvoiceUtilitiesUpdatedEvent is published when the owner edits utilities
type InvoiceUtilitiesUpdatedEvent struct {
	shared.BaseDomainEvent
	UtilitiesAmount valueobject.Money `json:"utilities_amount"`
	TotalDue        valueobject.Money `json:"total_due"`
}

// NewInvoiceUtilitiesUpdatedEvent creates a new InvoiceUtilitiesUpdatedEvent
func NewInvoiceUtilitiesUpdatedEvent(inv *Invoice) *InvoiceUtilitiesUpdatedEvent {
	return &InvoiceUtilitiesUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUtilitiesUpdated, AggregateTypeInvoice, inv.ID),
		UtilitiesAmount: inv.UtilitiesAmount,
		TotalDue:        inv.TotalDue,
	}
}
