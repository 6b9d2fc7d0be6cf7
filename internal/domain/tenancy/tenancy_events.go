package tenancy

import (
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Aggregate type constant for Tenancy
const AggregateTypeTenancy = "Tenancy"

// Tenancy domain event types
const (
	EventTypeTenancyCreated     = "TenancyCreated"
	EventTypeTenancyDeactivated = "TenancyDeactivated"
)

// TenancyCreatedEvent is published when a tenant is onboarded to a property
type TenancyCreatedEvent struct {
	shared.BaseDomainEvent
	UserID     uuid.UUID `json:"user_id"`
	PropertyID uuid.UUID `json:"property_id"`
}

// NewTenancyCreatedEvent creates a new TenancyCreatedEvent
func NewTenancyCreatedEvent(t *Tenancy) *TenancyCreatedEvent {
	return &TenancyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenancyCreated, AggregateTypeTenancy, t.ID),
		UserID:          t.UserID,
		PropertyID:      t.PropertyID,
	}
}

// TenancyDeactivatedEvent is published when a lease ends
type TenancyDeactivatedEvent struct {
	shared.BaseDomainEvent
	UserID     uuid.UUID `json:"user_id"`
	PropertyID uuid.UUID `json:"property_id"`
}

// NewTenancyDeactivatedEvent creates a new TenancyDeactivatedEvent
func NewTenancyDeactivatedEvent(t *Tenancy) *TenancyDeactivatedEvent {
	return &TenancyDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenancyDeactivated, AggregateTypeTenancy, t.ID),
		UserID:          t.UserID,
		PropertyID:      t.PropertyID,
	}
}
