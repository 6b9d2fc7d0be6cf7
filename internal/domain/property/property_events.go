package property

import "github.com/rentflow/backend/internal/domain/shared"

// Aggregate type constant for Property
const AggregateTypeProperty = "Property"

// Property domain event types
const (
	EventTypePropertyCreated = "PropertyCreated"
	EventTypePropertyUpdated = "PropertyUpdated"
)

// PropertyCreatedEvent is published when a property is created
type PropertyCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewPropertyCreatedEvent creates a new PropertyCreatedEvent
func NewPropertyCreatedEvent(p *Property) *PropertyCreatedEvent {
	return &PropertyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyCreated, AggregateTypeProperty, p.ID),
		Name:            p.Name,
	}
}

// PropertyUpdatedEvent is published when a property's details or owners change
type PropertyUpdatedEvent struct {
	shared.BaseDomainEvent
	Name       string `json:"name"`
	OwnerCount int    `json:"owner_count"`
}

// NewPropertyUpdatedEvent creates a new PropertyUpdatedEvent
func NewPropertyUpdatedEvent(p *Property) *PropertyUpdatedEvent {
	return &PropertyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyUpdated, AggregateTypeProperty, p.ID),
		Name:            p.Name,
		OwnerCount:      len(p.OwnerIDs),
	}
}
