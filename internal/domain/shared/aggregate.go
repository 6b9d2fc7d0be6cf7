package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps every stored row carries
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity { return NewBaseEntityAt(time.Now()) }

// NewBaseEntityAt stamps a fresh id with both timestamps set to at
func NewBaseEntityAt(at time.Time) BaseEntity {
	return BaseEntity{ID: uuid.New(), CreatedAt: at, UpdatedAt: at}
}

func (e *BaseEntity) Touch(at time.Time) { e.UpdatedAt = at }

// AggregateRoot records events until the application layer drains them
type AggregateRoot interface {
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot carries no version: concurrent writers follow last-write-wins.
type BaseAggregateRoot struct {
	BaseEntity
	domainEvents []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot { return NewBaseAggregateRootAt(time.Now()) }

func NewBaseAggregateRootAt(at time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityAt(at)}
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.domainEvents }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.domainEvents = nil }

// CollectEvents drains the pending events of every aggregate, in order
func CollectEvents[T AggregateRoot](aggregates ...T) []DomainEvent {
	var events []DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	return events
}
