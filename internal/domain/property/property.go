package property

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Property errors
var (
	ErrOwnerRequired = shared.NewDomainError("OWNER_REQUIRED", "Property must have at least one owner")
	ErrPropertyInUse = shared.NewDomainError("PROPERTY_IN_USE", "Property still has tenancies and cannot be deleted")
)

// Property is a rentable unit with one or more owners
type Property struct {
	shared.BaseAggregateRoot
	Name     string
	Address  string
	OwnerIDs []uuid.UUID
}

// NewProperty creates a property owned by ownerID
func NewProperty(name, address string, ownerID uuid.UUID) (*Property, error) {
	if ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	p := &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerIDs:          []uuid.UUID{ownerID},
	}
	if err := p.setDetails(name, address); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewPropertyCreatedEvent(p))
	return p, nil
}

// Update changes the property's name and address
func (p *Property) Update(name, address string) error {
	if err := p.setDetails(name, address); err != nil {
		return err
	}
	p.Touch(time.Now())
	p.AddDomainEvent(NewPropertyUpdatedEvent(p))
	return nil
}

// AddOwner grants ownership to another user. Ownership is never removed.
func (p *Property) AddOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if p.IsOwnedBy(ownerID) {
		return nil
	}
	p.OwnerIDs = append(p.OwnerIDs, ownerID)
	p.Touch(time.Now())
	p.AddDomainEvent(NewPropertyUpdatedEvent(p))
	return nil
}

// IsOwnedBy reports whether the user is one of the owners
func (p *Property) IsOwnedBy(userID uuid.UUID) bool {
	return slices.Contains(p.OwnerIDs, userID)
}

func (p *Property) setDetails(name, address string) error {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Property name cannot exceed 200 characters")
	}
	if address == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Property address cannot be empty")
	}
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Property address cannot exceed 500 characters")
	}
	p.Name = name
	p.Address = address
	return nil
}

// IDs returns the IDs of the given properties
func IDs(properties []*Property) []uuid.UUID {
	ids := make([]uuid.UUID, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}
	return ids
}
