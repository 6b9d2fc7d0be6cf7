package tenancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// Tenancy is a lease binding one tenant user to one property
type Tenancy struct {
	shared.BaseAggregateRoot
	UserID           uuid.UUID
	PropertyID       uuid.UUID
	FixedMonthlyRent valueobject.Money
	PaysUtilities    bool
	StartDate        time.Time
	EndDate          *time.Time
	Active           bool
}

// Terms are the editable lease terms
type Terms struct {
	PropertyID       uuid.UUID
	FixedMonthlyRent valueobject.Money
	PaysUtilities    bool
	StartDate        time.Time
}

// NewTenancy creates an active tenancy for a user
func NewTenancy(userID uuid.UUID, terms Terms) (*Tenancy, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Tenant user ID cannot be empty")
	}
	if err := terms.validate(); err != nil {
		return nil, err
	}
	t := &Tenancy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		PropertyID:        terms.PropertyID,
		FixedMonthlyRent:  terms.FixedMonthlyRent,
		PaysUtilities:     terms.PaysUtilities,
		StartDate:         terms.StartDate,
		Active:            true,
	}
	t.AddDomainEvent(NewTenancyCreatedEvent(t))
	return t, nil
}

// Update replaces the lease terms
func (t *Tenancy) Update(terms Terms) error {
	if err := terms.validate(); err != nil {
		return err
	}
	t.PropertyID = terms.PropertyID
	t.FixedMonthlyRent = terms.FixedMonthlyRent
	t.PaysUtilities = terms.PaysUtilities
	t.StartDate = terms.StartDate
	t.Touch(time.Now())
	return nil
}

// Deactivate ends the lease. Inactive tenancies receive no new invoices.
func (t *Tenancy) Deactivate(endDate time.Time) error {
	if !t.Active {
		return shared.NewDomainError("INVALID_STATE", "Tenancy is already inactive")
	}
	if endDate.Before(t.StartDate) {
		return shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}
	t.Active = false
	t.EndDate = &endDate
	t.Touch(time.Now())
	t.AddDomainEvent(NewTenancyDeactivatedEvent(t))
	return nil
}

func (terms Terms) validate() error {
	if terms.PropertyID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if terms.FixedMonthlyRent.IsNegative() {
		return shared.NewDomainError("INVALID_RENT", "Monthly rent cannot be negative")
	}
	if terms.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	return nil
}

// SelectCurrent picks the tenancy to bind for a tenant session.
// One tenancy binds automatically. With several, selected must name one of them;
// otherwise requiresSelection is true and current is nil.
func SelectCurrent(tenancies []*Tenancy, selected uuid.UUID) (current *Tenancy, requiresSelection bool, err error) {
	switch len(tenancies) {
	case 0:
		return nil, false, nil
	case 1:
		if selected != uuid.Nil && selected != tenancies[0].ID {
			return nil, false, shared.NewDomainError("INVALID_TENANCY", "Selected tenancy does not belong to this user")
		}
		return tenancies[0], false, nil
	}
	if selected == uuid.Nil {
		return nil, true, nil
	}
	for _, t := range tenancies {
		if t.ID == selected {
			return t, false, nil
		}
	}
	return nil, true, shared.NewDomainError("INVALID_TENANCY", "Selected tenancy does not belong to this user")
}
