package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// Filter contains filter options for querying tenancies
type Filter struct {
	PropertyIDs []uuid.UUID
	UserID      *uuid.UUID
	Active      *bool
}

// TenancyRepository defines the interface for tenancy persistence
type TenancyRepository interface {
	Create(ctx context.Context, t *Tenancy) error
	Update(ctx context.Context, t *Tenancy) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Tenancy, error)
	// FindByUserID returns every tenancy held by the user
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Tenancy, error)
	FindAll(ctx context.Context, filter Filter) ([]*Tenancy, error)
	// CountByProperty counts tenancies of any state that reference the property
	CountByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error)
}
