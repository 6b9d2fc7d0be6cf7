package property

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// PropertyRepository defines the interface for property persistence
type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	// FindByOwner returns the properties the user owns
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Property, error)
	FindAll(ctx context.Context) ([]*Property, error)
}

// ExpenseFilter contains filter options for querying expenses
type ExpenseFilter struct {
	shared.Filter
	PropertyIDs []uuid.UUID
	Type        *ExpenseType
	FromDate    *time.Time
	ToDate      *time.Time
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	// FindAll returns matching expenses plus the total count ignoring pagination
	FindAll(ctx context.Context, filter ExpenseFilter) ([]*Expense, int64, error)
	// FindByProperties returns every expense of the given properties
	FindByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]*Expense, error)
}
