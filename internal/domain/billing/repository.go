package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// InvoiceFilter contains filter options for querying invoices
type InvoiceFilter struct {
	shared.Filter
	PropertyIDs []uuid.UUID
	UserID      *uuid.UUID
	TenancyID   *uuid.UUID
	Status      *InvoiceStatus
	Period      *Period
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Invoice, error)
	// FindAll returns matching invoices plus the total count ignoring pagination
	FindAll(ctx context.Context, filter InvoiceFilter) ([]*Invoice, int64, error)
	// FindByPeriod returns the period's invoices; an empty tenancyIDs means all tenancies
	FindByPeriod(ctx context.Context, period Period, tenancyIDs []uuid.UUID) ([]*Invoice, error)
	FindByTenancyAndPeriod(ctx context.Context, tenancyID uuid.UUID, period Period) (*Invoice, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Invoice, error)
	FindByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]*Invoice, error)
	Create(ctx context.Context, inv *Invoice) error
	// CreateBatch inserts all invoices or none
	CreateBatch(ctx context.Context, invoices []*Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	// UpdateBatch updates all invoices or none
	UpdateBatch(ctx context.Context, invoices []*Invoice) error
}
