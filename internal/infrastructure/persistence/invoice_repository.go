package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// createBatchSize bounds the rows per INSERT statement in CreateBatch
const createBatchSize = 100

// ErrDuplicateInvoice is returned when an invoice already exists for the tenancy and period
var ErrDuplicateInvoice = shared.NewDomainError("DUPLICATE_INVOICE", "An invoice already exists for this tenancy and period")

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	model, err := first[models.InvoiceModel](r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds invoices by IDs, in no particular order
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*billing.Invoice, error) {
	if len(ids) == 0 {
		return []*billing.Invoice{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

// FindAll finds invoices matching the filter with pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.PropertyIDs != nil {
		if len(filter.PropertyIDs) == 0 {
			return []*billing.Invoice{}, 0, nil
		}
		query = query.Where("property_id IN ?", filter.PropertyIDs)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.TenancyID != nil {
		query = query.Where("tenancy_id = ?", *filter.TenancyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Period != nil {
		query = query.Where("period = ?", filter.Period.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = invoiceSort.apply(query, filter.OrderBy, filter.OrderDir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	invoices, err := r.find(query)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// FindByPeriod finds a period's invoices, optionally restricted to some tenancies
func (r *GormInvoiceRepository) FindByPeriod(ctx context.Context, period billing.Period, tenancyIDs []uuid.UUID) ([]*billing.Invoice, error) {
	query := r.db.WithContext(ctx).Where("period = ?", period.String())
	if len(tenancyIDs) > 0 {
		query = query.Where("tenancy_id IN ?", tenancyIDs)
	}
	return r.find(query)
}

// FindByTenancyAndPeriod finds the invoice of a tenancy for a period
func (r *GormInvoiceRepository) FindByTenancyAndPeriod(ctx context.Context, tenancyID uuid.UUID, period billing.Period) (*billing.Invoice, error) {
	model, err := first[models.InvoiceModel](r.db.WithContext(ctx).Where("tenancy_id = ? AND period = ?", tenancyID, period.String()))
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserID finds a tenant's invoices, oldest period first
func (r *GormInvoiceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*billing.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID).Order("period ASC"))
}

// FindByProperties finds every invoice of the given properties
func (r *GormInvoiceRepository) FindByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]*billing.Invoice, error) {
	if len(propertyIDs) == 0 {
		return []*billing.Invoice{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("property_id IN ?", propertyIDs).Order("period DESC"))
}

// Create creates a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	if err := r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		return translateInvoiceError(err)
	}
	return nil
}

// CreateBatch inserts the invoices. Call it inside a transaction scope for all-or-nothing semantics.
func (r *GormInvoiceRepository) CreateBatch(ctx context.Context, invoices []*billing.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	invoiceModels := make([]*models.InvoiceModel, len(invoices))
	for i, inv := range invoices {
		invoiceModels[i] = models.InvoiceModelFromDomain(inv)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(invoiceModels, createBatchSize).Error; err != nil {
		return translateInvoiceError(err)
	}
	return nil
}

// Update writes every mutable invoice column
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"utilities_amount":         model.UtilitiesAmount,
			"total_due":                model.TotalDue,
			"status":                   model.Status,
			"submitted_payment_amount": model.SubmittedPaymentAmount,
			"payment_proof_url":        model.PaymentProofURL,
			"submission_date":          model.SubmissionDate,
			"payment_date":             model.PaymentDate,
			"updated_at":               model.UpdatedAt,
		})
	return mustAffect(result)
}

// UpdateBatch updates the invoices one by one. Call it inside a transaction scope
// for all-or-nothing semantics.
func (r *GormInvoiceRepository) UpdateBatch(ctx context.Context, invoices []*billing.Invoice) error {
	for _, inv := range invoices {
		if err := r.Update(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

func (r *GormInvoiceRepository) find(query *gorm.DB) ([]*billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]*billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

func translateInvoiceError(err error) error {
	return onDuplicate(err, ErrDuplicateInvoice)
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
