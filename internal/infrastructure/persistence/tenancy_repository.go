package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenancyRepository implements TenancyRepository using GORM
type GormTenancyRepository struct {
	db *gorm.DB
}

// NewGormTenancyRepository creates a new GormTenancyRepository
func NewGormTenancyRepository(db *gorm.DB) *GormTenancyRepository {
	return &GormTenancyRepository{db: db}
}

// Create creates a new tenancy
func (r *GormTenancyRepository) Create(ctx context.Context, t *tenancy.Tenancy) error {
	return r.db.WithContext(ctx).Create(models.TenancyModelFromDomain(t)).Error
}

// Update updates an existing tenancy
func (r *GormTenancyRepository) Update(ctx context.Context, t *tenancy.Tenancy) error {
	model := models.TenancyModelFromDomain(t)
	result := r.db.WithContext(ctx).Model(&models.TenancyModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"property_id":        model.PropertyID,
			"fixed_monthly_rent": model.FixedMonthlyRent,
			"pays_utilities":     model.PaysUtilities,
			"start_date":         model.StartDate,
			"end_date":           model.EndDate,
			"active":             model.Active,
			"updated_at":         model.UpdatedAt,
		})
	return mustAffect(result)
}

// Delete deletes a tenancy by ID
func (r *GormTenancyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TenancyModel{}, "id = ?", id)
	return mustAffect(result)
}

// FindByID finds a tenancy by ID
func (r *GormTenancyRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Tenancy, error) {
	model, err := first[models.TenancyModel](r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserID finds every tenancy held by the user
func (r *GormTenancyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*tenancy.Tenancy, error) {
	return r.FindAll(ctx, tenancy.Filter{UserID: &userID})
}

// FindAll finds tenancies matching the filter, oldest first
func (r *GormTenancyRepository) FindAll(ctx context.Context, filter tenancy.Filter) ([]*tenancy.Tenancy, error) {
	query := r.db.WithContext(ctx).Model(&models.TenancyModel{})
	if filter.PropertyIDs != nil {
		if len(filter.PropertyIDs) == 0 {
			return []*tenancy.Tenancy{}, nil
		}
		query = query.Where("property_id IN ?", filter.PropertyIDs)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var tenancyModels []models.TenancyModel
	if err := query.Order("start_date ASC, created_at ASC").Find(&tenancyModels).Error; err != nil {
		return nil, err
	}
	tenancies := make([]*tenancy.Tenancy, len(tenancyModels))
	for i := range tenancyModels {
		tenancies[i] = tenancyModels[i].ToDomain()
	}
	return tenancies, nil
}

// CountByProperty counts tenancies of any state referencing the property
func (r *GormTenancyRepository) CountByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TenancyModel{}).
		Where("property_id = ?", propertyID).
		Count(&count).Error
	return count, err
}

// Ensure GormTenancyRepository implements TenancyRepository
var _ tenancy.TenancyRepository = (*GormTenancyRepository)(nil)
