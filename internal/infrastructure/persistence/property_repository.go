package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM.
// Owners live in property_owners and are written with the property.
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

func preloadOwners(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create creates a property together with its owners
func (r *GormPropertyRepository) Create(ctx context.Context, p *property.Property) error {
	model := models.PropertyModelFromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// Update updates the property's details and appends new owners
func (r *GormPropertyRepository) Update(ctx context.Context, p *property.Property) error {
	model := models.PropertyModelFromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PropertyModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"name":       model.Name,
				"address":    model.Address,
				"updated_at": model.UpdatedAt,
			})
		if err := mustAffect(result); err != nil {
			return err
		}

		var existing []uuid.UUID
		if err := tx.Model(&models.PropertyOwnerModel{}).
			Where("property_id = ?", model.ID).
			Pluck("user_id", &existing).Error; err != nil {
			return err
		}
		known := make(map[uuid.UUID]struct{}, len(existing))
		for _, id := range existing {
			known[id] = struct{}{}
		}
		for _, owner := range model.Owners {
			if _, ok := known[owner.UserID]; ok {
				continue
			}
			if err := tx.Create(&owner).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a property and its owner links
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyOwnerModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PropertyModel{}, "id = ?", id)
		return mustAffect(result)
	})
}

// FindByID finds a property by ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	model, err := first[models.PropertyModel](r.db.WithContext(ctx).Preload("Owners", preloadOwners), "id = ?", id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner finds the properties a user owns
func (r *GormPropertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*property.Property, error) {
	owned := r.db.Model(&models.PropertyOwnerModel{}).Select("property_id").Where("user_id = ?", ownerID)
	return r.find(r.db.WithContext(ctx).Where("id IN (?)", owned))
}

// FindByIDs finds properties by IDs
func (r *GormPropertyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*property.Property, error) {
	if len(ids) == 0 {
		return []*property.Property{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

// FindAll returns every property
func (r *GormPropertyRepository) FindAll(ctx context.Context) ([]*property.Property, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *GormPropertyRepository) find(query *gorm.DB) ([]*property.Property, error) {
	var propertyModels []models.PropertyModel
	if err := query.
		Preload("Owners", preloadOwners).
		Order("name ASC").
		Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	properties := make([]*property.Property, len(propertyModels))
	for i := range propertyModels {
		properties[i] = propertyModels[i].ToDomain()
	}
	return properties, nil
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ property.PropertyRepository = (*GormPropertyRepository)(nil)
