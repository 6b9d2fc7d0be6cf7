package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create creates a new expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *property.Expense) error {
	return r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(e)).Error
}

// Update updates an existing expense
func (r *GormExpenseRepository) Update(ctx context.Context, e *property.Expense) error {
	model := models.ExpenseModelFromDomain(e)
	result := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"property_id": model.PropertyID,
			"type":        model.Type,
			"amount":      model.Amount,
			"description": model.Description,
			"date":        model.Date,
			"updated_at":  model.UpdatedAt,
		})
	return mustAffect(result)
}

// Delete deletes an expense by ID
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	return mustAffect(result)
}

// FindByID finds an expense by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Expense, error) {
	model, err := first[models.ExpenseModel](r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds expenses matching the filter, newest first by default
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter property.ExpenseFilter) ([]*property.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{})
	if len(filter.PropertyIDs) > 0 {
		query = query.Where("property_id IN ?", filter.PropertyIDs)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ? ESCAPE '\\'", containsPattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = expenseSort.apply(query, filter.OrderBy, filter.OrderDir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var expenseModels []models.ExpenseModel
	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, 0, err
	}
	expenses := make([]*property.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToDomain()
	}
	return expenses, total, nil
}

// FindByProperties returns every expense of the given properties
func (r *GormExpenseRepository) FindByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]*property.Expense, error) {
	if len(propertyIDs) == 0 {
		return []*property.Expense{}, nil
	}
	var expenseModels []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("property_id IN ?", propertyIDs).
		Order("date DESC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]*property.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ property.ExpenseRepository = (*GormExpenseRepository)(nil)
