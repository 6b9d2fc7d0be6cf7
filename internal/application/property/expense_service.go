package property

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExpenseService records costs against the actor's properties
type ExpenseService struct {
	expenseRepo  property.ExpenseRepository
	propertyRepo property.PropertyRepository
	logger       *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo property.ExpenseRepository, propertyRepo property.PropertyRepository, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{expenseRepo: expenseRepo, propertyRepo: propertyRepo, logger: logger}
}

// Create records an expense on an owned property
func (s *ExpenseService) Create(ctx context.Context, ownerID uuid.UUID, input ExpenseInput) (*property.Expense, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "create",
		telemetry.SpanAttrPropertyID, input.PropertyID.String(),
		telemetry.SpanAttrAmount, input.Amount.String())
	defer span.End()

	if _, err := LoadOwned(ctx, s.propertyRepo, ownerID, input.PropertyID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	e, err := property.NewExpense(input.PropertyID, input.Type, valueobject.NewMoney(input.Amount), input.Description, input.Date)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.expenseRepo.Create(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

// Update replaces an expense. Moving it to another property requires owning both.
func (s *ExpenseService) Update(ctx context.Context, ownerID, expenseID uuid.UUID, input ExpenseInput) (*property.Expense, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "update")
	defer span.End()

	e, err := s.load(ctx, ownerID, expenseID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.PropertyID != e.PropertyID {
		if _, err := LoadOwned(ctx, s.propertyRepo, ownerID, input.PropertyID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if err := e.Update(input.PropertyID, input.Type, valueobject.NewMoney(input.Amount), input.Description, input.Date); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.expenseRepo.Update(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

// Delete removes an expense of an owned property
func (s *ExpenseService) Delete(ctx context.Context, ownerID, expenseID uuid.UUID) error {
	if _, err := s.load(ctx, ownerID, expenseID); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, expenseID)
}

// List returns the expenses of the actor's properties, newest first
func (s *ExpenseService) List(ctx context.Context, ownerID uuid.UUID, q ExpenseQuery) (*ExpensePage, error) {
	filter := property.ExpenseFilter{
		Filter:   shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: "date", OrderDir: "desc"},
		Type:     q.Type,
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	empty := &ExpensePage{Items: []*property.Expense{}, Page: filter.Page, PageSize: filter.PageSize}

	owned, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned properties: %w", err)
	}
	ids := property.IDs(owned)
	if q.PropertyID != nil {
		if !slices.Contains(ids, *q.PropertyID) {
			return empty, nil
		}
		ids = []uuid.UUID{*q.PropertyID}
	}
	if len(ids) == 0 {
		return empty, nil
	}
	filter.PropertyIDs = ids

	items, total, err := s.expenseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return &ExpensePage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *ExpenseService) load(ctx context.Context, ownerID, expenseID uuid.UUID) (*property.Expense, error) {
	e, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := LoadOwned(ctx, s.propertyRepo, ownerID, e.PropertyID); err != nil {
		return nil, err
	}
	return e, nil
}
