package property

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// ExpenseType classifies a property cost
type ExpenseType string

const (
	ExpenseTypeFixedService     ExpenseType = "FIXED_SERVICE"
	ExpenseTypeMaintenanceOther ExpenseType = "MAINTENANCE_OTHER"
)

// IsValid returns true if the expense type is known
func (t ExpenseType) IsValid() bool {
	return t == ExpenseTypeFixedService || t == ExpenseTypeMaintenanceOther
}

// String returns the string representation
func (t ExpenseType) String() string {
	return string(t)
}

// Expense is a non-invoice cost recorded against a property
type Expense struct {
	shared.BaseEntity
	PropertyID  uuid.UUID
	Type        ExpenseType
	Amount      valueobject.Money
	Description string
	Date        time.Time
}

// NewExpense creates an expense for a property
func NewExpense(propertyID uuid.UUID, expenseType ExpenseType, amount valueobject.Money, description string, date time.Time) (*Expense, error) {
	e := &Expense{BaseEntity: shared.NewBaseEntity()}
	if err := e.set(propertyID, expenseType, amount, description, date); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the expense details
func (e *Expense) Update(propertyID uuid.UUID, expenseType ExpenseType, amount valueobject.Money, description string, date time.Time) error {
	if err := e.set(propertyID, expenseType, amount, description, date); err != nil {
		return err
	}
	e.Touch(time.Now())
	return nil
}

func (e *Expense) set(propertyID uuid.UUID, expenseType ExpenseType, amount valueobject.Money, description string, date time.Time) error {
	if propertyID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if !expenseType.IsValid() {
		return shared.NewDomainError("INVALID_EXPENSE_TYPE", "Expense type must be FIXED_SERVICE or MAINTENANCE_OTHER")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}
	e.PropertyID = propertyID
	e.Type = expenseType
	e.Amount = amount
	e.Description = description
	e.Date = date
	return nil
}
