package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// PropertyInput is the editable part of a property
type PropertyInput struct {
	Name    string
	Address string
}

// ExpenseInput is the editable part of an expense
type ExpenseInput struct {
	PropertyID  uuid.UUID
	Type        property.ExpenseType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// ExpenseQuery filters expense listings
type ExpenseQuery struct {
	Page       int
	PageSize   int
	PropertyID *uuid.UUID
	Type       *property.ExpenseType
	FromDate   *time.Time
	ToDate     *time.Time
}

// ExpensePage is a page of expenses
type ExpensePage struct {
	Items    []*property.Expense
	Total    int64
	Page     int
	PageSize int
}
