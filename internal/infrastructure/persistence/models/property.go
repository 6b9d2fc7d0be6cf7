package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for the Property aggregate.
// Owners are stored in property_owners.
type PropertyModel struct {
	BaseModel
	Name    string               `gorm:"type:varchar(200);not null"`
	Address string               `gorm:"type:varchar(500);not null"`
	Owners  []PropertyOwnerModel `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// PropertyOwnerModel links a property to one of its owners
type PropertyOwnerModel struct {
	PropertyID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position   int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PropertyOwnerModel) TableName() string {
	return "property_owners"
}

// ToDomain converts the persistence model to a domain Property.
// Owners must be preloaded, ordered by position.
func (m *PropertyModel) ToDomain() *property.Property {
	owners := make([]uuid.UUID, len(m.Owners))
	for i, o := range m.Owners {
		owners[i] = o.UserID
	}
	return &property.Property{
		BaseAggregateRoot: m.toAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		OwnerIDs:          owners,
	}
}

// FromDomain populates the persistence model from a domain Property
func (m *PropertyModel) FromDomain(p *property.Property) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Address = p.Address
	m.Owners = make([]PropertyOwnerModel, len(p.OwnerIDs))
	for i, id := range p.OwnerIDs {
		m.Owners[i] = PropertyOwnerModel{
			PropertyID: p.ID,
			UserID:     id,
			Position:   i,
			CreatedAt:  p.UpdatedAt,
		}
	}
}

// PropertyModelFromDomain creates a new persistence model from a domain Property
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}

// ExpenseModel is the persistence model for property expenses
type ExpenseModel struct {
	BaseModel
	PropertyID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type        property.ExpenseType `gorm:"type:varchar(30);not null"`
	Amount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Description string               `gorm:"type:text;not null"`
	Date        time.Time            `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *property.Expense {
	return &property.Expense{
		BaseEntity:  shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		PropertyID:  m.PropertyID,
		Type:        m.Type,
		Amount:      valueobject.NewMoney(m.Amount),
		Description: m.Description,
		Date:        m.Date,
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *property.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.PropertyID = e.PropertyID
	m.Type = e.Type
	m.Amount = e.Amount.Amount()
	m.Description = e.Description
	m.Date = e.Date
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *property.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
