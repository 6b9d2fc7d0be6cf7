package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/shopspring/decimal"
)

// TenancyModel is the persistence model for the Tenancy aggregate
type TenancyModel struct {
	BaseModel
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	PropertyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	FixedMonthlyRent decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaysUtilities    bool            `gorm:"not null"`
	StartDate        time.Time       `gorm:"type:date;not null"`
	EndDate          *time.Time      `gorm:"type:date"`
	Active           bool            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TenancyModel) TableName() string {
	return "tenancies"
}

// ToDomain converts the persistence model to a domain Tenancy
func (m *TenancyModel) ToDomain() *tenancy.Tenancy {
	return &tenancy.Tenancy{
		BaseAggregateRoot: m.toAggregateRoot(),
		UserID:            m.UserID,
		PropertyID:        m.PropertyID,
		FixedMonthlyRent:  valueobject.NewMoney(m.FixedMonthlyRent),
		PaysUtilities:     m.PaysUtilities,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Tenancy
func (m *TenancyModel) FromDomain(t *tenancy.Tenancy) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.UserID = t.UserID
	m.PropertyID = t.PropertyID
	m.FixedMonthlyRent = t.FixedMonthlyRent.Amount()
	m.PaysUtilities = t.PaysUtilities
	m.StartDate = t.StartDate
	m.EndDate = t.EndDate
	m.Active = t.Active
}

// TenancyModelFromDomain creates a new persistence model from a domain Tenancy
func TenancyModelFromDomain(t *tenancy.Tenancy) *TenancyModel {
	m := &TenancyModel{}
	m.FromDomain(t)
	return m
}
