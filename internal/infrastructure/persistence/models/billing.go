package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
// (tenancy_id, period) is unique.
type InvoiceModel struct {
	BaseModel
	TenancyID              uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_tenancy_period,priority:1"`
	UserID                 uuid.UUID             `gorm:"type:uuid;not null;index"`
	PropertyID             uuid.UUID             `gorm:"type:uuid;not null;index"`
	Period                 string                `gorm:"type:varchar(7);not null;uniqueIndex:idx_invoices_tenancy_period,priority:2;index"`
	RentAmount             decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UtilitiesAmount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalDue               decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status                 billing.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	SubmittedPaymentAmount *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	PaymentProofURL        *string               `gorm:"type:text"`
	SubmissionDate         *time.Time
	PaymentDate            *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
// A malformed stored period yields a zero Period.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	period, _ := billing.ParsePeriod(m.Period)
	inv := &billing.Invoice{
		BaseAggregateRoot: m.toAggregateRoot(),
		TenancyID:         m.TenancyID,
		UserID:            m.UserID,
		PropertyID:        m.PropertyID,
		Period:            period,
		RentAmount:        valueobject.NewMoney(m.RentAmount),
		UtilitiesAmount:   valueobject.NewMoney(m.UtilitiesAmount),
		TotalDue:          valueobject.NewMoney(m.TotalDue),
		Status:            m.Status,
		PaymentProofURL:   m.PaymentProofURL,
		SubmissionDate:    m.SubmissionDate,
		PaymentDate:       m.PaymentDate,
	}
	if m.SubmittedPaymentAmount != nil {
		submitted := valueobject.NewMoney(*m.SubmittedPaymentAmount)
		inv.SubmittedPaymentAmount = &submitted
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.TenancyID = inv.TenancyID
	m.UserID = inv.UserID
	m.PropertyID = inv.PropertyID
	m.Period = inv.Period.String()
	m.RentAmount = inv.RentAmount.Amount()
	m.UtilitiesAmount = inv.UtilitiesAmount.Amount()
	m.TotalDue = inv.TotalDue.Amount()
	m.Status = inv.Status
	m.SubmittedPaymentAmount = nil
	if inv.SubmittedPaymentAmount != nil {
		amount := inv.SubmittedPaymentAmount.Amount()
		m.SubmittedPaymentAmount = &amount
	}
	m.PaymentProofURL = inv.PaymentProofURL
	m.SubmissionDate = inv.SubmissionDate
	m.PaymentDate = inv.PaymentDate
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
