package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// GenerateResult is the outcome of one generation run
type GenerateResult struct {
	Period   billing.Period
	Created  int
	Skipped  int
	Invoices []*billing.Invoice
}

// InvoiceQuery filters invoice listings
type InvoiceQuery struct {
	Page      int
	PageSize  int
	Status    *billing.InvoiceStatus
	Period    *billing.Period
	TenancyID *uuid.UUID
}

// InvoicePage is a page of invoices
type InvoicePage struct {
	Items    []*billing.Invoice
	Total    int64
	Page     int
	PageSize int
}

// PayableResult lists the invoices a tenant can pay now
type PayableResult struct {
	Invoices      []*billing.Invoice
	DefaultAmount valueobject.Money
}

// SubmitPaymentRequest is a tenant payment across selected invoices.
// A nil Amount pays the sum of the selected remaining balances.
type SubmitPaymentRequest struct {
	InvoiceIDs     []uuid.UUID
	Amount         *decimal.Decimal
	ProofURL       string
	IdempotencyKey string
}

// AllocatedShare is the part of a payment applied to one invoice
type AllocatedShare struct {
	InvoiceID uuid.UUID
	Amount    valueobject.Money
}

// SubmitPaymentResult reports how a payment was split
type SubmitPaymentResult struct {
	Total       valueobject.Money
	Policy      string
	Allocations []AllocatedShare
	Invoices    []*billing.Invoice
}

// ReceiptUpload tells the client where to PUT a receipt and which key to submit as proof
type ReceiptUpload struct {
	Key       string
	UploadURL string
	ExpiresAt time.Time
}
