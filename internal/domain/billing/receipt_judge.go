package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// ErrAIService marks a failed call to the receipt judge, as opposed to a negative judgement
var ErrAIService = shared.NewDomainError("AI_SERVICE_ERROR", "Receipt verification service is unavailable")

// ReceiptImage is the raw receipt content sent to the judge
type ReceiptImage struct {
	ContentType string
	Data        []byte
}

// ReceiptCheck is the input to a receipt judgement
type ReceiptCheck struct {
	InvoiceID      uuid.UUID
	ExpectedAmount valueobject.Money
	TenantName     string
	PropertyName   string

	// ReceiptURL is used when Image is nil
	ReceiptURL string
	Image      *ReceiptImage
}

// ReceiptJudgement is the advisory result of checking a receipt
type ReceiptJudgement struct {
	IsAccurate      bool
	ExtractedAmount *valueobject.Money
	Notes           string
}

// ReceiptJudge checks whether a receipt matches the amount expected.
// A judgement never changes invoice state.
type ReceiptJudge interface {
	Judge(ctx context.Context, check ReceiptCheck) (*ReceiptJudgement, error)
}
