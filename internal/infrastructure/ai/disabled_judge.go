package ai

import (
	"context"
	"errors"

	"github.com/rentflow/backend/internal/domain/billing"
)

// ErrJudgeDisabled is returned when no model is configured
var ErrJudgeDisabled = errors.New("AI receipt verification is disabled")

// DisabledReceiptJudge refuses every check
type DisabledReceiptJudge struct{}

// Judge always fails with ErrJudgeDisabled
func (DisabledReceiptJudge) Judge(context.Context, billing.ReceiptCheck) (*billing.ReceiptJudgement, error) {
	return nil, ErrJudgeDisabled
}

var _ billing.ReceiptJudge = DisabledReceiptJudge{}
