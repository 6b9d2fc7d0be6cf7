package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Receipt check outcomes reported to metrics
const (
	ReceiptOutcomeAccurate   = "accurate"
	ReceiptOutcomeMismatch   = "mismatch"
	ReceiptOutcomeError      = "error"
	ReceiptOutcomeNoProof    = "no_proof"
	ReceiptOutcomeFetchError = "fetch_error"
)

// ReceiptCheckRecorder counts receipt check outcomes
type ReceiptCheckRecorder interface {
	RecordReceiptCheck(ctx context.Context, outcome string)
}

// VerificationService lets owners review submitted payments
type VerificationService struct {
	invoiceRepo  billing.InvoiceRepository
	propertyRepo property.PropertyRepository
	userRepo     identity.UserRepository
	storage      ReceiptStorage
	judge        billing.ReceiptJudge
	recorder     ReceiptCheckRecorder
	events       publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewVerificationService creates a new VerificationService. storage may be nil,
// in which case every proof is passed to the judge as a URL.
func NewVerificationService(
	invoiceRepo billing.InvoiceRepository,
	propertyRepo property.PropertyRepository,
	userRepo identity.UserRepository,
	storage ReceiptStorage,
	judge billing.ReceiptJudge,
	logger *zap.Logger,
) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		invoiceRepo:  invoiceRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		storage:      storage,
		judge:        judge,
		events:       publisher{logger: logger},
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the publisher that receives invoice events after commit
func (s *VerificationService) SetEventPublisher(bus shared.EventPublisher) {
	s.events.bus = bus
}

// SetReceiptCheckRecorder sets where receipt check outcomes are counted
func (s *VerificationService) SetReceiptCheckRecorder(r ReceiptCheckRecorder) {
	s.recorder = r
}

// VerifyWithAI asks the receipt judge whether the submitted proof shows the
// expected amount. The judgement is advisory and never changes the invoice.
func (s *VerificationService) VerifyWithAI(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.ReceiptJudgement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "verification", "verify_with_ai",
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrUserID, ownerID.String())
	defer span.End()

	inv, prop, err := s.loadOwned(ctx, ownerID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if inv.PaymentProofURL == nil || *inv.PaymentProofURL == "" {
		s.record(ctx, ReceiptOutcomeNoProof)
		return nil, shared.NewDomainError("PROOF_REQUIRED", "No payment proof has been submitted for this invoice")
	}

	check := billing.ReceiptCheck{
		InvoiceID:      inv.ID,
		ExpectedAmount: inv.TotalDue,
		PropertyName:   prop.Name,
		ReceiptURL:     *inv.PaymentProofURL,
	}

	tenant, err := s.userRepo.FindByID(ctx, inv.UserID)
	switch {
	case err == nil:
		check.TenantName = tenant.Name
	case errors.Is(err, shared.ErrNotFound):
		check.TenantName = "Unknown Tenant"
	default:
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	if s.storage != nil && s.storage.IsObjectKey(check.ReceiptURL) {
		img, err := s.storage.Fetch(ctx, check.ReceiptURL)
		if err != nil {
			s.record(ctx, ReceiptOutcomeFetchError)
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to fetch receipt",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			return nil, fmt.Errorf("failed to fetch receipt: %w", err)
		}
		check.Image = img
		if url, _, err := s.storage.GenerateDownloadURL(ctx, check.ReceiptURL, 5*time.Minute); err == nil {
			check.ReceiptURL = url
		}
	}

	judgement, err := s.judge.Judge(ctx, check)
	if err != nil {
		s.record(ctx, ReceiptOutcomeError)
		telemetry.RecordError(span, err)
		s.logger.Warn("Receipt judge failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", billing.ErrAIService, err)
	}

	outcome := ReceiptOutcomeMismatch
	if judgement.IsAccurate {
		outcome = ReceiptOutcomeAccurate
	}
	s.record(ctx, outcome)
	telemetry.SetAttributes(span, "outcome", outcome)
	return judgement, nil
}

// MarkPaid settles an invoice after the owner confirmed the payment
func (s *VerificationService) MarkPaid(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.transition(ctx, "mark_paid", ownerID, invoiceID, (*billing.Invoice).MarkPaid)
}

// MarkPartial records that the owner accepted a partial payment
func (s *VerificationService) MarkPartial(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.transition(ctx, "mark_partial", ownerID, invoiceID, (*billing.Invoice).MarkPartial)
}

// Reject discards a submitted payment so the tenant can submit again
func (s *VerificationService) Reject(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.transition(ctx, "reject", ownerID, invoiceID, (*billing.Invoice).Reject)
}

func (s *VerificationService) transition(
	ctx context.Context,
	method string,
	ownerID, invoiceID uuid.UUID,
	apply func(*billing.Invoice, time.Time) error,
) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "verification", method,
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrUserID, ownerID.String())
	defer span.End()

	inv, _, err := s.loadOwned(ctx, ownerID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := apply(inv, s.now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	s.events.publish(ctx, inv)

	s.logger.Info("Invoice verified",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("action", method),
		zap.String("status", inv.Status.String()))
	return inv, nil
}

func (s *VerificationService) loadOwned(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, *property.Property, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	prop, err := authorizeOwner(ctx, s.propertyRepo, ownerID, inv)
	if err != nil {
		return nil, nil, err
	}
	return inv, prop, nil
}

func (s *VerificationService) record(ctx context.Context, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordReceiptCheck(ctx, outcome)
	}
}
