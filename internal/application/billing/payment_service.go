package billing

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Payment errors
var (
	ErrDuplicateSubmission = shared.NewDomainError("DUPLICATE_SUBMISSION", "This payment was already submitted")
	ErrStorageUnavailable  = shared.NewDomainError("STORAGE_UNAVAILABLE", "Receipt storage is not configured")
)

// PaymentServiceConfig configures payment submission
type PaymentServiceConfig struct {
	// IdempotencyTTL is how long an Idempotency-Key blocks a repeat
	IdempotencyTTL time.Duration
	// UploadURLTTL is how long a receipt upload URL stays valid
	UploadURLTTL time.Duration
}

// PaymentService lets tenants pay their invoices
type PaymentService struct {
	invoiceRepo billing.InvoiceRepository
	txScope     TransactionScope
	policy      billing.AllocationPolicy
	idempotency shared.IdempotencyStore
	storage     ReceiptStorage
	config      PaymentServiceConfig
	events      publisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService.
// idempotency and storage may be nil.
func NewPaymentService(
	invoiceRepo billing.InvoiceRepository,
	txScope TransactionScope,
	policy billing.AllocationPolicy,
	idempotency shared.IdempotencyStore,
	storage ReceiptStorage,
	config PaymentServiceConfig,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if config.UploadURLTTL <= 0 {
		config.UploadURLTTL = 15 * time.Minute
	}
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		txScope:     txScope,
		policy:      policy,
		idempotency: idempotency,
		storage:     storage,
		config:      config,
		events:      publisher{logger: logger},
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher that receives invoice events after commit
func (s *PaymentService) SetEventPublisher(bus shared.EventPublisher) {
	s.events.bus = bus
}

// PayableInvoices returns the tenant's payable invoices, oldest period first,
// with the sum of their remaining balances as the suggested amount
func (s *PaymentService) PayableInvoices(ctx context.Context, userID uuid.UUID) (*PayableResult, error) {
	all, err := s.invoiceRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	payable := make([]*billing.Invoice, 0, len(all))
	for _, inv := range all {
		if inv.IsPayable() {
			payable = append(payable, inv)
		}
	}
	slices.SortStableFunc(payable, func(a, b *billing.Invoice) int {
		switch {
		case a.Period.Before(b.Period):
			return -1
		case b.Period.Before(a.Period):
			return 1
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})
	return &PayableResult{Invoices: payable, DefaultAmount: billing.DefaultPaymentAmount(payable)}, nil
}

// SubmitPayment splits one payment across the selected invoices with the
// allocation policy and stores every share in one transaction.
// The invoices stay pending until the owner verifies them.
func (s *PaymentService) SubmitPayment(ctx context.Context, userID uuid.UUID, req SubmitPaymentRequest) (*SubmitPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "submit",
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrCount, len(req.InvoiceIDs))
	defer span.End()

	if len(req.InvoiceIDs) == 0 {
		return nil, billing.ErrEmptySelection
	}
	seen := make(map[uuid.UUID]struct{}, len(req.InvoiceIDs))
	for _, id := range req.InvoiceIDs {
		if _, dup := seen[id]; dup {
			return nil, billing.ErrDuplicateSelected
		}
		seen[id] = struct{}{}
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	proof := strings.TrimSpace(req.ProofURL)
	if proof == "" {
		return nil, shared.NewDomainError("PROOF_REQUIRED", "Proof of payment is required")
	}
	if s.storage != nil && s.storage.IsObjectKey(proof) && !s.storage.OwnsKey(userID, proof) {
		return nil, shared.NewDomainError("INVALID_PROOF", "Receipt was not uploaded by this user")
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := "payment:" + userID.String() + ":" + req.IdempotencyKey
		fresh, err := s.idempotency.MarkProcessed(ctx, key, s.config.IdempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !fresh {
			telemetry.AddEvent(span, "duplicate_submission")
			return nil, ErrDuplicateSubmission
		}
		result, err := s.submit(ctx, userID, req, proof)
		if err != nil {
			// a failed submission may be retried with the same key
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
			telemetry.RecordError(span, err)
			return nil, err
		}
		return result, nil
	}

	result, err := s.submit(ctx, userID, req, proof)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

func (s *PaymentService) submit(ctx context.Context, userID uuid.UUID, req SubmitPaymentRequest, proof string) (*SubmitPaymentResult, error) {
	found, err := s.invoiceRepo.FindByIDs(ctx, req.InvoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	byID := make(map[uuid.UUID]*billing.Invoice, len(found))
	for _, inv := range found {
		byID[inv.ID] = inv
	}
	// keep the caller's selection order
	invoices := make([]*billing.Invoice, 0, len(req.InvoiceIDs))
	for _, id := range req.InvoiceIDs {
		inv, ok := byID[id]
		if !ok {
			return nil, shared.ErrNotFound
		}
		if inv.UserID != userID {
			return nil, shared.ErrForbidden
		}
		invoices = append(invoices, inv)
	}

	total := billing.DefaultPaymentAmount(invoices)
	if req.Amount != nil {
		total = valueobject.NewMoney(*req.Amount)
	}

	allocation, err := billing.ApplyPayment(ctx, s.policy, billing.PaymentSubmission{
		Invoices: invoices,
		Total:    total,
		ProofURL: proof,
	}, s.now())
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.InvoiceRepo().UpdateBatch(ctx, invoices)
	})
	if err != nil {
		s.logger.Error("Failed to persist payment submission",
			zap.String("user_id", userID.String()),
			zap.Int("invoices", len(invoices)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	s.events.publish(ctx, invoices...)

	shares := make([]AllocatedShare, len(invoices))
	for i, inv := range invoices {
		shares[i] = AllocatedShare{InvoiceID: inv.ID, Amount: valueobject.NewMoney(allocation.AmountFor(inv.ID))}
	}

	s.logger.Info("Payment submitted",
		zap.String("user_id", userID.String()),
		zap.String("total", total.String()),
		zap.String("policy", s.policy.Name()),
		zap.Int("invoices", len(invoices)))

	return &SubmitPaymentResult{
		Total:       total,
		Policy:      s.policy.Name(),
		Allocations: shares,
		Invoices:    invoices,
	}, nil
}

// CreateReceiptUpload issues an object key and a presigned upload URL for a receipt
func (s *PaymentService) CreateReceiptUpload(ctx context.Context, userID uuid.UUID, filename, contentType string) (*ReceiptUpload, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Receipts must be images or PDF files")
	}
	key := s.storage.NewKey(userID, filename)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.UploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload url: %w", err)
	}
	return &ReceiptUpload{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}
