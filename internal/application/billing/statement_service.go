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
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrStatementUnavailable is returned when no statement renderer is configured
var ErrStatementUnavailable = shared.NewDomainError("STATEMENT_UNAVAILABLE", "Statement rendering is not available")

// Statement is the printable view of one invoice
type Statement struct {
	InvoiceID       uuid.UUID
	Period          billing.Period
	Status          billing.InvoiceStatus
	PropertyName    string
	PropertyAddress string
	TenantName      string
	TenantEmail     string
	Rent            valueobject.Money
	Utilities       valueobject.Money
	TotalDue        valueobject.Money
	Submitted       valueobject.Money
	Remaining       valueobject.Money
	SubmissionDate  *time.Time
	PaymentDate     *time.Time
	IssuedAt        time.Time
	GeneratedAt     time.Time
}

// StatementRenderer turns a statement into a PDF document
type StatementRenderer interface {
	RenderStatement(ctx context.Context, st *Statement) ([]byte, error)
}

// StatementDocument is a rendered statement ready to be served
type StatementDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StatementService renders invoice statements for owners and tenants
type StatementService struct {
	invoiceRepo  billing.InvoiceRepository
	propertyRepo property.PropertyRepository
	userRepo     identity.UserRepository
	renderer     StatementRenderer
	logger       *zap.Logger
	now          func() time.Time
}

// NewStatementService creates a new StatementService. renderer may be nil when
// printing is disabled.
func NewStatementService(
	invoiceRepo billing.InvoiceRepository,
	propertyRepo property.PropertyRepository,
	userRepo identity.UserRepository,
	renderer StatementRenderer,
	logger *zap.Logger,
) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{
		invoiceRepo:  invoiceRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		renderer:     renderer,
		logger:       logger,
		now:          time.Now,
	}
}

// Render builds and renders the statement of an invoice visible to the caller
func (s *StatementService) Render(ctx context.Context, userID uuid.UUID, role identity.Role, invoiceID uuid.UUID) (*StatementDocument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "render",
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrRole, role.String())
	defer span.End()

	if s.renderer == nil {
		return nil, ErrStatementUnavailable
	}

	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	prop, err := s.propertyRepo.FindByID(ctx, inv.PropertyID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	switch role {
	case identity.RoleOwner:
		if prop == nil || !prop.IsOwnedBy(userID) {
			return nil, shared.ErrForbidden
		}
	case identity.RoleTenant:
		if inv.UserID != userID {
			return nil, shared.ErrForbidden
		}
	default:
		return nil, shared.ErrForbidden
	}

	st := &Statement{
		InvoiceID:      inv.ID,
		Period:         inv.Period,
		Status:         inv.Status,
		Rent:           inv.RentAmount,
		Utilities:      inv.UtilitiesAmount,
		TotalDue:       inv.TotalDue,
		Submitted:      inv.Submitted(),
		Remaining:      inv.RemainingBalance(),
		SubmissionDate: inv.SubmissionDate,
		PaymentDate:    inv.PaymentDate,
		IssuedAt:       inv.CreatedAt,
		GeneratedAt:    s.now(),
		TenantName:     "Unknown Tenant",
	}
	if prop != nil {
		st.PropertyName = prop.Name
		st.PropertyAddress = prop.Address
	}

	tenant, err := s.userRepo.FindByID(ctx, inv.UserID)
	switch {
	case err == nil:
		st.TenantName = tenant.Name
		st.TenantEmail = tenant.Email
	case errors.Is(err, shared.ErrNotFound):
	default:
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	data, err := s.renderer.RenderStatement(ctx, st)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Statement rendering failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	telemetry.SetAttributes(span, "bytes", len(data))

	return &StatementDocument{
		Filename:    fmt.Sprintf("statement-%s-%s.pdf", inv.Period.String(), inv.ID.String()[:8]),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
