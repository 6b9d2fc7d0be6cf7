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
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService generates monthly invoices and serves them to owners and tenants
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	tenancyRepo  tenancy.TenancyRepository
	propertyRepo property.PropertyRepository
	txScope      TransactionScope
	events       publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	tenancyRepo tenancy.TenancyRepository,
	propertyRepo property.PropertyRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		tenancyRepo:  tenancyRepo,
		propertyRepo: propertyRepo,
		txScope:      txScope,
		events:       publisher{logger: logger},
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the publisher that receives invoice events after commit
func (s *InvoiceService) SetEventPublisher(bus shared.EventPublisher) {
	s.events.bus = bus
}

// Generate creates the missing invoices of a month for the tenancies of the owner's properties
func (s *InvoiceService) Generate(ctx context.Context, ownerID uuid.UUID, year, month int) (*GenerateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "generate",
		telemetry.SpanAttrUserID, ownerID.String())
	defer span.End()

	period, err := billing.NewPeriod(year, month)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriod, period.String())

	owned, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load owned properties: %w", err)
	}
	if len(owned) == 0 {
		return &GenerateResult{Period: period, Invoices: []*billing.Invoice{}}, nil
	}

	active := true
	tenancies, err := s.tenancyRepo.FindAll(ctx, tenancy.Filter{PropertyIDs: property.IDs(owned), Active: &active})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load tenancies: %w", err)
	}
	if len(tenancies) == 0 {
		return &GenerateResult{Period: period, Invoices: []*billing.Invoice{}}, nil
	}

	result, err := s.generate(ctx, period, tenancies, tenancyIDs(tenancies))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCount, result.Created)
	return result, nil
}

// GenerateScheduled creates the missing invoices of a period across every property
func (s *InvoiceService) GenerateScheduled(ctx context.Context, period billing.Period) (*GenerateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "generate_scheduled",
		telemetry.SpanAttrPeriod, period.String())
	defer span.End()

	active := true
	tenancies, err := s.tenancyRepo.FindAll(ctx, tenancy.Filter{Active: &active})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load tenancies: %w", err)
	}

	// nil tenancy IDs load the period's invoices of every tenancy
	result, err := s.generate(ctx, period, tenancies, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCount, result.Created)
	return result, nil
}

func (s *InvoiceService) generate(ctx context.Context, period billing.Period, tenancies []*tenancy.Tenancy, ids []uuid.UUID) (*GenerateResult, error) {
	existing, err := s.invoiceRepo.FindByPeriod(ctx, period, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing invoices: %w", err)
	}

	plan, err := billing.PlanInvoices(period, tenancies, existing, s.now())
	if err != nil {
		return nil, err
	}

	if len(plan.Invoices) > 0 {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			return repos.InvoiceRepo().CreateBatch(ctx, plan.Invoices)
		})
		if err != nil {
			s.logger.Error("Failed to persist generated invoices",
				zap.String("period", period.String()),
				zap.Int("count", len(plan.Invoices)),
				zap.Error(err))
			return nil, fmt.Errorf("failed to create invoices: %w", err)
		}
		s.events.publish(ctx, plan.Invoices...)
	}

	s.logger.Info("Invoices generated",
		zap.String("period", period.String()),
		zap.Int("created", len(plan.Invoices)),
		zap.Int("skipped", plan.Skipped))

	return &GenerateResult{
		Period:   period,
		Created:  len(plan.Invoices),
		Skipped:  plan.Skipped,
		Invoices: plan.Invoices,
	}, nil
}

// List returns the invoices visible to the caller. Owners see invoices of the
// properties they own; tenants see their own.
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, role identity.Role, q InvoiceQuery) (*InvoicePage, error) {
	filter := billing.InvoiceFilter{
		Filter:    shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: "period", OrderDir: "desc"},
		Status:    q.Status,
		Period:    q.Period,
		TenancyID: q.TenancyID,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	switch role {
	case identity.RoleOwner:
		owned, err := s.propertyRepo.FindByOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load owned properties: %w", err)
		}
		if len(owned) == 0 {
			return &InvoicePage{Items: []*billing.Invoice{}, Page: filter.Page, PageSize: filter.PageSize}, nil
		}
		filter.PropertyIDs = property.IDs(owned)
	case identity.RoleTenant:
		filter.UserID = &userID
	default:
		return nil, shared.ErrForbidden
	}

	items, total, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return &InvoicePage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Get returns one invoice if the caller may see it
func (s *InvoiceService) Get(ctx context.Context, userID uuid.UUID, role identity.Role, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	switch role {
	case identity.RoleOwner:
		if _, err := authorizeOwner(ctx, s.propertyRepo, userID, inv); err != nil {
			return nil, err
		}
	case identity.RoleTenant:
		if inv.UserID != userID {
			return nil, shared.ErrForbidden
		}
	default:
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

// UpdateUtilities sets an invoice's utilities and recomputes its total due
func (s *InvoiceService) UpdateUtilities(ctx context.Context, ownerID, invoiceID uuid.UUID, amount decimal.Decimal) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_utilities",
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrAmount, amount.String())
	defer span.End()

	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := authorizeOwner(ctx, s.propertyRepo, ownerID, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := inv.UpdateUtilities(valueobject.NewMoney(amount), s.now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	s.events.publish(ctx, inv)
	return inv, nil
}

// authorizeOwner loads the invoice's property and checks the caller owns it
func authorizeOwner(ctx context.Context, repo property.PropertyRepository, ownerID uuid.UUID, inv *billing.Invoice) (*property.Property, error) {
	prop, err := repo.FindByID(ctx, inv.PropertyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrForbidden
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if !prop.IsOwnedBy(ownerID) {
		return nil, shared.ErrForbidden
	}
	return prop, nil
}

func tenancyIDs(tenancies []*tenancy.Tenancy) []uuid.UUID {
	ids := make([]uuid.UUID, len(tenancies))
	for i, t := range tenancies {
		ids[i] = t.ID
	}
	return ids
}
