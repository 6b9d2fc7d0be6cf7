// Package workspace assembles the read models a signed-in user works with.
package workspace

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Snapshot is everything the client shows for a session, fetched in one call
type Snapshot struct {
	Role              identity.Role
	AvailableRoles    identity.RoleSet
	User              *identity.User
	Properties        []*property.Property
	Tenancies         []*tenancy.Tenancy
	Users             []*identity.User
	Invoices          []*billing.Invoice
	Expenses          []*property.Expense
	CurrentTenancyID  *uuid.UUID
	RequiresSelection bool
}

// Service builds workspace snapshots and the owner dashboard
type Service struct {
	propertyRepo property.PropertyRepository
	expenseRepo  property.ExpenseRepository
	tenancyRepo  tenancy.TenancyRepository
	invoiceRepo  billing.InvoiceRepository
	userRepo     identity.UserRepository
	logger       *zap.Logger
}

// NewService creates a new workspace Service
func NewService(
	propertyRepo property.PropertyRepository,
	expenseRepo property.ExpenseRepository,
	tenancyRepo tenancy.TenancyRepository,
	invoiceRepo billing.InvoiceRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		propertyRepo: propertyRepo,
		expenseRepo:  expenseRepo,
		tenancyRepo:  tenancyRepo,
		invoiceRepo:  invoiceRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// Refresh fetches the collections visible to the session
func (s *Service) Refresh(ctx context.Context, session *appidentity.Session) (*Snapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "workspace", "refresh",
		telemetry.SpanAttrUserID, session.UserID.String(),
		telemetry.SpanAttrRole, session.Role().String())
	defer span.End()

	snap := &Snapshot{
		Role:              session.Role(),
		AvailableRoles:    session.Resolution.AvailableRoles,
		User:              session.User,
		Properties:        []*property.Property{},
		Tenancies:         []*tenancy.Tenancy{},
		Users:             []*identity.User{},
		Invoices:          []*billing.Invoice{},
		Expenses:          []*property.Expense{},
		CurrentTenancyID:  session.CurrentTenancyID(),
		RequiresSelection: session.RequiresSelection,
	}

	var err error
	switch session.Role() {
	case identity.RoleOwner:
		err = s.fillOwner(ctx, session.UserID, snap)
	case identity.RoleTenant:
		err = s.fillTenant(ctx, session, snap)
	default:
		err = shared.ErrForbidden
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCount, len(snap.Invoices))
	return snap, nil
}

func (s *Service) fillOwner(ctx context.Context, ownerID uuid.UUID, snap *Snapshot) error {
	props, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load properties: %w", err)
	}
	if len(props) == 0 {
		return nil
	}
	snap.Properties = props
	ids := property.IDs(props)

	if snap.Tenancies, err = s.tenancyRepo.FindAll(ctx, tenancy.Filter{PropertyIDs: ids}); err != nil {
		return fmt.Errorf("failed to load tenancies: %w", err)
	}
	if snap.Invoices, err = s.invoiceRepo.FindByProperties(ctx, ids); err != nil {
		return fmt.Errorf("failed to load invoices: %w", err)
	}
	if snap.Expenses, err = s.expenseRepo.FindByProperties(ctx, ids); err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	tenantIDs := make([]uuid.UUID, 0, len(snap.Tenancies))
	for _, t := range snap.Tenancies {
		if !slices.Contains(tenantIDs, t.UserID) {
			tenantIDs = append(tenantIDs, t.UserID)
		}
	}
	if len(tenantIDs) > 0 {
		if snap.Users, err = s.userRepo.FindByIDs(ctx, tenantIDs); err != nil {
			return fmt.Errorf("failed to load tenants: %w", err)
		}
	}
	return nil
}

func (s *Service) fillTenant(ctx context.Context, session *appidentity.Session, snap *Snapshot) error {
	snap.Tenancies = session.Tenancies
	if session.User != nil {
		snap.Users = []*identity.User{session.User}
	}

	invoices, err := s.invoiceRepo.FindByUserID(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to load invoices: %w", err)
	}
	if current := session.CurrentTenancyID(); current != nil {
		invoices = slices.DeleteFunc(invoices, func(inv *billing.Invoice) bool {
			return inv.TenancyID != *current
		})
	}
	snap.Invoices = invoices

	propertyIDs := make([]uuid.UUID, 0, len(session.Tenancies))
	for _, t := range session.Tenancies {
		if !slices.Contains(propertyIDs, t.PropertyID) {
			propertyIDs = append(propertyIDs, t.PropertyID)
		}
	}
	if len(propertyIDs) > 0 {
		if snap.Properties, err = s.propertyRepo.FindByIDs(ctx, propertyIDs); err != nil {
			return fmt.Errorf("failed to load properties: %w", err)
		}
	}
	return nil
}

// Dashboard aggregates the owner's invoices and expenses across owned properties
func (s *Service) Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "workspace", "dashboard",
		telemetry.SpanAttrUserID, ownerID.String())
	defer span.End()

	props, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	if len(props) == 0 {
		return ComputeDashboard(nil, nil), nil
	}
	ids := property.IDs(props)

	invoices, err := s.invoiceRepo.FindByProperties(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	expenses, err := s.expenseRepo.FindByProperties(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return ComputeDashboard(invoices, expenses), nil
}
