package tenancy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	appproperty "github.com/rentflow/backend/internal/application/property"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TenancyService onboards tenants and manages leases on the actor's properties
type TenancyService struct {
	tenancyRepo  tenancy.TenancyRepository
	propertyRepo property.PropertyRepository
	userRepo     identity.UserRepository
	accounts     auth.AccountProvider
	txScope      TransactionScope
	events       shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewTenancyService creates a new TenancyService
func NewTenancyService(
	tenancyRepo tenancy.TenancyRepository,
	propertyRepo property.PropertyRepository,
	userRepo identity.UserRepository,
	accounts auth.AccountProvider,
	txScope TransactionScope,
	logger *zap.Logger,
) *TenancyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenancyService{
		tenancyRepo:  tenancyRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		accounts:     accounts,
		txScope:      txScope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the publisher that receives tenancy and user events after commit
func (s *TenancyService) SetEventPublisher(bus shared.EventPublisher) {
	s.events = bus
}

// Onboard creates a tenancy for a tenant identified by email. An existing profile
// is reused and granted the tenant role; otherwise the user and a passwordless
// account are created. Everything is written in one transaction.
func (s *TenancyService) Onboard(ctx context.Context, ownerID uuid.UUID, input OnboardInput) (*OnboardResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenancy", "onboard",
		telemetry.SpanAttrUserID, ownerID.String(),
		telemetry.SpanAttrPropertyID, input.PropertyID.String())
	defer span.End()

	if _, err := appproperty.LoadOwned(ctx, s.propertyRepo, ownerID, input.PropertyID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	terms := tenancy.Terms{
		PropertyID:       input.PropertyID,
		FixedMonthlyRent: valueobject.NewMoney(input.FixedMonthlyRent),
		PaysUtilities:    input.PaysUtilities,
		StartDate:        input.StartDate,
	}

	result := &OnboardResult{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		accounts := s.accounts.WithAccounts(repos.AccountRepo())

		user, err := repos.UserRepo().FindByEmail(ctx, identity.NormalizeEmail(input.Email))
		switch {
		case err == nil:
			if !user.HasRole(identity.RoleTenant) {
				if err := user.GrantRole(identity.RoleTenant); err != nil {
					return err
				}
				if err := repos.UserRepo().Update(ctx, user); err != nil {
					return fmt.Errorf("failed to update user: %w", err)
				}
			}
			if err := ensureAccount(ctx, repos.AccountRepo(), accounts, user); err != nil {
				return err
			}
		case errors.Is(err, shared.ErrNotFound):
			user, err = identity.NewUser(input.Name, input.Email, input.Phone, identity.RoleTenant)
			if err != nil {
				return err
			}
			if err := repos.UserRepo().Create(ctx, user); err != nil {
				return err
			}
			if _, err := accounts.CreateAccount(ctx, user.ID, user.Email); err != nil {
				return err
			}
			result.UserCreated = true
		default:
			return fmt.Errorf("failed to look up user: %w", err)
		}

		t, err := tenancy.NewTenancy(user.ID, terms)
		if err != nil {
			return err
		}
		if err := repos.TenancyRepo().Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create tenancy: %w", err)
		}
		result.User = user
		result.Tenancy = t
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrTenancyID, result.Tenancy.ID.String())

	s.publishUsers(ctx, result.User)
	s.publish(ctx, result.Tenancy)

	link, err := s.accounts.GeneratePasswordSetLink(ctx, result.User.ID)
	if err != nil {
		// onboarding stands; a reset email issues a new link
		s.logger.Error("Failed to generate password link",
			zap.String("user_id", result.User.ID.String()),
			zap.Error(err))
	} else {
		result.PasswordLink = link
	}

	s.logger.Info("Tenant onboarded",
		zap.String("tenancy_id", result.Tenancy.ID.String()),
		zap.String("user_id", result.User.ID.String()),
		zap.Bool("user_created", result.UserCreated))
	return result, nil
}

// ensureAccount creates the sign-in account of a reused profile that has none
func ensureAccount(ctx context.Context, repo identity.AccountRepository, accounts auth.AccountProvider, user *identity.User) error {
	_, err := repo.FindByID(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load account: %w", err)
	}
	_, err = accounts.CreateAccount(ctx, user.ID, user.Email)
	return err
}

// List returns the tenancies of the actor's properties
func (s *TenancyService) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*TenancyList, error) {
	owned, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned properties: %w", err)
	}
	ids := property.IDs(owned)
	if q.PropertyID != nil {
		if !slices.Contains(ids, *q.PropertyID) {
			ids = nil
		} else {
			ids = []uuid.UUID{*q.PropertyID}
		}
	}
	list := &TenancyList{Items: []*tenancy.Tenancy{}, Users: map[uuid.UUID]*identity.User{}}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := s.tenancyRepo.FindAll(ctx, tenancy.Filter{PropertyIDs: ids, Active: q.Active})
	if err != nil {
		return nil, fmt.Errorf("failed to list tenancies: %w", err)
	}
	list.Items = items
	if len(items) == 0 {
		return list, nil
	}

	userIDs := make([]uuid.UUID, 0, len(items))
	for _, t := range items {
		if !slices.Contains(userIDs, t.UserID) {
			userIDs = append(userIDs, t.UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}
	for _, u := range users {
		list.Users[u.ID] = u
	}
	return list, nil
}

// Update edits the lease terms. Moving a lease requires owning both properties.
func (s *TenancyService) Update(ctx context.Context, ownerID, tenancyID uuid.UUID, input UpdateInput) (*tenancy.Tenancy, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenancy", "update",
		telemetry.SpanAttrTenancyID, tenancyID.String())
	defer span.End()

	t, err := s.loadOwned(ctx, ownerID, tenancyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.PropertyID != t.PropertyID {
		if _, err := appproperty.LoadOwned(ctx, s.propertyRepo, ownerID, input.PropertyID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	err = t.Update(tenancy.Terms{
		PropertyID:       input.PropertyID,
		FixedMonthlyRent: valueobject.NewMoney(input.FixedMonthlyRent),
		PaysUtilities:    input.PaysUtilities,
		StartDate:        input.StartDate,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.tenancyRepo.Update(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update tenancy: %w", err)
	}
	return t, nil
}

// Deactivate ends the lease on endDate, today when zero
func (s *TenancyService) Deactivate(ctx context.Context, ownerID, tenancyID uuid.UUID, endDate time.Time) (*tenancy.Tenancy, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenancy", "deactivate",
		telemetry.SpanAttrTenancyID, tenancyID.String())
	defer span.End()

	t, err := s.loadOwned(ctx, ownerID, tenancyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if endDate.IsZero() {
		endDate = s.now().UTC().Truncate(24 * time.Hour)
	}
	if err := t.Deactivate(endDate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.tenancyRepo.Update(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update tenancy: %w", err)
	}
	s.publish(ctx, t)
	return t, nil
}

// Delete removes a tenancy together with its invoices
func (s *TenancyService) Delete(ctx context.Context, ownerID, tenancyID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenancy", "delete",
		telemetry.SpanAttrTenancyID, tenancyID.String())
	defer span.End()

	if _, err := s.loadOwned(ctx, ownerID, tenancyID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.tenancyRepo.Delete(ctx, tenancyID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.logger.Info("Tenancy deleted", zap.String("tenancy_id", tenancyID.String()))
	return nil
}

func (s *TenancyService) loadOwned(ctx context.Context, ownerID, tenancyID uuid.UUID) (*tenancy.Tenancy, error) {
	t, err := s.tenancyRepo.FindByID(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if _, err := appproperty.LoadOwned(ctx, s.propertyRepo, ownerID, t.PropertyID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TenancyService) publish(ctx context.Context, tenancies ...*tenancy.Tenancy) {
	s.emit(ctx, shared.CollectEvents(tenancies...))
}

func (s *TenancyService) publishUsers(ctx context.Context, users ...*identity.User) {
	s.emit(ctx, shared.CollectEvents(users...))
}

func (s *TenancyService) emit(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish tenancy events", zap.Int("count", len(events)), zap.Error(err))
	}
}
