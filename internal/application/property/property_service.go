package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned when a co-owner email has no profile
var ErrUserNotFound = shared.NewDomainError("USER_NOT_FOUND", "No user exists with this email")

// PropertyService manages the properties an owner holds
type PropertyService struct {
	propertyRepo property.PropertyRepository
	tenancyRepo  tenancy.TenancyRepository
	userRepo     identity.UserRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(
	propertyRepo property.PropertyRepository,
	tenancyRepo tenancy.TenancyRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		propertyRepo: propertyRepo,
		tenancyRepo:  tenancyRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher that receives property events after commit
func (s *PropertyService) SetEventPublisher(bus shared.EventPublisher) {
	s.events = bus
}

// Create adds a property owned by the actor
func (s *PropertyService) Create(ctx context.Context, ownerID uuid.UUID, input PropertyInput) (*property.Property, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "create",
		telemetry.SpanAttrUserID, ownerID.String())
	defer span.End()

	p, err := property.NewProperty(input.Name, input.Address, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPropertyID, p.ID.String())
	s.publish(ctx, p)
	return p, nil
}

// List returns the properties the actor owns
func (s *PropertyService) List(ctx context.Context, ownerID uuid.UUID) ([]*property.Property, error) {
	props, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

// Get returns a property the actor owns
func (s *PropertyService) Get(ctx context.Context, ownerID, propertyID uuid.UUID) (*property.Property, error) {
	return LoadOwned(ctx, s.propertyRepo, ownerID, propertyID)
}

// Update changes name and address
func (s *PropertyService) Update(ctx context.Context, ownerID, propertyID uuid.UUID, input PropertyInput) (*property.Property, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "update",
		telemetry.SpanAttrPropertyID, propertyID.String())
	defer span.End()

	p, err := LoadOwned(ctx, s.propertyRepo, ownerID, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := p.Update(input.Name, input.Address); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.propertyRepo.Update(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	s.publish(ctx, p)
	return p, nil
}

// Delete removes a property that no tenancy references. Its expenses go with it.
func (s *PropertyService) Delete(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "delete",
		telemetry.SpanAttrPropertyID, propertyID.String())
	defer span.End()

	if _, err := LoadOwned(ctx, s.propertyRepo, ownerID, propertyID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	count, err := s.tenancyRepo.CountByProperty(ctx, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to count tenancies: %w", err)
	}
	if count > 0 {
		telemetry.RecordError(span, property.ErrPropertyInUse)
		return property.ErrPropertyInUse
	}
	if err := s.propertyRepo.Delete(ctx, propertyID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.logger.Info("Property deleted",
		zap.String("property_id", propertyID.String()),
		zap.String("user_id", ownerID.String()))
	return nil
}

// AddOwner shares a property with another user, found by email.
// The user is granted the owner role if they do not hold it yet.
func (s *PropertyService) AddOwner(ctx context.Context, ownerID, propertyID uuid.UUID, email string) (*property.Property, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "add_owner",
		telemetry.SpanAttrPropertyID, propertyID.String())
	defer span.End()

	p, err := LoadOwned(ctx, s.propertyRepo, ownerID, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.HasRole(identity.RoleOwner) {
		if err := user.GrantRole(identity.RoleOwner); err != nil {
			return nil, err
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to grant owner role: %w", err)
		}
		s.publishUser(ctx, user)
	}

	if err := p.AddOwner(user.ID); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Update(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	s.publish(ctx, p)
	return p, nil
}

// LoadOwned loads a property and checks the actor owns it
func LoadOwned(ctx context.Context, repo property.PropertyRepository, ownerID, propertyID uuid.UUID) (*property.Property, error) {
	p, err := repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) {
		return nil, shared.ErrForbidden
	}
	return p, nil
}

func (s *PropertyService) publish(ctx context.Context, props ...*property.Property) {
	publish(ctx, s.events, s.logger, shared.CollectEvents(props...))
}

func (s *PropertyService) publishUser(ctx context.Context, users ...*identity.User) {
	publish(ctx, s.events, s.logger, shared.CollectEvents(users...))
}

func publish(ctx context.Context, bus shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if bus == nil || len(events) == 0 {
		return
	}
	if err := bus.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish events", zap.Int("count", len(events)), zap.Error(err))
	}
}
