package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrRoleResolutionFailed is returned when the user profile could not be read
var ErrRoleResolutionFailed = shared.NewDomainError("ROLE_RESOLUTION_FAILED", "Could not determine the role for this account")

// SessionService resolves a signed-in identity to its active role and tenancy
type SessionService struct {
	userRepo    identity.UserRepository
	tenancyRepo tenancy.TenancyRepository
	fallback    identity.FallbackPolicy
	logger      *zap.Logger
}

// NewSessionService creates a new SessionService.
// An unknown fallback policy resolves as deny.
func NewSessionService(
	userRepo identity.UserRepository,
	tenancyRepo tenancy.TenancyRepository,
	fallback identity.FallbackPolicy,
	logger *zap.Logger,
) *SessionService {
	if !fallback.IsValid() {
		fallback = identity.FallbackDeny
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		userRepo:    userRepo,
		tenancyRepo: tenancyRepo,
		fallback:    fallback,
		logger:      logger,
	}
}

// Fallback returns the policy applied to identities without a profile
func (s *SessionService) Fallback() identity.FallbackPolicy {
	return s.fallback
}

// Resolve determines the active role for the identity and, for tenants, binds
// the current tenancy. It only reads.
func (s *SessionService) Resolve(ctx context.Context, in ResolveInput) (*Session, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "session", "resolve",
		telemetry.SpanAttrUserID, in.UID.String())
	defer span.End()

	user, err := s.userRepo.FindByID(ctx, in.UID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load user profile",
				zap.String("user_id", in.UID.String()),
				zap.Error(err))
			telemetry.RecordError(span, err)
			return nil, ErrRoleResolutionFailed
		}
		user = nil
	}

	resolution, err := identity.ResolveRole(in.UID, user, s.fallback)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if resolution.ProfileMissing {
		s.logger.Warn("Signed-in identity has no profile, applying fallback",
			zap.String("user_id", in.UID.String()),
			zap.String("fallback", string(s.fallback)))
	}

	if in.RequestedRole != "" {
		role, err := identity.ParseRole(in.RequestedRole)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if resolution, err = resolution.Switch(role); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	session := &Session{
		UserID:     in.UID,
		Email:      in.Email,
		User:       user,
		Resolution: resolution,
		Tenancies:  []*tenancy.Tenancy{},
	}
	if user != nil && session.Email == "" {
		session.Email = user.Email
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRole, resolution.ActiveRole.String())

	if resolution.ActiveRole != identity.RoleTenant {
		return session, nil
	}

	tenancies, err := s.tenancyRepo.FindByUserID(ctx, in.UID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load tenancies: %w", err)
	}
	current, requiresSelection, err := tenancy.SelectCurrent(tenancies, in.SelectedTenancyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	session.Tenancies = tenancies
	session.CurrentTenancy = current
	session.RequiresSelection = requiresSelection
	if current != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrTenancyID, current.ID.String())
	}
	return session, nil
}
