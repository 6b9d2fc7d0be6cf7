package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Token errors
var (
	ErrTokenExpired    = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid    = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenMaxRefresh = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	ErrTokenRevoked    = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
)

// AuthService handles sign-up, sign-in and token lifecycle
type AuthService struct {
	accounts   auth.AccountProvider
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	sessions   *SessionService
	txScope    TransactionScope
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts auth.AccountProvider,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	sessions *SessionService,
	txScope TransactionScope,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		jwtService: jwtService,
		blacklist:  blacklist,
		sessions:   sessions,
		txScope:    txScope,
		logger:     logger,
	}
}

// SetEventPublisher sets the publisher that receives user events after commit
func (s *AuthService) SetEventPublisher(bus shared.EventPublisher) {
	s.events = bus
}

// Signup creates an owner profile and its sign-in account, then opens a session
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*LoginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "signup")
	defer span.End()

	var user *identity.User
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		user, err = identity.NewUser(input.Name, input.Email, input.Phone, identity.RoleOwner)
		if err != nil {
			return err
		}
		if _, err := repos.UserRepo().FindByEmail(ctx, user.Email); err == nil {
			return identity.ErrEmailInUse
		} else if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to check user email: %w", err)
		}
		if err := repos.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		_, err = s.accounts.WithAccounts(repos.AccountRepo()).Register(ctx, user.ID, user.Email, input.Password)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, user.ID.String())
	s.publish(ctx, user)

	s.logger.Info("Owner signed up", zap.String("user_id", user.ID.String()))
	return s.openSession(ctx, user.ID, user.Email)
}

// Login authenticates an account and returns tokens plus the resolved session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()

	account, err := s.accounts.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		s.logger.Warn("Login failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, account.ID.String())

	result, err := s.openSession(ctx, account.ID, account.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("User logged in",
		zap.String("user_id", account.ID.String()),
		zap.String("role", result.Session.Role().String()))
	return result, nil
}

func (s *AuthService) openSession(ctx context.Context, userID uuid.UUID, email string) (*LoginResult, error) {
	session, err := s.sessions.Resolve(ctx, ResolveInput{UID: userID, Email: email})
	if err != nil {
		return nil, err
	}
	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Email: email})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &LoginResult{Tokens: tokens, Session: session}, nil
}

// Refresh rotates a refresh token into a new pair. The old refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "refresh")
	defer span.End()

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, mapTokenError(err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, claims.UserID)

	if err := s.checkRevoked(ctx, claims); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(refreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, mapTokenError(err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
	}
	return pair, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	if claims.IssuedAt != nil {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			return fmt.Errorf("failed to check token blacklist: %w", err)
		}
		if revoked {
			return ErrTokenRevoked
		}
	}
	return nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "logout",
		telemetry.SpanAttrUserID, input.UserID.String())
	defer span.End()

	if input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			telemetry.RecordError(span, err)
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	if input.RefreshToken != "" {
		// an invalid refresh token is simply not revoked
		if claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken); err == nil {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				telemetry.RecordError(span, err)
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// SetPassword consumes a password link token
func (s *AuthService) SetPassword(ctx context.Context, token, password string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "set_password")
	defer span.End()

	account, err := s.accounts.SetPassword(ctx, token, password)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, account.ID.String())
	return nil
}

// RequestPasswordReset mails a reset link. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "password_reset")
	defer span.End()

	if err := s.accounts.SendPasswordReset(ctx, email); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to send password reset", zap.Error(err))
		return err
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, users ...*identity.User) {
	events := shared.CollectEvents(users...)
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
