package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/auth"
)

// SignupInput contains the input for owner self signup
type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the tokens of a new session and the resolved session
type LoginResult struct {
	Tokens  *auth.TokenPair
	Session *Session
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration // remaining lifetime of the access token
	RefreshToken string        // optional; revoked as well when present
}

// ResolveInput is a signed-in identity plus the caller's role and tenancy choices
type ResolveInput struct {
	UID   uuid.UUID
	Email string
	// RequestedRole switches to another declared role when set
	RequestedRole string
	// SelectedTenancyID picks among several tenancies, from X-Tenancy-ID
	SelectedTenancyID uuid.UUID
}

// Session is the resolved view of a signed-in identity
type Session struct {
	UserID     uuid.UUID
	Email      string
	User       *identity.User // nil when no profile exists
	Resolution identity.Resolution

	Tenancies         []*tenancy.Tenancy
	CurrentTenancy    *tenancy.Tenancy
	RequiresSelection bool
}

// Role returns the active role
func (s *Session) Role() identity.Role {
	return s.Resolution.ActiveRole
}

// IsOwner reports whether the session acts as an owner
func (s *Session) IsOwner() bool {
	return s.Resolution.ActiveRole == identity.RoleOwner
}

// IsTenant reports whether the session acts as a tenant
func (s *Session) IsTenant() bool {
	return s.Resolution.ActiveRole == identity.RoleTenant
}

// CurrentTenancyID returns the bound tenancy ID, or nil
func (s *Session) CurrentTenancyID() *uuid.UUID {
	if s.CurrentTenancy == nil {
		return nil
	}
	id := s.CurrentTenancy.ID
	return &id
}

// DisplayName returns the profile name, falling back to the email
func (s *Session) DisplayName() string {
	if s.User != nil {
		return s.User.Name
	}
	return s.Email
}
