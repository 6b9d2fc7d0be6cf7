package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Account errors
var (
	ErrEmailInUse         = shared.NewDomainError("EMAIL_IN_USE", "This email is already in use by another user.")
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrPasswordNotSet     = shared.NewDomainError("PASSWORD_NOT_SET", "Set a password using the link you received before signing in")
)

// Account is a sign-in credential. Its ID is the user ID.
// An account created during onboarding has no password until the
// tenant follows the password-set link.
type Account struct {
	shared.BaseEntity
	Email         string
	PasswordHash  string
	PasswordSetAt *time.Time
}

// NewAccount creates an account without a password
func NewAccount(id uuid.UUID, email string) (*Account, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	a := &Account{BaseEntity: shared.NewBaseEntity(), Email: email}
	a.ID = id
	return a, nil
}

// HasPassword reports whether a password has been set
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// SetPasswordHash stores an already hashed password
func (a *Account) SetPasswordHash(hash string, now time.Time) {
	a.PasswordHash = hash
	a.PasswordSetAt = &now
	a.Touch(now)
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindByEmail returns shared.ErrNotFound when no account uses the email
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
