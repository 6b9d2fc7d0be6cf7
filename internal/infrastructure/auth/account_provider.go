package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/notification"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Password rules
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit in bytes
)

// Account provider errors
var (
	ErrPasswordTooShort = shared.NewDomainError("INVALID_PASSWORD", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	ErrPasswordTooLong  = shared.NewDomainError("INVALID_PASSWORD", fmt.Sprintf("Password cannot exceed %d bytes", MaxPasswordLength))
	ErrLinkInvalid      = shared.NewDomainError("LINK_INVALID", "The password link is invalid or has expired")
)

// PasswordLink is a URL that lets the holder set the account password once
type PasswordLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountProvider is the identity-provider boundary: credentials, sign-in and password links
type AccountProvider interface {
	// WithAccounts returns a provider that persists through the given repository,
	// used to join an outer transaction
	WithAccounts(accounts identity.AccountRepository) AccountProvider

	CreateAccount(ctx context.Context, userID uuid.UUID, email string) (*identity.Account, error)
	// Register creates an account that can sign in immediately
	Register(ctx context.Context, userID uuid.UUID, email, password string) (*identity.Account, error)
	Authenticate(ctx context.Context, email, password string) (*identity.Account, error)
	GeneratePasswordSetLink(ctx context.Context, userID uuid.UUID) (*PasswordLink, error)
	SendPasswordReset(ctx context.Context, email string) error
	SetPassword(ctx context.Context, linkToken, password string) (*identity.Account, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// LocalAccountProviderConfig configures password links and hashing
type LocalAccountProviderConfig struct {
	LinkTTL     time.Duration
	LinkBaseURL string
	BcryptCost  int
	SessionTTL  time.Duration // how long revoked sessions stay blacklisted
}

// LocalAccountProvider stores bcrypt hashed passwords in the accounts table
type LocalAccountProvider struct {
	accounts  identity.AccountRepository
	jwt       *JWTService
	blacklist TokenBlacklist
	mailer    notification.Mailer
	cfg       LocalAccountProviderConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewLocalAccountProvider creates a local account provider
func NewLocalAccountProvider(
	accounts identity.AccountRepository,
	jwt *JWTService,
	blacklist TokenBlacklist,
	mailer notification.Mailer,
	cfg LocalAccountProviderConfig,
	logger *zap.Logger,
) *LocalAccountProvider {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.LinkTTL == 0 {
		cfg.LinkTTL = 72 * time.Hour
	}
	return &LocalAccountProvider{
		accounts:  accounts,
		jwt:       jwt,
		blacklist: blacklist,
		mailer:    mailer,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithAccounts returns a shallow copy bound to another repository
func (p *LocalAccountProvider) WithAccounts(accounts identity.AccountRepository) AccountProvider {
	cp := *p
	cp.accounts = accounts
	return &cp
}

// CreateAccount creates a passwordless account; a used email yields EMAIL_IN_USE
func (p *LocalAccountProvider) CreateAccount(ctx context.Context, userID uuid.UUID, email string) (*identity.Account, error) {
	account, err := identity.NewAccount(userID, email)
	if err != nil {
		return nil, err
	}
	if err := p.insert(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Register creates an account with a password, used by self signup
func (p *LocalAccountProvider) Register(ctx context.Context, userID uuid.UUID, email, password string) (*identity.Account, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	account, err := identity.NewAccount(userID, email)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.SetPasswordHash(string(hash), p.now())
	if err := p.insert(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (p *LocalAccountProvider) insert(ctx context.Context, account *identity.Account) error {
	if _, err := p.accounts.FindByEmail(ctx, account.Email); err == nil {
		return identity.ErrEmailInUse
	} else if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to check account email: %w", err)
	}

	if err := p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, identity.ErrEmailInUse) {
			return err
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	p.logger.Info("Account created",
		zap.String("user_id", account.ID.String()),
		zap.Bool("password_set", account.HasPassword()))
	return nil
}

// Authenticate verifies email and password
func (p *LocalAccountProvider) Authenticate(ctx context.Context, email, password string) (*identity.Account, error) {
	account, err := p.accounts.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.HasPassword() {
		return nil, identity.ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, identity.ErrInvalidCredentials
	}
	return account, nil
}

// GeneratePasswordSetLink issues a link for the user's account
func (p *LocalAccountProvider) GeneratePasswordSetLink(ctx context.Context, userID uuid.UUID) (*PasswordLink, error) {
	account, err := p.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.link(account)
}

func (p *LocalAccountProvider) link(account *identity.Account) (*PasswordLink, error) {
	token, expiresAt, err := p.jwt.GeneratePasswordSetToken(account.ID, account.Email, p.cfg.LinkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign password link: %w", err)
	}

	u, err := url.Parse(p.cfg.LinkBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid password link base url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return &PasswordLink{URL: u.String(), ExpiresAt: expiresAt}, nil
}

// SendPasswordReset mails a reset link. Unknown emails succeed silently.
func (p *LocalAccountProvider) SendPasswordReset(ctx context.Context, email string) error {
	account, err := p.accounts.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			p.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	link, err := p.link(account)
	if err != nil {
		return err
	}
	return p.mailer.SendPasswordLink(ctx, notification.PasswordLinkMessage{
		Kind:      notification.KindPasswordReset,
		To:        account.Email,
		Link:      link.URL,
		ExpiresAt: link.ExpiresAt,
	})
}

// SetPassword consumes a link token and stores the new password hash.
// A link works once.
func (p *LocalAccountProvider) SetPassword(ctx context.Context, linkToken, password string) (*identity.Account, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	claims, err := p.jwt.ValidatePasswordSetToken(linkToken)
	if err != nil {
		return nil, ErrLinkInvalid
	}
	used, err := p.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check password link: %w", err)
	}
	if used {
		return nil, ErrLinkInvalid
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrLinkInvalid
	}
	account, err := p.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrLinkInvalid
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.SetPasswordHash(string(hash), p.now())
	if err := p.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to store password: %w", err)
	}

	if err := p.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		p.logger.Warn("Failed to consume password link", zap.Error(err))
	}

	p.logger.Info("Password set", zap.String("user_id", userID.String()))
	return account, nil
}

// DeleteAccount removes the credential and revokes every session of the user
func (p *LocalAccountProvider) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := p.accounts.Delete(ctx, userID); err != nil {
		return err
	}
	ttl := p.cfg.SessionTTL
	if ttl == 0 {
		ttl = p.jwt.GetAccessTokenExpiration()
	}
	if err := p.blacklist.RevokeUser(ctx, userID.String(), ttl); err != nil {
		p.logger.Warn("Failed to revoke sessions of deleted account", zap.Error(err))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

var _ AccountProvider = (*LocalAccountProvider)(nil)
