package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/infrastructure/config"
)

// TokenType tells the three RentFlow token purposes apart
type TokenType string

const (
	TokenTypeAccess      TokenType = "access"
	TokenTypeRefresh     TokenType = "refresh"
	TokenTypePasswordSet TokenType = "password_set"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims is the RentFlow token body. RefreshCount only appears on refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GetRemainingTTL is how long a revocation of this token must be remembered
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// TokenPair is what login, signup and refresh hand back to the client
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

type GenerateTokenInput struct {
	UserID uuid.UUID
	Email  string
}

// JWTService signs and checks HS256 tokens. Refresh tokens use their own
// secret when one is configured; password-set links share the access secret.
type JWTService struct {
	secrets         map[TokenType][]byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	issuer          string
	maxRefreshCount int
	now             func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refresh := cfg.RefreshSecret
	if refresh == "" {
		refresh = cfg.Secret
	}
	return &JWTService{
		secrets: map[TokenType][]byte{
			TokenTypeAccess:      []byte(cfg.Secret),
			TokenTypeRefresh:     []byte(refresh),
			TokenTypePasswordSet: []byte(cfg.Secret),
		},
		accessTTL:       cfg.AccessTokenExpiration,
		refreshTTL:      cfg.RefreshTokenExpiration,
		issuer:          cfg.Issuer,
		maxRefreshCount: cfg.MaxRefreshCount,
		now:             time.Now,
	}
}

func (s *JWTService) GetAccessTokenExpiration() time.Duration { return s.accessTTL }

// sign issues a token of kind for the user, valid from now for ttl
func (s *JWTService) sign(kind TokenType, userID uuid.UUID, email string, now time.Time, ttl time.Duration, refreshCount int) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:       userID.String(),
		Email:        email,
		TokenType:    kind,
		RefreshCount: refreshCount,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secrets[kind])
}

func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issuePair(input.UserID, input.Email, 0)
}

func (s *JWTService) issuePair(userID uuid.UUID, email string, refreshCount int) (*TokenPair, error) {
	now := s.now()
	access, err := s.sign(TokenTypeAccess, userID, email, now, s.accessTTL, 0)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(TokenTypeRefresh, userID, email, now, s.refreshTTL, refreshCount)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(s.accessTTL),
		RefreshTokenExpiresAt: now.Add(s.refreshTTL),
		TokenType:             "Bearer",
	}, nil
}

// GeneratePasswordSetToken issues the token embedded in password-set links
func (s *JWTService) GeneratePasswordSetToken(userID uuid.UUID, email string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	token, err := s.sign(TokenTypePasswordSet, userID, email, now, ttl, 0)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(ttl), nil
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypeRefresh)
}

func (s *JWTService) ValidatePasswordSetToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypePasswordSet)
}

// RefreshTokenPair rotates both tokens. Each rotation bumps RefreshCount
// until MaxRefreshCount forces a new login.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return s.issuePair(userID, claims.Email, claims.RefreshCount+1)
}

func (s *JWTService) parse(raw string, want TokenType) (*Claims, error) {
	keyFor := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secrets[want], nil
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, keyFor, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
