package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTEmailKey   = "jwt_email"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

type jwtGuard struct {
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	log       *zap.Logger
	public    map[string]bool
	prefixes  []string
}

// JWTOption tunes RequireJWT
type JWTOption func(*jwtGuard)

// WithBlacklist rejects revoked tokens and tokens issued before a user-wide revocation
func WithBlacklist(b auth.TokenBlacklist) JWTOption {
	return func(g *jwtGuard) { g.blacklist = b }
}

func WithAuthLogger(log *zap.Logger) JWTOption {
	return func(g *jwtGuard) { g.log = log }
}

// WithPublicPaths lets exact paths, or prefixes ending in "*", through unauthenticated
func WithPublicPaths(paths ...string) JWTOption {
	return func(g *jwtGuard) {
		for _, p := range paths {
			if prefix, ok := strings.CutSuffix(p, "*"); ok {
				g.prefixes = append(g.prefixes, prefix)
			} else {
				g.public[p] = true
			}
		}
	}
}

// RequireJWT authenticates the bearer access token and exposes its claims.
// A failing blacklist lookup is logged and the token is let through.
func RequireJWT(tokens *auth.JWTService, opts ...JWTOption) gin.HandlerFunc {
	g := &jwtGuard{tokens: tokens, log: zap.NewNop(), public: map[string]bool{}}
	for _, opt := range opts {
		opt(g)
	}
	return g.handle
}

func (g *jwtGuard) isPublic(path string) bool {
	if g.public[path] {
		return true
	}
	for _, prefix := range g.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *jwtGuard) handle(c *gin.Context) {
	if g.isPublic(c.Request.URL.Path) {
		c.Next()
		return
	}

	raw, found := strings.CutPrefix(c.GetHeader(AuthHeaderKey), BearerPrefix)
	if !found || raw == "" {
		g.reject(c, auth.ErrInvalidToken, "missing bearer token")
		return
	}
	claims, err := g.tokens.ValidateAccessToken(raw)
	if err != nil {
		g.reject(c, err, "token validation failed")
		return
	}
	if reason := g.revoked(c.Request.Context(), claims); reason != "" {
		g.reject(c, auth.ErrTokenBlacklisted, reason)
		return
	}

	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTEmailKey, claims.Email)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
	c.Next()
}

// revoked names why the token is no longer honored, or returns ""
func (g *jwtGuard) revoked(ctx context.Context, claims *auth.Claims) string {
	if g.blacklist == nil {
		return ""
	}
	if claims.ID != "" {
		hit, err := g.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			g.log.Error("Token blacklist lookup failed", zap.String("jti", claims.ID), zap.Error(err))
		} else if hit {
			return "token revoked"
		}
	}
	if claims.IssuedAt != nil {
		hit, err := g.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			g.log.Error("User revocation lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		} else if hit {
			return "user sessions revoked"
		}
	}
	return ""
}

func (g *jwtGuard) reject(c *gin.Context, err error, reason string) {
	g.log.Warn("Authentication rejected",
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure(code, msg, GetRequestID(c)))
}

func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		claims, _ := v.(*auth.Claims)
		return claims
	}
	return nil
}

func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
