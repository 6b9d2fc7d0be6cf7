package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session headers and context keys
const (
	SessionKey        = "session"
	TenancyHeader     = "X-Tenancy-ID"
	IdempotencyHeader = "Idempotency-Key"
	RoleQueryParam    = "role"
)

// SessionResolver resolves a signed-in identity to its active role
type SessionResolver interface {
	Resolve(ctx context.Context, in appidentity.ResolveInput) (*appidentity.Session, error)
}

// Session resolves the role and current tenancy of the JWT subject and stores
// the result for handlers. ?role= switches between held roles and
// X-Tenancy-ID selects among a tenant's active tenancies.
// It must run after RequireJWT.
func Session(resolver SessionResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithCode(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		uid, err := claims.GetUserUUID()
		if err != nil {
			abortWithCode(c, dto.ErrCodeTokenInvalid, "Invalid token subject")
			return
		}

		in := appidentity.ResolveInput{
			UID:           uid,
			Email:         claims.Email,
			RequestedRole: c.Query(RoleQueryParam),
		}
		if raw := c.GetHeader(TenancyHeader); raw != "" {
			selected, err := uuid.Parse(raw)
			if err != nil {
				abortWithCode(c, "INVALID_TENANCY", "X-Tenancy-ID must be a UUID")
				return
			}
			in.SelectedTenancyID = selected
		}

		session, err := resolver.Resolve(c.Request.Context(), in)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				abortWithCode(c, domainErr.Code, domainErr.Message)
				return
			}
			log.Error("Session resolution failed", zap.String("user_id", uid.String()), zap.Error(err))
			abortWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}

		c.Set(SessionKey, session)
		c.Request = c.Request.WithContext(logger.WithRole(c.Request.Context(), session.Role().String()))
		c.Next()
	}
}

// RequireRole rejects requests whose active role differs from role
func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil {
			abortWithCode(c, dto.ErrCodeSessionRequired, "Session required")
			return
		}
		if session.Role() != role {
			abortWithCode(c, dto.ErrCodeForbidden, "This action requires the "+role.String()+" role")
			return
		}
		c.Next()
	}
}

// GetSession returns the session stored by Session, or nil
func GetSession(c *gin.Context) *appidentity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*appidentity.Session); ok {
			return s
		}
	}
	return nil
}

func abortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.Failure(code, message, GetRequestID(c)))
}
