// Package handler holds the gin handlers of the RentFlow HTTP API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler is embedded by every handler for binding and response writing.
// Helpers returning ok=false have already written the error response.
type BaseHandler struct{}

func (h *BaseHandler) session(c *gin.Context) *appidentity.Session {
	s := middleware.GetSession(c)
	if s == nil {
		h.ErrorWithCode(c, dto.ErrCodeSessionRequired, "Session required")
	}
	return s
}

// userID is the JWT subject, for routes that run before a session exists
func (h *BaseHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.ErrorWithCode(c, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeTokenInvalid, "Invalid token subject")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	return bound(c, c.ShouldBindJSON(req))
}

func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	return bound(c, c.ShouldBindQuery(req))
}

func bound(c *gin.Context, err error) bool {
	if err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Page(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.OK(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode writes an error envelope with the status mapped from code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.Failure(code, message, middleware.GetRequestID(c)))
}

// HandleError writes a DomainError anywhere in the chain as-is.
// Anything else is logged and reported as a bare 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}
	logger.L(c.Request.Context()).Error("Request failed", zap.String("route", c.FullPath()), zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
}
