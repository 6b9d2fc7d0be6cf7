package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
)

// AuthUseCases is the account and session surface the handler drives
type AuthUseCases interface {
	Signup(ctx context.Context, input appidentity.SignupInput) (*appidentity.LoginResult, error)
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	SetPassword(ctx context.Context, token, password string) error
	RequestPasswordReset(ctx context.Context, email string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthUseCases
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthUseCases) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup godoc
// @ID           signup
// @Summary      Owner signup
// @Description  Create an owner profile with a password account and sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup details"
// @Success      201 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), appidentity.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, LoginResponse{Token: toTokenResponse(result.Tokens), Session: toSessionResponse(result.Session)})
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with email and password. The session carries the resolved role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{Token: toTokenResponse(result.Tokens), Session: toSessionResponse(result.Session)})
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  Rotate a refresh token into a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTokenResponse(pair))
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revoke the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	claims := middleware.GetJWTClaims(c)

	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	err := h.authService.Logout(c.Request.Context(), appidentity.LogoutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		TokenTTL:     claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Logged out successfully"})
}

// Me godoc
// @ID           getCurrentSession
// @Summary      Current session
// @Description  Resolve the caller's role. ?role= switches between held roles and X-Tenancy-ID selects a tenancy.
// @Tags         auth
// @Produce      json
// @Param        role query string false "Requested role" Enums(owner, tenant)
// @Param        X-Tenancy-ID header string false "Selected tenancy"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	h.Success(c, toSessionResponse(session))
}

// SetPassword godoc
// @ID           setPassword
// @Summary      Set password
// @Description  Set an account password with a one-time password link token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SetPasswordRequest true "Link token and new password"
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/password [post]
func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.SetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Password updated"})
}

// RequestPasswordReset godoc
// @ID           requestPasswordReset
// @Summary      Request password reset
// @Description  Mail a password reset link. Unknown emails get the same answer.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body PasswordResetRequest true "Account email"
// @Success      202 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, MessageResponse{Message: "If the account exists, a reset link has been sent"})
}
