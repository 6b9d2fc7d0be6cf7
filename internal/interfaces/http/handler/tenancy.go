package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptenancy "github.com/rentflow/backend/internal/application/tenancy"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// TenancyUseCases is the owner-scoped tenancy surface
type TenancyUseCases interface {
	Onboard(ctx context.Context, ownerID uuid.UUID, input apptenancy.OnboardInput) (*apptenancy.OnboardResult, error)
	List(ctx context.Context, ownerID uuid.UUID, q apptenancy.ListQuery) (*apptenancy.TenancyList, error)
	Update(ctx context.Context, ownerID, tenancyID uuid.UUID, input apptenancy.UpdateInput) (*tenancy.Tenancy, error)
	Deactivate(ctx context.Context, ownerID, tenancyID uuid.UUID, endDate time.Time) (*tenancy.Tenancy, error)
	Delete(ctx context.Context, ownerID, tenancyID uuid.UUID) error
}

// TenancyHandler handles tenancy endpoints
type TenancyHandler struct {
	BaseHandler
	service TenancyUseCases
}

// NewTenancyHandler creates a new TenancyHandler
func NewTenancyHandler(service TenancyUseCases) *TenancyHandler {
	return &TenancyHandler{service: service}
}

// OnboardTenantRequest onboards a tenant onto a property
type OnboardTenantRequest struct {
	Name             string          `json:"name" binding:"required,min=1,max=200"`
	Email            string          `json:"email" binding:"required,email,max=254"`
	Phone            string          `json:"phone" binding:"omitempty,max=40"`
	PropertyID       string          `json:"property_id" binding:"required,uuid"`
	FixedMonthlyRent decimal.Decimal `json:"fixed_monthly_rent" binding:"gte=0" swaggertype:"number"`
	PaysUtilities    bool            `json:"pays_utilities"`
	StartDate        string          `json:"start_date" binding:"required,datetime=2006-01-02" example:"2024-01-01"`
}

// UpdateTenancyRequest replaces the terms of a tenancy
type UpdateTenancyRequest struct {
	PropertyID       string          `json:"property_id" binding:"required,uuid"`
	FixedMonthlyRent decimal.Decimal `json:"fixed_monthly_rent" binding:"gte=0" swaggertype:"number"`
	PaysUtilities    bool            `json:"pays_utilities"`
	StartDate        string          `json:"start_date" binding:"required,datetime=2006-01-02" example:"2024-01-01"`
}

// DeactivateTenancyRequest ends a tenancy; the end date defaults to today
type DeactivateTenancyRequest struct {
	EndDate string `json:"end_date" binding:"omitempty,datetime=2006-01-02" example:"2024-06-30"`
}

// ListTenanciesRequest filters the tenancy listing
type ListTenanciesRequest struct {
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
	Active     *bool  `form:"active"`
}

// OnboardTenantResponse is the created tenancy plus the tenant's password link
type OnboardTenantResponse struct {
	Tenancy      TenancyResponse    `json:"tenancy"`
	UserCreated  bool               `json:"user_created"`
	PasswordLink *auth.PasswordLink `json:"password_link,omitempty"`
}

// ListTenancies godoc
// @ID           listTenancies
// @Summary      List tenancies
// @Description  List tenancies of the caller's properties with their tenants
// @Tags         tenancies
// @Produce      json
// @Param        property_id query string false "Property ID" format(uuid)
// @Param        active query bool false "Only active or inactive tenancies"
// @Success      200 {object} APIResponse[[]TenancyResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenancies [get]
func (h *TenancyHandler) ListTenancies(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req ListTenanciesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	q := apptenancy.ListQuery{Active: req.Active}
	if req.PropertyID != "" {
		id := uuid.MustParse(req.PropertyID)
		q.PropertyID = &id
	}
	list, err := h.service.List(c.Request.Context(), session.UserID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenancyResponses(list.Items, list.Users))
}

// OnboardTenant godoc
// @ID           onboardTenant
// @Summary      Onboard tenant
// @Description  Create a tenancy for a tenant by email. Unknown emails get a new profile, an account and a password-set link.
// @Tags         tenancies
// @Accept       json
// @Produce      json
// @Param        request body OnboardTenantRequest true "Tenant and tenancy terms"
// @Success      201 {object} APIResponse[OnboardTenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenancies [post]
func (h *TenancyHandler) OnboardTenant(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req OnboardTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	result, err := h.service.Onboard(c.Request.Context(), session.UserID, apptenancy.OnboardInput{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		PropertyID:       uuid.MustParse(req.PropertyID),
		FixedMonthlyRent: req.FixedMonthlyRent,
		PaysUtilities:    req.PaysUtilities,
		StartDate:        start,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, OnboardTenantResponse{
		Tenancy:      toTenancyResponse(result.Tenancy, result.User),
		UserCreated:  result.UserCreated,
		PasswordLink: result.PasswordLink,
	})
}

// UpdateTenancy godoc
// @ID           updateTenancy
// @Summary      Update tenancy
// @Tags         tenancies
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenancy ID" format(uuid)
// @Param        request body UpdateTenancyRequest true "Tenancy terms"
// @Success      200 {object} APIResponse[TenancyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenancies/{id} [put]
func (h *TenancyHandler) UpdateTenancy(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateTenancyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	t, err := h.service.Update(c.Request.Context(), session.UserID, id, apptenancy.UpdateInput{
		PropertyID:       uuid.MustParse(req.PropertyID),
		FixedMonthlyRent: req.FixedMonthlyRent,
		PaysUtilities:    req.PaysUtilities,
		StartDate:        start,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenancyResponse(t, nil))
}

// DeactivateTenancy godoc
// @ID           deactivateTenancy
// @Summary      Deactivate tenancy
// @Description  End a tenancy. Inactive tenancies get no new invoices.
// @Tags         tenancies
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenancy ID" format(uuid)
// @Param        request body DeactivateTenancyRequest false "End date"
// @Success      200 {object} APIResponse[TenancyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenancies/{id}/deactivate [post]
func (h *TenancyHandler) DeactivateTenancy(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req DeactivateTenancyRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	var end time.Time
	if req.EndDate != "" {
		end, _ = time.Parse(dateLayout, req.EndDate)
	}
	t, err := h.service.Deactivate(c.Request.Context(), session.UserID, id, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenancyResponse(t, nil))
}

// DeleteTenancy godoc
// @ID           deleteTenancy
// @Summary      Delete tenancy
// @Tags         tenancies
// @Param        id path string true "Tenancy ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenancies/{id} [delete]
func (h *TenancyHandler) DeleteTenancy(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
