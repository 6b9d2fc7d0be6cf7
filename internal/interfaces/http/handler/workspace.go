package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	"github.com/rentflow/backend/internal/application/workspace"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// WorkspaceUseCases builds the read models of a session
type WorkspaceUseCases interface {
	Refresh(ctx context.Context, session *appidentity.Session) (*workspace.Snapshot, error)
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*workspace.Dashboard, error)
}

// WorkspaceHandler serves the workspace snapshot and the owner dashboard
type WorkspaceHandler struct {
	BaseHandler
	service WorkspaceUseCases
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(service WorkspaceUseCases) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

// WorkspaceResponse is every collection visible to the caller's active role
type WorkspaceResponse struct {
	Role              string             `json:"role" example:"owner"`
	AvailableRoles    []string           `json:"available_roles"`
	User              *UserResponse      `json:"user,omitempty"`
	Properties        []PropertyResponse `json:"properties"`
	Tenancies         []TenancyResponse  `json:"tenancies"`
	Users             []UserResponse     `json:"users"`
	Invoices          []InvoiceResponse  `json:"invoices"`
	Expenses          []ExpenseResponse  `json:"expenses"`
	CurrentTenancyID  *uuid.UUID         `json:"current_tenancy_id,omitempty"`
	RequiresSelection bool               `json:"requires_selection"`
}

// DashboardResponse summarizes an owner's cash flow
type DashboardResponse struct {
	UnverifiedPayments []InvoiceResponse `json:"unverified_payments"`
	TotalIncome        valueobject.Money `json:"total_income" swaggertype:"number"`
	TotalOutstanding   valueobject.Money `json:"total_outstanding" swaggertype:"number"`
	TotalExpenses      valueobject.Money `json:"total_expenses" swaggertype:"number"`
	TotalSavings       valueobject.Money `json:"total_savings" swaggertype:"number"`
}

// Workspace godoc
// @ID           getWorkspace
// @Summary      Workspace snapshot
// @Description  Fetch properties, tenancies, tenants, invoices and expenses for the active role in one call
// @Tags         workspace
// @Produce      json
// @Param        role query string false "Requested role" Enums(owner, tenant)
// @Param        X-Tenancy-ID header string false "Selected tenancy"
// @Success      200 {object} APIResponse[WorkspaceResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /workspace [get]
func (h *WorkspaceHandler) Workspace(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}

	snap, err := h.service.Refresh(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, WorkspaceResponse{
		Role:              snap.Role.String(),
		AvailableRoles:    snap.AvailableRoles.Strings(),
		User:              toUserResponse(snap.User),
		Properties:        toPropertyResponses(snap.Properties),
		Tenancies:         toTenancyResponses(snap.Tenancies, nil),
		Users:             toUserResponses(snap.Users),
		Invoices:          toInvoiceResponses(snap.Invoices),
		Expenses:          toExpenseResponses(snap.Expenses),
		CurrentTenancyID:  snap.CurrentTenancyID,
		RequiresSelection: snap.RequiresSelection,
	})
}

// Dashboard godoc
// @ID           getDashboard
// @Summary      Owner dashboard
// @Description  Income, outstanding balance, expenses, savings and payments awaiting verification
// @Tags         workspace
// @Produce      json
// @Success      200 {object} APIResponse[DashboardResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *WorkspaceHandler) Dashboard(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DashboardResponse{
		UnverifiedPayments: toInvoiceResponses(d.UnverifiedPayments),
		TotalIncome:        d.TotalIncome,
		TotalOutstanding:   d.TotalOutstanding,
		TotalExpenses:      d.TotalExpenses,
		TotalSavings:       d.TotalSavings,
	})
}
