package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproperty "github.com/rentflow/backend/internal/application/property"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// ExpenseUseCases is the owner-scoped expense surface
type ExpenseUseCases interface {
	Create(ctx context.Context, ownerID uuid.UUID, input appproperty.ExpenseInput) (*property.Expense, error)
	Update(ctx context.Context, ownerID, expenseID uuid.UUID, input appproperty.ExpenseInput) (*property.Expense, error)
	Delete(ctx context.Context, ownerID, expenseID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, q appproperty.ExpenseQuery) (*appproperty.ExpensePage, error)
}

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	service ExpenseUseCases
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service ExpenseUseCases) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// ExpenseRequest creates or updates an expense
type ExpenseRequest struct {
	PropertyID  string          `json:"property_id" binding:"required,uuid"`
	Type        string          `json:"type" binding:"required,oneof=FIXED_SERVICE MAINTENANCE_OTHER"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"number"`
	Description string          `json:"description" binding:"omitempty,max=500"`
	Date        string          `json:"date" binding:"required,datetime=2006-01-02" example:"2024-03-15"`
}

// ListExpensesRequest filters the expense listing
type ListExpensesRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
	Type       string `form:"type" binding:"omitempty,oneof=FIXED_SERVICE MAINTENANCE_OTHER"`
	FromDate   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (r ExpenseRequest) input() appproperty.ExpenseInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return appproperty.ExpenseInput{
		PropertyID:  uuid.MustParse(r.PropertyID),
		Type:        property.ExpenseType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Date:        date,
	}
}

func (r ListExpensesRequest) query() appproperty.ExpenseQuery {
	q := appproperty.ExpenseQuery{Page: r.Page, PageSize: r.PageSize}
	if r.PropertyID != "" {
		id := uuid.MustParse(r.PropertyID)
		q.PropertyID = &id
	}
	if r.Type != "" {
		t := property.ExpenseType(r.Type)
		q.Type = &t
	}
	if r.FromDate != "" {
		from, _ := time.Parse(dateLayout, r.FromDate)
		q.FromDate = &from
	}
	if r.ToDate != "" {
		to, _ := time.Parse(dateLayout, r.ToDate)
		q.ToDate = &to
	}
	return q
}

// ListExpenses godoc
// @ID           listExpenses
// @Summary      List expenses
// @Description  List expenses of the caller's properties, newest first
// @Tags         expenses
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50)
// @Param        property_id query string false "Property ID" format(uuid)
// @Param        type query string false "Expense type" Enums(FIXED_SERVICE, MAINTENANCE_OTHER)
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req ListExpensesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.service.List(c.Request.Context(), session.UserID, req.query())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toExpenseResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// CreateExpense godoc
// @ID           createExpense
// @Summary      Record expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body ExpenseRequest true "Expense details"
// @Success      201 {object} APIResponse[ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req ExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	e, err := h.service.Create(c.Request.Context(), session.UserID, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toExpenseResponse(e))
}

// UpdateExpense godoc
// @ID           updateExpense
// @Summary      Update expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Param        request body ExpenseRequest true "Expense details"
// @Success      200 {object} APIResponse[ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req ExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	e, err := h.service.Update(c.Request.Context(), session.UserID, id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toExpenseResponse(e))
}

// DeleteExpense godoc
// @ID           deleteExpense
// @Summary      Delete expense
// @Tags         expenses
// @Param        id path string true "Expense ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
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
