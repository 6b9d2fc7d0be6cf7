package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// InvoiceUseCases generates, lists and edits invoices
type InvoiceUseCases interface {
	Generate(ctx context.Context, ownerID uuid.UUID, year, month int) (*appbilling.GenerateResult, error)
	List(ctx context.Context, userID uuid.UUID, role identity.Role, q appbilling.InvoiceQuery) (*appbilling.InvoicePage, error)
	Get(ctx context.Context, userID uuid.UUID, role identity.Role, invoiceID uuid.UUID) (*billing.Invoice, error)
	UpdateUtilities(ctx context.Context, ownerID, invoiceID uuid.UUID, amount decimal.Decimal) (*billing.Invoice, error)
}

// VerificationUseCases is the owner's review of submitted payments
type VerificationUseCases interface {
	VerifyWithAI(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.ReceiptJudgement, error)
	MarkPaid(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error)
	MarkPartial(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error)
	Reject(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error)
}

// StatementUseCases renders invoice statements
type StatementUseCases interface {
	Render(ctx context.Context, userID uuid.UUID, role identity.Role, invoiceID uuid.UUID) (*appbilling.StatementDocument, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices     InvoiceUseCases
	verification VerificationUseCases
	statements   StatementUseCases
}

// NewInvoiceHandler creates a new InvoiceHandler. statements may be nil when
// PDF rendering is disabled.
func NewInvoiceHandler(invoices InvoiceUseCases, verification VerificationUseCases, statements StatementUseCases) *InvoiceHandler {
	return &InvoiceHandler{
		invoices:     invoices,
		verification: verification,
		statements:   statements,
	}
}

// GenerateInvoicesRequest selects the month to bill
type GenerateInvoicesRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2100"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// GenerateInvoicesResponse reports a generation run
type GenerateInvoicesResponse struct {
	Month    string            `json:"month" example:"2024-03"`
	Created  int               `json:"created"`
	Skipped  int               `json:"skipped"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// ListInvoicesRequest filters the invoice listing
type ListInvoicesRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status" binding:"omitempty,oneof=pending partial paid"`
	Month     string `form:"month" binding:"omitempty,datetime=2006-01" example:"2024-03"`
	TenancyID string `form:"tenancy_id" binding:"omitempty,uuid"`
}

// UpdateUtilitiesRequest sets an invoice's utilities amount
type UpdateUtilitiesRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gte=0" swaggertype:"number"`
}

// ReceiptJudgementResponse is the advisory AI verdict on a receipt
type ReceiptJudgementResponse struct {
	IsAccurate      bool               `json:"is_accurate"`
	ExtractedAmount *valueobject.Money `json:"extracted_amount,omitempty" swaggertype:"number"`
	Notes           string             `json:"notes"`
}

// GenerateInvoices godoc
// @ID           generateInvoices
// @Summary      Generate monthly invoices
// @Description  Create one invoice per active tenancy of the caller's properties. Tenancies already billed for the month are skipped.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body GenerateInvoicesRequest true "Billing month"
// @Success      201 {object} APIResponse[GenerateInvoicesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/generate [post]
func (h *InvoiceHandler) GenerateInvoices(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req GenerateInvoicesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.invoices.Generate(c.Request.Context(), session.UserID, req.Year, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, GenerateInvoicesResponse{
		Month:    result.Period.String(),
		Created:  result.Created,
		Skipped:  result.Skipped,
		Invoices: toInvoiceResponses(result.Invoices),
	})
}

// ListInvoices godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Owners see invoices of owned properties; tenants see their own, limited to the selected tenancy
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50)
// @Param        status query string false "Status" Enums(pending, partial, paid)
// @Param        month query string false "Billing month (YYYY-MM)"
// @Param        tenancy_id query string false "Tenancy ID" format(uuid)
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req ListInvoicesRequest
	if !h.bindQuery(c, &req) {
		return
	}

	q := appbilling.InvoiceQuery{Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		status := billing.InvoiceStatus(req.Status)
		q.Status = &status
	}
	if req.Month != "" {
		period, err := billing.ParsePeriod(req.Month)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		q.Period = &period
	}
	if req.TenancyID != "" {
		id := uuid.MustParse(req.TenancyID)
		q.TenancyID = &id
	} else if session.IsTenant() {
		q.TenancyID = session.CurrentTenancyID()
	}

	page, err := h.invoices.List(c.Request.Context(), session.UserID, session.Role(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toInvoiceResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetInvoice godoc
// @ID           getInvoice
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := h.invoices.Get(c.Request.Context(), session.UserID, session.Role(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// UpdateUtilities godoc
// @ID           updateInvoiceUtilities
// @Summary      Set utilities
// @Description  Set the utilities amount of an unpaid invoice and recompute its total due
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body UpdateUtilitiesRequest true "Utilities amount"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/utilities [put]
func (h *InvoiceHandler) UpdateUtilities(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateUtilitiesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.UpdateUtilities(c.Request.Context(), session.UserID, id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Statement godoc
// @ID           getInvoiceStatement
// @Summary      Invoice statement PDF
// @Description  Render a printable statement of the invoice
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} file
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/statement.pdf [get]
func (h *InvoiceHandler) Statement(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if h.statements == nil {
		h.ErrorWithCode(c, dto.ErrCodeStatementUnavailable, "Statement rendering is not enabled")
		return
	}
	doc, err := h.statements.Render(c.Request.Context(), session.UserID, session.Role(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// VerifyReceipt godoc
// @ID           verifyInvoiceReceipt
// @Summary      AI receipt check
// @Description  Ask the receipt judge whether the submitted proof matches the submitted amount. Advisory only, the invoice is not changed.
// @Tags         verification
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[ReceiptJudgementResponse]
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/verify-receipt [post]
func (h *InvoiceHandler) VerifyReceipt(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	j, err := h.verification.VerifyWithAI(c.Request.Context(), session.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReceiptJudgementResponse{
		IsAccurate:      j.IsAccurate,
		ExtractedAmount: j.ExtractedAmount,
		Notes:           j.Notes,
	})
}

// MarkPaid godoc
// @ID           markInvoicePaid
// @Summary      Confirm full payment
// @Tags         verification
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/mark-paid [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.verification.MarkPaid)
}

// MarkPartial godoc
// @ID           markInvoicePartial
// @Summary      Acknowledge partial payment
// @Tags         verification
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/mark-partial [post]
func (h *InvoiceHandler) MarkPartial(c *gin.Context) {
	h.transition(c, h.verification.MarkPartial)
}

// Reject godoc
// @ID           rejectInvoicePayment
// @Summary      Reject submitted payment
// @Description  Clear the submitted amount and proof so the tenant can resubmit
// @Tags         verification
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/reject [post]
func (h *InvoiceHandler) Reject(c *gin.Context) {
	h.transition(c, h.verification.Reject)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error)) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := fn(c.Request.Context(), session.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}
