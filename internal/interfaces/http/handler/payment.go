package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// PaymentUseCases is the tenant payment surface
type PaymentUseCases interface {
	PayableInvoices(ctx context.Context, userID uuid.UUID) (*appbilling.PayableResult, error)
	SubmitPayment(ctx context.Context, userID uuid.UUID, req appbilling.SubmitPaymentRequest) (*appbilling.SubmitPaymentResult, error)
	CreateReceiptUpload(ctx context.Context, userID uuid.UUID, filename, contentType string) (*appbilling.ReceiptUpload, error)
}

// PaymentHandler handles tenant payment endpoints
type PaymentHandler struct {
	BaseHandler
	service PaymentUseCases
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service PaymentUseCases) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// SubmitPaymentRequest pays one or more invoices with a single proof.
// Amount defaults to the sum of the selected remaining balances.
type SubmitPaymentRequest struct {
	InvoiceIDs []string         `json:"invoice_ids" binding:"required,min=1,max=50,dive,uuid"`
	Amount     *decimal.Decimal `json:"amount,omitempty" swaggertype:"number"`
	ProofURL   string           `json:"proof_url" binding:"omitempty,max=2048"`
}

// ReceiptUploadRequest describes the receipt file to upload
type ReceiptUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100" example:"image/jpeg"`
}

// PayableResponse lists payable invoices, oldest month first
type PayableResponse struct {
	Invoices      []InvoiceResponse `json:"invoices"`
	DefaultAmount valueobject.Money `json:"default_amount" swaggertype:"number"`
}

// AllocationResponse is the share of a payment given to one invoice
type AllocationResponse struct {
	InvoiceID uuid.UUID         `json:"invoice_id"`
	Amount    valueobject.Money `json:"amount" swaggertype:"number"`
}

// SubmitPaymentResponse reports how a payment was split
type SubmitPaymentResponse struct {
	Total       valueobject.Money    `json:"total" swaggertype:"number"`
	Policy      string               `json:"policy" example:"oldest_first"`
	Allocations []AllocationResponse `json:"allocations"`
	Invoices    []InvoiceResponse    `json:"invoices"`
}

// ReceiptUploadResponse is a presigned upload target
type ReceiptUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PayableInvoices godoc
// @ID           listPayableInvoices
// @Summary      Payable invoices
// @Description  Invoices with an outstanding balance and the suggested payment amount
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[PayableResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/payable [get]
func (h *PaymentHandler) PayableInvoices(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	result, err := h.service.PayableInvoices(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PayableResponse{
		Invoices:      toInvoiceResponses(result.Invoices),
		DefaultAmount: result.DefaultAmount,
	})
}

// SubmitPayment godoc
// @ID           submitPayment
// @Summary      Submit payment
// @Description  Split one payment across the selected invoices. They stay pending until the owner verifies them. Repeat requests with the same Idempotency-Key are refused.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated key"
// @Param        request body SubmitPaymentRequest true "Selected invoices, amount and proof"
// @Success      201 {object} APIResponse[SubmitPaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req SubmitPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ids := make([]uuid.UUID, len(req.InvoiceIDs))
	for i, raw := range req.InvoiceIDs {
		ids[i] = uuid.MustParse(raw)
	}
	result, err := h.service.SubmitPayment(c.Request.Context(), session.UserID, appbilling.SubmitPaymentRequest{
		InvoiceIDs:     ids,
		Amount:         req.Amount,
		ProofURL:       req.ProofURL,
		IdempotencyKey: c.GetHeader(middleware.IdempotencyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	allocations := make([]AllocationResponse, len(result.Allocations))
	for i, a := range result.Allocations {
		allocations[i] = AllocationResponse{InvoiceID: a.InvoiceID, Amount: a.Amount}
	}
	h.Created(c, SubmitPaymentResponse{
		Total:       result.Total,
		Policy:      result.Policy,
		Allocations: allocations,
		Invoices:    toInvoiceResponses(result.Invoices),
	})
}

// CreateReceiptUpload godoc
// @ID           createReceiptUpload
// @Summary      Receipt upload URL
// @Description  Issue a presigned PUT URL. Use the returned key as proof_url when submitting.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body ReceiptUploadRequest true "Receipt file"
// @Success      201 {object} APIResponse[ReceiptUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/receipt-upload-url [post]
func (h *PaymentHandler) CreateReceiptUpload(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	upload, err := h.service.CreateReceiptUpload(c.Request.Context(), session.UserID, req.Filename, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ReceiptUploadResponse{
		Key:       upload.Key,
		UploadURL: upload.UploadURL,
		ExpiresAt: upload.ExpiresAt,
	})
}
