package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	appbilling "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Generate(ctx context.Context, ownerID uuid.UUID, year, month int) (*appbilling.GenerateResult, error) {
	args := m.Called(ctx, ownerID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.GenerateResult), args.Error(1)
}

func (m *mockInvoiceService) List(ctx context.Context, userID uuid.UUID, role identity.Role, q appbilling.InvoiceQuery) (*appbilling.InvoicePage, error) {
	args := m.Called(ctx, userID, role, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.InvoicePage), args.Error(1)
}

func (m *mockInvoiceService) Get(ctx context.Context, userID uuid.UUID, role identity.Role, invoiceID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, userID, role, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceService) UpdateUtilities(ctx context.Context, ownerID, invoiceID uuid.UUID, amount decimal.Decimal) (*billing.Invoice, error) {
	args := m.Called(ctx, ownerID, invoiceID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

type mockVerificationService struct {
	mock.Mock
}

func (m *mockVerificationService) VerifyWithAI(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.ReceiptJudgement, error) {
	args := m.Called(ctx, ownerID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ReceiptJudgement), args.Error(1)
}

func (m *mockVerificationService) invoiceResult(args mock.Arguments) (*billing.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockVerificationService) MarkPaid(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return m.invoiceResult(m.Called(ctx, ownerID, invoiceID))
}

func (m *mockVerificationService) MarkPartial(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return m.invoiceResult(m.Called(ctx, ownerID, invoiceID))
}

func (m *mockVerificationService) Reject(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return m.invoiceResult(m.Called(ctx, ownerID, invoiceID))
}

type mockStatementService struct {
	mock.Mock
}

func (m *mockStatementService) Render(ctx context.Context, userID uuid.UUID, role identity.Role, invoiceID uuid.UUID) (*appbilling.StatementDocument, error) {
	args := m.Called(ctx, userID, role, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.StatementDocument), args.Error(1)
}

func testInvoice(t *testing.T, rent int64) *billing.Invoice {
	t.Helper()
	period, err := billing.NewPeriod(2024, 3)
	require.NoError(t, err)
	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), uuid.New(), period,
		valueobject.NewMoneyFromInt(rent), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return inv
}

func TestInvoiceHandler_Generate(t *testing.T) {
	owner := uuid.New()
	svc := new(mockInvoiceService)
	period, _ := billing.NewPeriod(2024, 3)
	svc.On("Generate", mock.Anything, owner, 2024, 3).Return(&appbilling.GenerateResult{
		Period:   period,
		Created:  1,
		Skipped:  2,
		Invoices: []*billing.Invoice{testInvoice(t, 1200)},
	}, nil)

	h := NewInvoiceHandler(svc, nil, nil)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.POST("/invoices/generate", h.GenerateInvoices)

	w := perform(engine, http.MethodPost, "/invoices/generate", GenerateInvoicesRequest{Year: 2024, Month: 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeData[GenerateInvoicesResponse](t, w)
	assert.Equal(t, "2024-03", resp.Month)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 2, resp.Skipped)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, "2024-03", resp.Invoices[0].Month)
	assert.Contains(t, w.Body.String(), `"total_due":1200`)

	w = perform(engine, http.MethodPost, "/invoices/generate", GenerateInvoicesRequest{Year: 2024, Month: 13})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Generate", 1)
}

func TestInvoiceHandler_List(t *testing.T) {
	userID := uuid.New()

	t.Run("owner filters by status and month", func(t *testing.T) {
		svc := new(mockInvoiceService)
		svc.On("List", mock.Anything, userID, identity.RoleOwner, mock.MatchedBy(func(q appbilling.InvoiceQuery) bool {
			return q.Status != nil && *q.Status == billing.InvoiceStatusPaid &&
				q.Period != nil && q.Period.String() == "2024-03" && q.TenancyID == nil
		})).Return(&appbilling.InvoicePage{
			Items: []*billing.Invoice{testInvoice(t, 900)}, Total: 1, Page: 1, PageSize: 50,
		}, nil)

		h := NewInvoiceHandler(svc, nil, nil)
		engine := sessionEngine(testSession(userID, identity.RoleOwner))
		engine.GET("/invoices", h.ListInvoices)

		w := perform(engine, http.MethodGet, "/invoices?status=paid&month=2024-03", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env := decode(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		svc.AssertExpectations(t)
	})

	t.Run("tenant defaults to the bound tenancy", func(t *testing.T) {
		bound := &tenancy.Tenancy{}
		bound.ID = uuid.New()
		session := testSession(userID, identity.RoleTenant)
		session.CurrentTenancy = bound

		svc := new(mockInvoiceService)
		svc.On("List", mock.Anything, userID, identity.RoleTenant, mock.MatchedBy(func(q appbilling.InvoiceQuery) bool {
			return q.TenancyID != nil && *q.TenancyID == bound.ID
		})).Return(&appbilling.InvoicePage{Page: 1, PageSize: 50}, nil)

		h := NewInvoiceHandler(svc, nil, nil)
		engine := sessionEngine(session)
		engine.GET("/invoices", h.ListInvoices)

		w := perform(engine, http.MethodGet, "/invoices", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects bad filters", func(t *testing.T) {
		h := NewInvoiceHandler(new(mockInvoiceService), nil, nil)
		engine := sessionEngine(testSession(userID, identity.RoleOwner))
		engine.GET("/invoices", h.ListInvoices)

		for _, query := range []string{"status=overdue", "month=2024-3-1", "tenancy_id=7"} {
			w := perform(engine, http.MethodGet, "/invoices?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}

func TestInvoiceHandler_GetAndUtilities(t *testing.T) {
	owner := uuid.New()
	inv := testInvoice(t, 1000)
	svc := new(mockInvoiceService)
	svc.On("Get", mock.Anything, owner, identity.RoleOwner, inv.ID).Return(inv, nil)
	svc.On("Get", mock.Anything, owner, identity.RoleOwner, mock.Anything).Return(nil, shared.ErrNotFound)
	svc.On("UpdateUtilities", mock.Anything, owner, inv.ID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(80))
	})).Return(inv, nil)

	h := NewInvoiceHandler(svc, nil, nil)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.GET("/invoices/:id", h.GetInvoice)
	engine.PUT("/invoices/:id/utilities", h.UpdateUtilities)

	w := perform(engine, http.MethodGet, "/invoices/"+inv.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, inv.ID, decodeData[InvoiceResponse](t, w).ID)

	w = perform(engine, http.MethodGet, "/invoices/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(engine, http.MethodPut, "/invoices/"+inv.ID.String()+"/utilities", `{"amount": 80}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(engine, http.MethodPut, "/invoices/"+inv.ID.String()+"/utilities", `{"amount": -5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_Statement(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()

	t.Run("disabled", func(t *testing.T) {
		h := NewInvoiceHandler(nil, nil, nil)
		engine := sessionEngine(testSession(owner, identity.RoleOwner))
		engine.GET("/invoices/:id/statement.pdf", h.Statement)

		w := perform(engine, http.MethodGet, "/invoices/"+id.String()+"/statement.pdf", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeStatementUnavailable, decode(t, w).Error.Code)
	})

	t.Run("renders pdf", func(t *testing.T) {
		statements := new(mockStatementService)
		statements.On("Render", mock.Anything, owner, identity.RoleOwner, id).Return(&appbilling.StatementDocument{
			Filename: "invoice-2024-03.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7"),
		}, nil)
		h := NewInvoiceHandler(nil, nil, statements)
		engine := sessionEngine(testSession(owner, identity.RoleOwner))
		engine.GET("/invoices/:id/statement.pdf", h.Statement)

		w := perform(engine, http.MethodGet, "/invoices/"+id.String()+"/statement.pdf", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `"invoice-2024-03.pdf"`)
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})
}

func TestInvoiceHandler_Verification(t *testing.T) {
	owner := uuid.New()
	inv := testInvoice(t, 500)
	extracted := valueobject.NewMoneyFromInt(450)

	verification := new(mockVerificationService)
	verification.On("VerifyWithAI", mock.Anything, owner, inv.ID).Return(&billing.ReceiptJudgement{
		IsAccurate: false, ExtractedAmount: &extracted, Notes: "receipt shows 450",
	}, nil)
	verification.On("MarkPaid", mock.Anything, owner, inv.ID).Return(inv, nil)
	verification.On("MarkPartial", mock.Anything, owner, inv.ID).Return(nil, billing.ErrInvoiceFinalized)
	verification.On("Reject", mock.Anything, owner, inv.ID).Return(inv, nil)

	h := NewInvoiceHandler(nil, verification, nil)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.POST("/invoices/:id/verify-receipt", h.VerifyReceipt)
	engine.POST("/invoices/:id/mark-paid", h.MarkPaid)
	engine.POST("/invoices/:id/mark-partial", h.MarkPartial)
	engine.POST("/invoices/:id/reject", h.Reject)
	base := "/invoices/" + inv.ID.String()

	w := perform(engine, http.MethodPost, base+"/verify-receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	judgement := decodeData[ReceiptJudgementResponse](t, w)
	assert.False(t, judgement.IsAccurate)
	assert.Contains(t, w.Body.String(), `"extracted_amount":450`)

	assert.Equal(t, http.StatusOK, perform(engine, http.MethodPost, base+"/mark-paid", nil).Code)
	assert.Equal(t, http.StatusOK, perform(engine, http.MethodPost, base+"/reject", nil).Code)

	w = perform(engine, http.MethodPost, base+"/mark-partial", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decode(t, w).Error.Code)
	verification.AssertExpectations(t)
}

func TestInvoiceHandler_VerifyReceiptUpstreamFailure(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()
	verification := new(mockVerificationService)
	verification.On("VerifyWithAI", mock.Anything, owner, id).Return(nil, billing.ErrAIService)

	h := NewInvoiceHandler(nil, verification, nil)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.POST("/invoices/:id/verify-receipt", h.VerifyReceipt)

	w := perform(engine, http.MethodPost, "/invoices/"+id.String()+"/verify-receipt", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
