package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	appproperty "github.com/rentflow/backend/internal/application/property"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPropertyService struct {
	mock.Mock
}

func (m *mockPropertyService) property(args mock.Arguments) (*property.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *mockPropertyService) Create(ctx context.Context, ownerID uuid.UUID, input appproperty.PropertyInput) (*property.Property, error) {
	return m.property(m.Called(ctx, ownerID, input))
}

func (m *mockPropertyService) List(ctx context.Context, ownerID uuid.UUID) ([]*property.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*property.Property), args.Error(1)
}

func (m *mockPropertyService) Get(ctx context.Context, ownerID, propertyID uuid.UUID) (*property.Property, error) {
	return m.property(m.Called(ctx, ownerID, propertyID))
}

func (m *mockPropertyService) Update(ctx context.Context, ownerID, propertyID uuid.UUID, input appproperty.PropertyInput) (*property.Property, error) {
	return m.property(m.Called(ctx, ownerID, propertyID, input))
}

func (m *mockPropertyService) Delete(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	return m.Called(ctx, ownerID, propertyID).Error(0)
}

func (m *mockPropertyService) AddOwner(ctx context.Context, ownerID, propertyID uuid.UUID, email string) (*property.Property, error) {
	return m.property(m.Called(ctx, ownerID, propertyID, email))
}

func TestPropertyHandler_CRUD(t *testing.T) {
	owner := uuid.New()
	p, err := property.NewProperty("Elm Street 4", "4 Elm Street, Springfield", owner)
	require.NoError(t, err)
	input := appproperty.PropertyInput{Name: "Elm Street 4", Address: "4 Elm Street, Springfield"}

	svc := new(mockPropertyService)
	svc.On("List", mock.Anything, owner).Return([]*property.Property{p}, nil)
	svc.On("Create", mock.Anything, owner, input).Return(p, nil)
	svc.On("Get", mock.Anything, owner, p.ID).Return(p, nil)
	svc.On("Update", mock.Anything, owner, p.ID, input).Return(p, nil)
	svc.On("Delete", mock.Anything, owner, p.ID).Return(property.ErrPropertyInUse)

	h := NewPropertyHandler(svc)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.GET("/properties", h.ListProperties)
	engine.POST("/properties", h.CreateProperty)
	engine.GET("/properties/:id", h.GetProperty)
	engine.PUT("/properties/:id", h.UpdateProperty)
	engine.DELETE("/properties/:id", h.DeleteProperty)
	path := "/properties/" + p.ID.String()

	w := perform(engine, http.MethodGet, "/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeData[[]PropertyResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, []uuid.UUID{owner}, list[0].OwnerIDs)

	w = perform(engine, http.MethodPost, "/properties", PropertyRequest{Name: input.Name, Address: input.Address})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = perform(engine, http.MethodPost, "/properties", PropertyRequest{Name: "No address"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(engine, http.MethodGet, path, nil)
	assert.Equal(t, "4 Elm Street, Springfield", decodeData[PropertyResponse](t, w).Address)

	w = perform(engine, http.MethodPut, path, PropertyRequest{Name: input.Name, Address: input.Address})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(engine, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestPropertyHandler_AddOwner(t *testing.T) {
	owner := uuid.New()
	coOwner := uuid.New()
	p, _ := property.NewProperty("Oak Court", "1 Oak Court", owner)
	p.OwnerIDs = append(p.OwnerIDs, coOwner)

	svc := new(mockPropertyService)
	svc.On("AddOwner", mock.Anything, owner, p.ID, "co@example.com").Return(p, nil)
	svc.On("AddOwner", mock.Anything, owner, p.ID, "ghost@example.com").Return(nil, shared.ErrNotFound)

	h := NewPropertyHandler(svc)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.POST("/properties/:id/owners", h.AddOwner)
	path := "/properties/" + p.ID.String() + "/owners"

	w := perform(engine, http.MethodPost, path, AddOwnerRequest{Email: "co@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[PropertyResponse](t, w).OwnerIDs, 2)

	w = perform(engine, http.MethodPost, path, AddOwnerRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type mockExpenseService struct {
	mock.Mock
}

func (m *mockExpenseService) expense(args mock.Arguments) (*property.Expense, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Expense), args.Error(1)
}

func (m *mockExpenseService) Create(ctx context.Context, ownerID uuid.UUID, input appproperty.ExpenseInput) (*property.Expense, error) {
	return m.expense(m.Called(ctx, ownerID, input))
}

func (m *mockExpenseService) Update(ctx context.Context, ownerID, expenseID uuid.UUID, input appproperty.ExpenseInput) (*property.Expense, error) {
	return m.expense(m.Called(ctx, ownerID, expenseID, input))
}

func (m *mockExpenseService) Delete(ctx context.Context, ownerID, expenseID uuid.UUID) error {
	return m.Called(ctx, ownerID, expenseID).Error(0)
}

func (m *mockExpenseService) List(ctx context.Context, ownerID uuid.UUID, q appproperty.ExpenseQuery) (*appproperty.ExpensePage, error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproperty.ExpensePage), args.Error(1)
}

func TestExpenseHandler(t *testing.T) {
	owner := uuid.New()
	propertyID := uuid.New()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	e, err := property.NewExpense(propertyID, property.ExpenseTypeMaintenanceOther,
		valueobject.NewMoneyFromInt(120), "Boiler repair", date)
	require.NoError(t, err)

	svc := new(mockExpenseService)
	svc.On("Create", mock.Anything, owner, mock.MatchedBy(func(in appproperty.ExpenseInput) bool {
		return in.PropertyID == propertyID &&
			in.Type == property.ExpenseTypeMaintenanceOther &&
			in.Amount.Equal(decimal.NewFromInt(120)) &&
			in.Date.Equal(date)
	})).Return(e, nil)
	svc.On("List", mock.Anything, owner, mock.MatchedBy(func(q appproperty.ExpenseQuery) bool {
		return q.PropertyID != nil && *q.PropertyID == propertyID &&
			q.FromDate != nil && q.FromDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			q.Type == nil
	})).Return(&appproperty.ExpensePage{Items: []*property.Expense{e}, Total: 1, Page: 1, PageSize: 50}, nil)
	svc.On("Delete", mock.Anything, owner, e.ID).Return(nil)

	h := NewExpenseHandler(svc)
	engine := sessionEngine(testSession(owner, identity.RoleOwner))
	engine.GET("/expenses", h.ListExpenses)
	engine.POST("/expenses", h.CreateExpense)
	engine.DELETE("/expenses/:id", h.DeleteExpense)

	body := `{"property_id":"` + propertyID.String() + `","type":"MAINTENANCE_OTHER","amount":120,"description":"Boiler repair","date":"2024-03-15"}`
	w := perform(engine, http.MethodPost, "/expenses", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[ExpenseResponse](t, w)
	assert.Equal(t, "2024-03-15", created.Date)
	assert.Equal(t, "MAINTENANCE_OTHER", created.Type)

	for _, bad := range []string{
		`{"property_id":"` + propertyID.String() + `","type":"TAXES","amount":120,"date":"2024-03-15"}`,
		`{"property_id":"` + propertyID.String() + `","type":"FIXED_SERVICE","amount":0,"date":"2024-03-15"}`,
		`{"property_id":"` + propertyID.String() + `","type":"FIXED_SERVICE","amount":10,"date":"15/03/2024"}`,
	} {
		assert.Equal(t, http.StatusBadRequest, perform(engine, http.MethodPost, "/expenses", bad).Code, bad)
	}

	w = perform(engine, http.MethodGet, "/expenses?property_id="+propertyID.String()+"&from=2024-01-01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), decode(t, w).Meta.Total)

	w = perform(engine, http.MethodDelete, "/expenses/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
