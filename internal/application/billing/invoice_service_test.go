package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.August, 3, 9, 0, 0, 0, time.UTC)

type invoiceFixture struct {
	invoices   *testutil.MockInvoiceRepository
	tenancies  *testutil.MockTenancyRepository
	properties *testutil.MockPropertyRepository
	events     *testutil.RecordingPublisher
	svc        *InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoices:   new(testutil.MockInvoiceRepository),
		tenancies:  new(testutil.MockTenancyRepository),
		properties: new(testutil.MockPropertyRepository),
		events:     &testutil.RecordingPublisher{},
	}
	f.svc = NewInvoiceService(f.invoices, f.tenancies, f.properties, NewNoOpTransactionScope(f.invoices), nil)
	f.svc.SetEventPublisher(f.events)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func newTestProperty(t *testing.T, ownerID uuid.UUID) *property.Property {
	t.Helper()
	p, err := property.NewProperty("Unit 4", "12 High Street", ownerID)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newTestTenancy(t *testing.T, userID, propertyID uuid.UUID, rent int64) *tenancy.Tenancy {
	t.Helper()
	ten, err := tenancy.NewTenancy(userID, tenancy.Terms{
		PropertyID:       propertyID,
		FixedMonthlyRent: valueobject.NewMoneyFromInt(rent),
		StartDate:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	ten.ClearDomainEvents()
	return ten
}

func newTestInvoice(t *testing.T, ten *tenancy.Tenancy, period billing.Period) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(ten.ID, ten.UserID, ten.PropertyID, period, ten.FixedMonthlyRent, fixedNow)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func mustPeriod(t *testing.T, year, month int) billing.Period {
	t.Helper()
	p, err := billing.NewPeriod(year, month)
	require.NoError(t, err)
	return p
}

func TestInvoiceService_Generate(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	active := true

	t.Run("creates invoices only for tenancies not yet billed", func(t *testing.T) {
		f := newInvoiceFixture()
		prop := newTestProperty(t, ownerID)
		fresh := newTestTenancy(t, uuid.New(), prop.ID, 1200)
		billed := newTestTenancy(t, uuid.New(), prop.ID, 900)
		period := mustPeriod(t, 2024, 8)
		existing := newTestInvoice(t, billed, period)

		f.properties.On("FindByOwner", mock.Anything, ownerID).Return([]*property.Property{prop}, nil)
		f.tenancies.On("FindAll", mock.Anything, tenancy.Filter{PropertyIDs: []uuid.UUID{prop.ID}, Active: &active}).
			Return([]*tenancy.Tenancy{fresh, billed}, nil)
		f.invoices.On("FindByPeriod", mock.Anything, period, []uuid.UUID{fresh.ID, billed.ID}).
			Return([]*billing.Invoice{existing}, nil)
		f.invoices.On("CreateBatch", mock.Anything, mock.MatchedBy(func(invs []*billing.Invoice) bool {
			return len(invs) == 1 && invs[0].TenancyID == fresh.ID
		})).Return(nil)

		result, err := f.svc.Generate(ctx, ownerID, 2024, 8)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Skipped)
		inv := result.Invoices[0]
		assert.Equal(t, "2024-08", inv.Period.String())
		assert.True(t, inv.TotalDue.Equals(valueobject.NewMoneyFromInt(1200)))
		assert.True(t, inv.UtilitiesAmount.IsZero())
		assert.Equal(t, billing.InvoiceStatusPending, inv.Status)
		assert.Equal(t, []string{billing.EventTypeInvoiceGenerated}, f.events.Types())
		f.invoices.AssertExpectations(t)
	})

	t.Run("a repeated run creates nothing", func(t *testing.T) {
		f := newInvoiceFixture()
		prop := newTestProperty(t, ownerID)
		ten := newTestTenancy(t, uuid.New(), prop.ID, 1200)
		period := mustPeriod(t, 2024, 8)

		f.properties.On("FindByOwner", mock.Anything, ownerID).Return([]*property.Property{prop}, nil)
		f.tenancies.On("FindAll", mock.Anything, mock.Anything).Return([]*tenancy.Tenancy{ten}, nil)
		f.invoices.On("FindByPeriod", mock.Anything, period, mock.Anything).
			Return([]*billing.Invoice{newTestInvoice(t, ten, period)}, nil)

		result, err := f.svc.Generate(ctx, ownerID, 2024, 8)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		f.invoices.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Types())
	})

	t.Run("owner without properties", func(t *testing.T) {
		f := newInvoiceFixture()
		f.properties.On("FindByOwner", mock.Anything, ownerID).Return([]*property.Property{}, nil)

		result, err := f.svc.Generate(ctx, ownerID, 2024, 8)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		f.tenancies.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid period", func(t *testing.T) {
		f := newInvoiceFixture()
		_, err := f.svc.Generate(ctx, ownerID, 2024, 13)
		assert.ErrorIs(t, err, billing.ErrInvalidPeriod)
	})

	t.Run("batch failure returns an error and publishes nothing", func(t *testing.T) {
		f := newInvoiceFixture()
		prop := newTestProperty(t, ownerID)
		ten := newTestTenancy(t, uuid.New(), prop.ID, 1200)

		f.properties.On("FindByOwner", mock.Anything, ownerID).Return([]*property.Property{prop}, nil)
		f.tenancies.On("FindAll", mock.Anything, mock.Anything).Return([]*tenancy.Tenancy{ten}, nil)
		f.invoices.On("FindByPeriod", mock.Anything, mock.Anything, mock.Anything).Return([]*billing.Invoice{}, nil)
		f.invoices.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.svc.Generate(ctx, ownerID, 2024, 8)
		assert.Error(t, err)
		assert.Empty(t, f.events.Types())
	})
}

func TestInvoiceService_GenerateScheduled(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceFixture()
	active := true
	period := mustPeriod(t, 2024, 9)
	a := newTestTenancy(t, uuid.New(), uuid.New(), 800)
	b := newTestTenancy(t, uuid.New(), uuid.New(), 950)

	f.tenancies.On("FindAll", mock.Anything, tenancy.Filter{Active: &active}).Return([]*tenancy.Tenancy{a, b}, nil)
	f.invoices.On("FindByPeriod", mock.Anything, period, []uuid.UUID(nil)).Return([]*billing.Invoice{}, nil)
	f.invoices.On("CreateBatch", mock.Anything, mock.MatchedBy(func(invs []*billing.Invoice) bool { return len(invs) == 2 })).Return(nil)

	result, err := f.svc.GenerateScheduled(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	f.properties.AssertNotCalled(t, "FindByOwner", mock.Anything, mock.Anything)
}

func TestInvoiceService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("tenant sees own invoices", func(t *testing.T) {
		f := newInvoiceFixture()
		userID := uuid.New()
		f.invoices.On("FindAll", mock.Anything, mock.MatchedBy(func(filter billing.InvoiceFilter) bool {
			return filter.UserID != nil && *filter.UserID == userID && filter.PropertyIDs == nil
		})).Return([]*billing.Invoice{}, int64(0), nil)

		page, err := f.svc.List(ctx, userID, identity.RoleTenant, InvoiceQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 50, page.PageSize)
	})

	t.Run("owner is scoped to owned properties", func(t *testing.T) {
		f := newInvoiceFixture()
		ownerID := uuid.New()
		prop := newTestProperty(t, ownerID)
		status := billing.InvoiceStatusPartial
		f.properties.On("FindByOwner", mock.Anything, ownerID).Return([]*property.Property{prop}, nil)
		f.invoices.On("FindAll", mock.Anything, mock.MatchedBy(func(filter billing.InvoiceFilter) bool {
			return len(filter.PropertyIDs) == 1 && filter.PropertyIDs[0] == prop.ID && *filter.Status == status
		})).Return([]*billing.Invoice{}, int64(0), nil)

		_, err := f.svc.List(ctx, ownerID, identity.RoleOwner, InvoiceQuery{Status: &status})
		require.NoError(t, err)
		f.invoices.AssertExpectations(t)
	})
}

func TestInvoiceService_Get(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceFixture()
	ownerID := uuid.New()
	prop := newTestProperty(t, ownerID)
	ten := newTestTenancy(t, uuid.New(), prop.ID, 1000)
	inv := newTestInvoice(t, ten, mustPeriod(t, 2024, 8))

	f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	f.properties.On("FindByID", mock.Anything, prop.ID).Return(prop, nil)

	got, err := f.svc.Get(ctx, ten.UserID, identity.RoleTenant, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	_, err = f.svc.Get(ctx, uuid.New(), identity.RoleTenant, inv.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = f.svc.Get(ctx, ownerID, identity.RoleOwner, inv.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, uuid.New(), identity.RoleOwner, inv.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestInvoiceService_UpdateUtilities(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("recomputes total due", func(t *testing.T) {
		f := newInvoiceFixture()
		prop := newTestProperty(t, ownerID)
		inv := newTestInvoice(t, newTestTenancy(t, uuid.New(), prop.ID, 1200), mustPeriod(t, 2024, 8))

		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		f.properties.On("FindByID", mock.Anything, prop.ID).Return(prop, nil)
		f.invoices.On("Update", mock.Anything, inv).Return(nil)

		got, err := f.svc.UpdateUtilities(ctx, ownerID, inv.ID, decimal.NewFromInt(80))
		require.NoError(t, err)
		assert.True(t, got.TotalDue.Equals(valueobject.NewMoneyFromInt(1280)))
		assert.Equal(t, []string{billing.EventTypeInvoiceUtilitiesUpdated}, f.events.Types())
	})

	t.Run("paid invoice is finalized", func(t *testing.T) {
		f := newInvoiceFixture()
		prop := newTestProperty(t, ownerID)
		inv := newTestInvoice(t, newTestTenancy(t, uuid.New(), prop.ID, 1200), mustPeriod(t, 2024, 8))
		require.NoError(t, inv.MarkPaid(fixedNow))

		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		f.properties.On("FindByID", mock.Anything, prop.ID).Return(prop, nil)

		_, err := f.svc.UpdateUtilities(ctx, ownerID, inv.ID, decimal.NewFromInt(80))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("other owner is forbidden", func(t *testing.T) {
		f := newInvoiceFixture()
		prop := newTestProperty(t, ownerID)
		inv := newTestInvoice(t, newTestTenancy(t, uuid.New(), prop.ID, 1200), mustPeriod(t, 2024, 8))

		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		f.properties.On("FindByID", mock.Anything, prop.ID).Return(prop, nil)

		_, err := f.svc.UpdateUtilities(ctx, uuid.New(), inv.ID, decimal.NewFromInt(80))
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
