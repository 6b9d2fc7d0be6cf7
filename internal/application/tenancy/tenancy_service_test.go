package tenancy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccountProvider struct {
	mock.Mock
}

func (m *mockAccountProvider) WithAccounts(identity.AccountRepository) auth.AccountProvider {
	return m
}

func (m *mockAccountProvider) CreateAccount(ctx context.Context, userID uuid.UUID, email string) (*identity.Account, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *mockAccountProvider) Register(ctx context.Context, userID uuid.UUID, email, password string) (*identity.Account, error) {
	args := m.Called(ctx, userID, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *mockAccountProvider) Authenticate(ctx context.Context, email, password string) (*identity.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *mockAccountProvider) GeneratePasswordSetLink(ctx context.Context, userID uuid.UUID) (*auth.PasswordLink, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.PasswordLink), args.Error(1)
}

func (m *mockAccountProvider) SendPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAccountProvider) SetPassword(ctx context.Context, token, password string) (*identity.Account, error) {
	args := m.Called(ctx, token, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *mockAccountProvider) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type tenancyFixture struct {
	svc        *TenancyService
	tenancies  *testutil.MockTenancyRepository
	properties *testutil.MockPropertyRepository
	users      *testutil.MockUserRepository
	accounts   *testutil.MockAccountRepository
	provider   *mockAccountProvider
	events     *testutil.RecordingPublisher
	ownerID    uuid.UUID
	property   *property.Property
}

func newTenancyFixture(t *testing.T) tenancyFixture {
	t.Helper()
	f := tenancyFixture{
		tenancies:  new(testutil.MockTenancyRepository),
		properties: new(testutil.MockPropertyRepository),
		users:      new(testutil.MockUserRepository),
		accounts:   new(testutil.MockAccountRepository),
		provider:   new(mockAccountProvider),
		events:     &testutil.RecordingPublisher{},
		ownerID:    testutil.TestOwnerID(),
	}
	p, err := property.NewProperty("Harbour View 4B", "12 Quay St", f.ownerID)
	require.NoError(t, err)
	f.property = p
	f.properties.On("FindByID", mock.Anything, p.ID).Return(p, nil).Maybe()

	scope := NewNoOpTransactionScope(f.users, f.accounts, f.tenancies)
	f.svc = NewTenancyService(f.tenancies, f.properties, f.users, f.provider, scope, nil)
	f.svc.SetEventPublisher(f.events)
	return f
}

func (f tenancyFixture) onboardInput() OnboardInput {
	return OnboardInput{
		Name:             "Tina Tenant",
		Email:            "Tina@Example.com",
		Phone:            "+64 21 555 0100",
		PropertyID:       f.property.ID,
		FixedMonthlyRent: decimal.NewFromInt(1200),
		PaysUtilities:    true,
		StartDate:        time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTenancyService_Onboard(t *testing.T) {
	ctx := context.Background()
	link := &auth.PasswordLink{URL: "http://app.local/set-password?token=abc", ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("creates user, account and tenancy", func(t *testing.T) {
		f := newTenancyFixture(t)
		f.users.On("FindByEmail", mock.Anything, "tina@example.com").Return(nil, shared.ErrNotFound)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
		f.provider.On("CreateAccount", mock.Anything, mock.AnythingOfType("uuid.UUID"), "tina@example.com").Return(&identity.Account{}, nil)
		f.tenancies.On("Create", mock.Anything, mock.AnythingOfType("*tenancy.Tenancy")).Return(nil)
		f.provider.On("GeneratePasswordSetLink", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(link, nil)

		result, err := f.svc.Onboard(ctx, f.ownerID, f.onboardInput())
		require.NoError(t, err)
		assert.True(t, result.UserCreated)
		assert.True(t, result.User.HasRole(identity.RoleTenant))
		assert.Equal(t, result.User.ID, result.Tenancy.UserID)
		assert.True(t, result.Tenancy.Active)
		assert.Equal(t, link, result.PasswordLink)
		assert.Equal(t, []string{identity.EventTypeUserCreated, tenancy.EventTypeTenancyCreated}, f.events.Types())
	})

	t.Run("reuses an owner profile and grants tenant", func(t *testing.T) {
		f := newTenancyFixture(t)
		existing, err := identity.NewUser("Tina Tenant", "tina@example.com", "", identity.RoleOwner)
		require.NoError(t, err)
		existing.ClearDomainEvents()

		f.users.On("FindByEmail", mock.Anything, "tina@example.com").Return(existing, nil)
		f.users.On("Update", mock.Anything, existing).Return(nil)
		f.accounts.On("FindByID", mock.Anything, existing.ID).Return(&identity.Account{}, nil)
		f.tenancies.On("Create", mock.Anything, mock.AnythingOfType("*tenancy.Tenancy")).Return(nil)
		f.provider.On("GeneratePasswordSetLink", mock.Anything, existing.ID).Return(link, nil)

		result, err := f.svc.Onboard(ctx, f.ownerID, f.onboardInput())
		require.NoError(t, err)
		assert.False(t, result.UserCreated)
		assert.Equal(t, identity.RoleSet{identity.RoleOwner, identity.RoleTenant}, result.User.Roles)
		f.provider.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("email already has an account", func(t *testing.T) {
		f := newTenancyFixture(t)
		f.users.On("FindByEmail", mock.Anything, "tina@example.com").Return(nil, shared.ErrNotFound)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.provider.On("CreateAccount", mock.Anything, mock.Anything, "tina@example.com").Return(nil, identity.ErrEmailInUse)

		_, err := f.svc.Onboard(ctx, f.ownerID, f.onboardInput())
		assert.ErrorIs(t, err, identity.ErrEmailInUse)
		f.tenancies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Types())
	})

	t.Run("property owned by someone else", func(t *testing.T) {
		f := newTenancyFixture(t)
		_, err := f.svc.Onboard(ctx, uuid.New(), f.onboardInput())
		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("negative rent", func(t *testing.T) {
		f := newTenancyFixture(t)
		f.users.On("FindByEmail", mock.Anything, "tina@example.com").Return(nil, shared.ErrNotFound)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.provider.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).Return(&identity.Account{}, nil)

		in := f.onboardInput()
		in.FixedMonthlyRent = decimal.NewFromInt(-1)
		_, err := f.svc.Onboard(ctx, f.ownerID, in)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_RENT", de.Code)
	})
}

func newLease(t *testing.T, userID, propertyID uuid.UUID) *tenancy.Tenancy {
	t.Helper()
	tn, err := tenancy.NewTenancy(userID, tenancy.Terms{
		PropertyID:       propertyID,
		FixedMonthlyRent: valueobject.NewMoneyFromInt(950),
		StartDate:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	tn.ClearDomainEvents()
	return tn
}

func TestTenancyService_Deactivate(t *testing.T) {
	ctx := context.Background()
	f := newTenancyFixture(t)
	lease := newLease(t, testutil.TestTenantUserID(), f.property.ID)
	f.tenancies.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.tenancies.On("Update", mock.Anything, lease).Return(nil)
	f.svc.now = func() time.Time { return time.Date(2024, time.September, 15, 13, 0, 0, 0, time.UTC) }

	got, err := f.svc.Deactivate(ctx, f.ownerID, lease.ID, time.Time{})
	require.NoError(t, err)
	assert.False(t, got.Active)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC), *got.EndDate)
	assert.Equal(t, []string{tenancy.EventTypeTenancyDeactivated}, f.events.Types())

	_, err = f.svc.Deactivate(ctx, f.ownerID, lease.ID, time.Time{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTenancyService_Update_MoveToForeignProperty(t *testing.T) {
	f := newTenancyFixture(t)
	lease := newLease(t, testutil.TestTenantUserID(), f.property.ID)
	foreign, err := property.NewProperty("Elsewhere", "9 Other Rd", uuid.New())
	require.NoError(t, err)
	f.tenancies.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.properties.On("FindByID", mock.Anything, foreign.ID).Return(foreign, nil)

	_, err = f.svc.Update(context.Background(), f.ownerID, lease.ID, UpdateInput{
		PropertyID:       foreign.ID,
		FixedMonthlyRent: decimal.NewFromInt(1000),
		StartDate:        lease.StartDate,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.tenancies.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTenancyService_List(t *testing.T) {
	f := newTenancyFixture(t)
	tenant, err := identity.NewUser("Tina Tenant", "tina@example.com", "", identity.RoleTenant)
	require.NoError(t, err)
	lease := newLease(t, tenant.ID, f.property.ID)

	f.properties.On("FindByOwner", mock.Anything, f.ownerID).Return([]*property.Property{f.property}, nil)
	f.tenancies.On("FindAll", mock.Anything, tenancy.Filter{PropertyIDs: []uuid.UUID{f.property.ID}}).
		Return([]*tenancy.Tenancy{lease}, nil)
	f.users.On("FindByIDs", mock.Anything, []uuid.UUID{tenant.ID}).Return([]*identity.User{tenant}, nil)

	list, err := f.svc.List(context.Background(), f.ownerID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Tina Tenant", list.Users[tenant.ID].Name)

	other := uuid.New()
	list, err = f.svc.List(context.Background(), f.ownerID, ListQuery{PropertyID: &other})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
