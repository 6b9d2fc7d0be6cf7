package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appbilling "github.com/rentflow/backend/internal/application/billing"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	apptenancy "github.com/rentflow/backend/internal/application/tenancy"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"github.com/rentflow/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countInvoices(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.InvoiceModel{}).Count(&n).Error)
	return n
}

func TestGormBillingTransactionScope_GenerationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	scope := NewGormBillingTransactionScope(db)
	aug := mustPeriod(t, 2024, 8)

	invoices := []*billing.Invoice{
		mustInvoice(t, uuid.New(), uuid.New(), uuid.New(), aug, 1200),
		mustInvoice(t, uuid.New(), uuid.New(), uuid.New(), aug, 950),
	}
	boom := errors.New("write failed")

	err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		if err := repos.InvoiceRepo().CreateBatch(ctx, invoices); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, countInvoices(t, db))

	err = scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		return repos.InvoiceRepo().CreateBatch(ctx, invoices)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), countInvoices(t, db))
}

func TestGormBillingTransactionScope_SubmissionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	scope := NewGormBillingTransactionScope(db)
	aug := mustPeriod(t, 2024, 8)

	stored := mustInvoice(t, uuid.New(), uuid.New(), uuid.New(), aug, 850)
	require.NoError(t, repo.Create(ctx, stored))
	missing := mustInvoice(t, uuid.New(), uuid.New(), uuid.New(), aug, 1215)

	require.NoError(t, stored.SubmitPayment(valueobject.NewMoneyFromInt(500), "receipts/r.png", stored.CreatedAt))
	require.NoError(t, missing.SubmitPayment(valueobject.NewMoneyFromInt(500), "receipts/r.png", stored.CreatedAt))

	err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		return repos.InvoiceRepo().UpdateBatch(ctx, []*billing.Invoice{stored, missing})
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	reloaded, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.SubmittedPaymentAmount)
	assert.Nil(t, reloaded.PaymentProofURL)
}

func TestGormBillingTransactionScope_StorageFailure(t *testing.T) {
	gormDB, mock := testutil.NewMockPostgres(t)

	aug := mustPeriod(t, 2024, 8)
	first := mustInvoice(t, uuid.New(), uuid.New(), uuid.New(), aug, 850)
	second := mustInvoice(t, uuid.New(), uuid.New(), uuid.New(), aug, 1215)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "invoices" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "invoices" SET`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	scope := NewGormBillingTransactionScope(gormDB)
	err := scope.Execute(context.Background(), func(repos appbilling.TransactionalRepositories) error {
		return repos.InvoiceRepo().UpdateBatch(context.Background(), []*billing.Invoice{first, second})
	})
	assert.Error(t, err)
}

func TestGormTenancyTransactionScope_OnboardingRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	scope := NewGormTenancyTransactionScope(db)

	user := mustUser(t, "Tina Tenant", "tina@example.com", identity.RoleTenant)
	taken, err := identity.NewAccount(uuid.New(), "tina@example.com")
	require.NoError(t, err)
	require.NoError(t, NewGormAccountRepository(db).Create(ctx, taken))

	err = scope.Execute(ctx, func(repos apptenancy.TransactionalRepositories) error {
		if err := repos.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		if err := repos.TenancyRepo().Create(ctx, mustTenancy(t, user.ID, uuid.New(), 1200)); err != nil {
			return err
		}
		account, err := identity.NewAccount(user.ID, user.Email)
		if err != nil {
			return err
		}
		return repos.AccountRepo().Create(ctx, account)
	})
	assert.ErrorIs(t, err, identity.ErrEmailInUse)

	_, err = NewGormUserRepository(db).FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	tenancies, err := NewGormTenancyRepository(db).FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tenancies)
}

func TestGormIdentityTransactionScope_SignupRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	scope := NewGormIdentityTransactionScope(db)

	user := mustUser(t, "Olive Owner", "olive@example.com", identity.RoleOwner)
	taken, err := identity.NewAccount(uuid.New(), "olive@example.com")
	require.NoError(t, err)
	require.NoError(t, NewGormAccountRepository(db).Create(ctx, taken))

	err = scope.Execute(ctx, func(repos appidentity.TransactionalRepositories) error {
		if err := repos.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		account, err := identity.NewAccount(user.ID, user.Email)
		if err != nil {
			return err
		}
		return repos.AccountRepo().Create(ctx, account)
	})
	assert.ErrorIs(t, err, identity.ErrEmailInUse)

	_, err = NewGormUserRepository(db).FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
