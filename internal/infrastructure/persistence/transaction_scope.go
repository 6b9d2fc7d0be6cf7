package persistence

import (
	"context"

	appbilling "github.com/rentflow/backend/internal/application/billing"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	apptenancy "github.com/rentflow/backend/internal/application/tenancy"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope using GORM transactions.
// Invoice generation and payment submission run through it.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTenancyTransactionScope implements the onboarding TransactionScope using GORM transactions
type GormTenancyTransactionScope struct {
	db *gorm.DB
}

// NewGormTenancyTransactionScope creates a new GormTenancyTransactionScope
func NewGormTenancyTransactionScope(db *gorm.DB) *GormTenancyTransactionScope {
	return &GormTenancyTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTenancyTransactionScope) Execute(ctx context.Context, fn func(repos apptenancy.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormIdentityTransactionScope implements the signup TransactionScope using GORM transactions
type GormIdentityTransactionScope struct {
	db *gorm.DB
}

// NewGormIdentityTransactionScope creates a new GormIdentityTransactionScope
func NewGormIdentityTransactionScope(db *gorm.DB) *GormIdentityTransactionScope {
	return &GormIdentityTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormIdentityTransactionScope) Execute(ctx context.Context, fn func(repos appidentity.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// UserRepo returns the user repository scoped to the current transaction
func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// AccountRepo returns the account repository scoped to the current transaction
func (r *gormTransactionalRepositories) AccountRepo() identity.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// TenancyRepo returns the tenancy repository scoped to the current transaction
func (r *gormTransactionalRepositories) TenancyRepo() tenancy.TenancyRepository {
	return NewGormTenancyRepository(r.tx)
}

var (
	_ appbilling.TransactionScope           = (*GormBillingTransactionScope)(nil)
	_ appbilling.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
	_ appidentity.TransactionScope          = (*GormIdentityTransactionScope)(nil)
	_ appidentity.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apptenancy.TransactionScope           = (*GormTenancyTransactionScope)(nil)
	_ apptenancy.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
)
