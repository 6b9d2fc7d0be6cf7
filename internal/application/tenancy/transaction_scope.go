package tenancy

import (
	"context"

	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/tenancy"
)

// TransactionScope provides transactional access to the repositories touched by onboarding.
// A tenant's user, account and tenancy are written together or not at all.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to onboarding repositories within a transaction
type TransactionalRepositories interface {
	UserRepo() identity.UserRepository
	AccountRepo() identity.AccountRepository
	TenancyRepo() tenancy.TenancyRepository
}

// NoOpTransactionScope runs fn directly against the given repositories without a transaction
type NoOpTransactionScope struct {
	userRepo    identity.UserRepository
	accountRepo identity.AccountRepository
	tenancyRepo tenancy.TenancyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	userRepo identity.UserRepository,
	accountRepo identity.AccountRepository,
	tenancyRepo tenancy.TenancyRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		tenancyRepo: tenancyRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// UserRepo returns the user repository
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
}

// AccountRepo returns the account repository
func (s *NoOpTransactionScope) AccountRepo() identity.AccountRepository {
	return s.accountRepo
}

// TenancyRepo returns the tenancy repository
func (s *NoOpTransactionScope) TenancyRepo() tenancy.TenancyRepository {
	return s.tenancyRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
