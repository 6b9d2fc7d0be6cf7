package identity

import (
	"context"

	"github.com/rentflow/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the repositories touched by signup
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to identity repositories within a transaction
type TransactionalRepositories interface {
	UserRepo() identity.UserRepository
	AccountRepo() identity.AccountRepository
}

// NoOpTransactionScope runs fn directly against the given repositories without a transaction
type NoOpTransactionScope struct {
	userRepo    identity.UserRepository
	accountRepo identity.AccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(userRepo identity.UserRepository, accountRepo identity.AccountRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{userRepo: userRepo, accountRepo: accountRepo}
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

var _ TransactionScope = (*NoOpTransactionScope)(nil)
