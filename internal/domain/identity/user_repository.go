package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores profiles. Lookups of a missing user return shared.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail matches case-insensitively
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDs skips unknown ids; order is unspecified
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
}
