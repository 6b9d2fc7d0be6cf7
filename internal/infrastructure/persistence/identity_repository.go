package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository stores RentFlow profiles. Email is unique case-insensitively.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
	return onDuplicate(err, identity.ErrEmailInUse)
}

// Update rewrites the profile fields. Roles are stored whole.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	m := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":       m.Name,
		"email":      m.Email,
		"phone":      m.Phone,
		"roles":      m.Roles,
		"updated_at": m.UpdatedAt,
	})
	if err := mustAffect(result); err != nil {
		return onDuplicate(err, identity.ErrEmailInUse)
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id))
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	m, err := first[models.UserModel](r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, shared.ErrNotFound
	}
	m, err := first[models.UserModel](r.db.WithContext(ctx), "LOWER(email) = ?", identity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDs skips ids with no profile
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	if len(ids) == 0 {
		return []*identity.User{}, nil
	}
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, nil
}

// GormAccountRepository stores the local credentials behind LocalAccountProvider
type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

var _ identity.AccountRepository = (*GormAccountRepository)(nil)

func (r *GormAccountRepository) Create(ctx context.Context, a *identity.Account) error {
	err := r.db.WithContext(ctx).Create(models.AccountModelFromDomain(a)).Error
	return onDuplicate(err, identity.ErrEmailInUse)
}

func (r *GormAccountRepository) Update(ctx context.Context, a *identity.Account) error {
	m := models.AccountModelFromDomain(a)
	return mustAffect(r.db.WithContext(ctx).Model(&models.AccountModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"email":           m.Email,
		"password_hash":   m.PasswordHash,
		"password_set_at": m.PasswordSetAt,
		"updated_at":      m.UpdatedAt,
	}))
}

func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.db.WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id))
}

func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	m, err := first[models.AccountModel](r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	m, err := first[models.AccountModel](r.db.WithContext(ctx), "email = ?", identity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}
