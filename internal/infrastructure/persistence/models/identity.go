package models

import (
	"strings"
	"time"

	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User domain entity.
// Roles are stored comma-separated, e.g. "owner,tenant".
type UserModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone string `gorm:"type:varchar(50)"`
	Roles string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Unknown role names are dropped.
func (m *UserModel) ToDomain() *identity.User {
	names := strings.Split(m.Roles, ",")
	roles := make([]identity.Role, 0, len(names))
	for _, name := range names {
		if r, err := identity.ParseRole(name); err == nil {
			roles = append(roles, r)
		}
	}
	set, _ := identity.NewRoleSet(roles...)
	return &identity.User{
		BaseAggregateRoot: m.toAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Roles:             set,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = identity.NormalizeEmail(u.Email)
	m.Phone = u.Phone
	m.Roles = strings.Join(u.Roles.Strings(), ",")
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// AccountModel is the persistence model for sign-in accounts.
type AccountModel struct {
	BaseModel
	Email         string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash  string `gorm:"type:varchar(255)"`
	PasswordSetAt *time.Time
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseEntity:    shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		PasswordSetAt: m.PasswordSetAt,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *identity.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Email = identity.NormalizeEmail(a.Email)
	m.PasswordHash = a.PasswordHash
	m.PasswordSetAt = a.PasswordSetAt
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}
