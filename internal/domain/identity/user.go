package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Identity errors
var (
	ErrInvalidRole     = shared.NewDomainError("INVALID_ROLE", "Role must be owner or tenant")
	ErrRolesRequired   = shared.NewDomainError("ROLES_REQUIRED", "User must hold at least one role")
	ErrRoleUnresolved  = shared.NewDomainError("ROLE_UNRESOLVED", "No user profile exists for this identity")
	ErrRoleNotDeclared = shared.NewDomainError("ROLE_NOT_DECLARED", "User does not hold the requested role")
)

// User is the identity shared by owners and tenants.
// Its ID matches the account ID issued by the identity provider.
type User struct {
	shared.BaseAggregateRoot
	Name  string
	Email string
	Phone string
	Roles RoleSet
}

// NewUser creates a user holding the given roles
func NewUser(name, email, phone string, roles ...Role) (*User, error) {
	return NewUserWithID(uuid.New(), name, email, phone, roles...)
}

// NewUserWithID creates a user bound to an existing identity-provider ID
func NewUserWithID(id uuid.UUID, name, email, phone string, roles ...Role) (*User, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 50 {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if len(roles) == 0 {
		return nil, ErrRolesRequired
	}
	set, err := NewRoleSet(roles...)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		Roles:             set,
	}
	user.ID = id
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// GrantRole adds a role. Granting a held role is a no-op.
func (u *User) GrantRole(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	if u.Roles.Has(role) {
		return nil
	}
	u.Roles = u.Roles.With(role)
	u.Touch(time.Now())
	u.AddDomainEvent(NewUserRoleGrantedEvent(u, role))
	return nil
}

// HasRole reports whether the user holds the role
func (u *User) HasRole(role Role) bool {
	return u.Roles.Has(role)
}

// UpdateContact changes the user's phone number
func (u *User) UpdateContact(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.Phone = phone
	u.Touch(time.Now())
	return nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
