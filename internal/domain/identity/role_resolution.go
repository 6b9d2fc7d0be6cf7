package identity

import (
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// FallbackPolicy decides what a signed-in identity without a user profile may do
type FallbackPolicy string

const (
	// FallbackOwner treats a missing profile as an owner
	FallbackOwner FallbackPolicy = "owner"
	// FallbackDeny refuses to resolve a role for a missing profile
	FallbackDeny FallbackPolicy = "deny"
)

// IsValid returns true if the policy is known
func (p FallbackPolicy) IsValid() bool {
	return p == FallbackOwner || p == FallbackDeny
}

// Resolution is the outcome of resolving a signed-in identity to a role
type Resolution struct {
	UserID         uuid.UUID
	ActiveRole     Role
	AvailableRoles RoleSet
	// ProfileMissing is set when the role came from the fallback policy
	ProfileMissing bool
}

// CanSwitch reports whether the user may switch between roles
func (r Resolution) CanSwitch() bool {
	return len(r.AvailableRoles) > 1
}

// Switch returns a resolution with a different active role.
// Only roles the user declares are accepted.
func (r Resolution) Switch(role Role) (Resolution, error) {
	if !r.AvailableRoles.Has(role) {
		return r, ErrRoleNotDeclared
	}
	r.ActiveRole = role
	return r, nil
}

// ResolveRole determines the active role for an identity.
// A nil user means no profile exists and the fallback policy applies.
// Users holding owner default to owner; tenant-only users resolve to tenant.
func ResolveRole(uid uuid.UUID, user *User, fallback FallbackPolicy) (Resolution, error) {
	if user == nil {
		if fallback != FallbackOwner {
			return Resolution{}, ErrRoleUnresolved
		}
		return Resolution{
			UserID:         uid,
			ActiveRole:     RoleOwner,
			AvailableRoles: RoleSet{RoleOwner},
			ProfileMissing: true,
		}, nil
	}

	if len(user.Roles) == 0 {
		return Resolution{}, shared.NewDomainError("ROLE_UNRESOLVED", "User profile declares no roles")
	}

	active := RoleTenant
	if user.HasRole(RoleOwner) {
		active = RoleOwner
	}
	return Resolution{
		UserID:         user.ID,
		ActiveRole:     active,
		AvailableRoles: append(RoleSet(nil), user.Roles...),
	}, nil
}
