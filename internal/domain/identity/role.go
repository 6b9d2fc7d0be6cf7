package identity

import (
	"slices"
	"strings"
)

// Role is a capability a user holds in the application
type Role string

const (
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleTenant:
		return true
	default:
		return false
	}
}

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// RoleSet is an ordered set of roles. Owner sorts before tenant.
type RoleSet []Role

// NewRoleSet builds a set from the given roles, dropping duplicates
func NewRoleSet(roles ...Role) (RoleSet, error) {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if !r.IsValid() {
			return nil, ErrInvalidRole
		}
		if !set.Has(r) {
			set = append(set, r)
		}
	}
	set.sort()
	return set, nil
}

// Has reports whether the set contains the role
func (s RoleSet) Has(r Role) bool {
	return slices.Contains(s, r)
}

// With returns a copy of the set including the role
func (s RoleSet) With(r Role) RoleSet {
	if s.Has(r) {
		return slices.Clone(s)
	}
	out := append(slices.Clone(s), r)
	out.sort()
	return out
}

// Strings returns the role names
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.String()
	}
	return out
}

func (s RoleSet) sort() {
	slices.SortFunc(s, func(a, b Role) int {
		return rank(a) - rank(b)
	})
}

func rank(r Role) int {
	if r == RoleOwner {
		return 0
	}
	return 1
}
