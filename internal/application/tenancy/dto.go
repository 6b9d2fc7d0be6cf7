package tenancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// OnboardInput describes a new tenant and their lease
type OnboardInput struct {
	Name             string
	Email            string
	Phone            string
	PropertyID       uuid.UUID
	FixedMonthlyRent decimal.Decimal
	PaysUtilities    bool
	StartDate        time.Time
}

// OnboardResult is the onboarded tenant, the lease and the link to hand them
type OnboardResult struct {
	User    *identity.User
	Tenancy *tenancy.Tenancy
	// UserCreated is false when an existing profile was reused
	UserCreated  bool
	PasswordLink *auth.PasswordLink
}

// UpdateInput holds editable lease terms
type UpdateInput struct {
	PropertyID       uuid.UUID
	FixedMonthlyRent decimal.Decimal
	PaysUtilities    bool
	StartDate        time.Time
}

// ListQuery filters tenancy listings
type ListQuery struct {
	PropertyID *uuid.UUID
	Active     *bool
}

// TenancyList is a set of tenancies with their tenants' profiles
type TenancyList struct {
	Items []*tenancy.Tenancy
	Users map[uuid.UUID]*identity.User
}
