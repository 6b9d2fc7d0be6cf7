package identity

import "github.com/rentflow/backend/internal/domain/shared"

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated     = "UserCreated"
	EventTypeUserRoleGranted = "UserRoleGranted"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Roles:           user.Roles.Strings(),
	}
}

// UserRoleGrantedEvent is published when a user gains a role
type UserRoleGrantedEvent struct {
	shared.BaseDomainEvent
	Role Role `json:"role"`
}

// NewUserRoleGrantedEvent creates a new UserRoleGrantedEvent
func NewUserRoleGrantedEvent(user *User, role Role) *UserRoleGrantedEvent {
	return &UserRoleGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleGranted, AggregateTypeUser, user.ID),
		Role:            role,
	}
}
