package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates tenant user", func(t *testing.T) {
		user, err := NewUser("  Dana   Reyes ", " Dana@Example.com ", "555-0100", RoleTenant)

		require.NoError(t, err)
		assert.Equal(t, "Dana Reyes", user.Name)
		assert.Equal(t, "dana@example.com", user.Email)
		assert.Equal(t, RoleSet{RoleTenant}, user.Roles)
		assert.NotEqual(t, uuid.Nil, user.ID)

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*UserCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, []string{"tenant"}, created.Roles)
	})

	t.Run("deduplicates and orders roles", func(t *testing.T) {
		user, err := NewUser("Sam", "sam@example.com", "", RoleTenant, RoleOwner, RoleTenant)
		require.NoError(t, err)
		assert.Equal(t, RoleSet{RoleOwner, RoleTenant}, user.Roles)
	})

	t.Run("requires a role", func(t *testing.T) {
		_, err := NewUser("Sam", "sam@example.com", "")
		assert.ErrorIs(t, err, ErrRolesRequired)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("Sam", "sam@example.com", "", Role("admin"))
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("Sam", "not-an-email", "", RoleOwner)
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewUser("   ", "sam@example.com", "", RoleOwner)
		assert.Error(t, err)
	})

	t.Run("keeps provided id", func(t *testing.T) {
		id := uuid.New()
		user, err := NewUserWithID(id, "Sam", "sam@example.com", "", RoleOwner)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})
}

func TestUser_GrantRole(t *testing.T) {
	user, err := NewUser("Ola", "ola@example.com", "", RoleOwner)
	require.NoError(t, err)
	user.ClearDomainEvents()

	require.NoError(t, user.GrantRole(RoleTenant))
	assert.True(t, user.HasRole(RoleOwner))
	assert.True(t, user.HasRole(RoleTenant))
	assert.Len(t, user.GetDomainEvents(), 1)

	// granting again is a no-op
	require.NoError(t, user.GrantRole(RoleTenant))
	assert.Len(t, user.GetDomainEvents(), 1)
	assert.Len(t, user.Roles, 2)

	assert.ErrorIs(t, user.GrantRole(Role("root")), ErrInvalidRole)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Owner ")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, r)

	_, err = ParseRole("landlord")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
