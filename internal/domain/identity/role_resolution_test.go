package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRole(t *testing.T) {
	uid := uuid.New()

	t.Run("missing profile falls back to owner", func(t *testing.T) {
		first, err := ResolveRole(uid, nil, FallbackOwner)
		require.NoError(t, err)
		second, err := ResolveRole(uid, nil, FallbackOwner)
		require.NoError(t, err)

		assert.Equal(t, RoleOwner, first.ActiveRole)
		assert.True(t, first.ProfileMissing)
		assert.Equal(t, uid, first.UserID)
		assert.Equal(t, first, second)
		assert.False(t, first.CanSwitch())
	})

	t.Run("missing profile denied when policy is deny", func(t *testing.T) {
		_, err := ResolveRole(uid, nil, FallbackDeny)
		assert.ErrorIs(t, err, ErrRoleUnresolved)
	})

	t.Run("tenant only", func(t *testing.T) {
		user, err := NewUserWithID(uid, "Ten", "ten@example.com", "", RoleTenant)
		require.NoError(t, err)

		res, err := ResolveRole(uid, user, FallbackDeny)
		require.NoError(t, err)
		assert.Equal(t, RoleTenant, res.ActiveRole)
		assert.False(t, res.CanSwitch())
	})

	t.Run("both roles default to owner and allow switching", func(t *testing.T) {
		user, err := NewUserWithID(uid, "Both", "both@example.com", "", RoleTenant, RoleOwner)
		require.NoError(t, err)

		res, err := ResolveRole(uid, user, FallbackOwner)
		require.NoError(t, err)
		assert.Equal(t, RoleOwner, res.ActiveRole)
		assert.True(t, res.CanSwitch())

		switched, err := res.Switch(RoleTenant)
		require.NoError(t, err)
		assert.Equal(t, RoleTenant, switched.ActiveRole)
		assert.Equal(t, RoleOwner, res.ActiveRole)
	})

	t.Run("switch limited to declared roles", func(t *testing.T) {
		user, err := NewUserWithID(uid, "Own", "own@example.com", "", RoleOwner)
		require.NoError(t, err)

		res, err := ResolveRole(uid, user, FallbackOwner)
		require.NoError(t, err)
		_, err = res.Switch(RoleTenant)
		assert.ErrorIs(t, err, ErrRoleNotDeclared)
	})
}
