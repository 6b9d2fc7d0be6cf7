package property

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProperty(t *testing.T) {
	owner := uuid.New()

	t.Run("creates property with owner", func(t *testing.T) {
		p, err := NewProperty(" Maple Court ", "12 Maple St", owner)
		require.NoError(t, err)
		assert.Equal(t, "Maple Court", p.Name)
		assert.True(t, p.IsOwnedBy(owner))
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("requires owner", func(t *testing.T) {
		_, err := NewProperty("Maple", "12 Maple St", uuid.Nil)
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})

	tests := []struct {
		name    string
		propN   string
		address string
	}{
		{"empty name", "", "12 Maple St"},
		{"empty address", "Maple", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProperty(tt.propN, tt.address, owner)
			assert.Error(t, err)
		})
	}
}

func TestProperty_AddOwner(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	p, err := NewProperty("Maple", "12 Maple St", first)
	require.NoError(t, err)

	require.NoError(t, p.AddOwner(second))
	require.NoError(t, p.AddOwner(second))
	assert.Equal(t, []uuid.UUID{first, second}, p.OwnerIDs)
	assert.Error(t, p.AddOwner(uuid.Nil))
}

func TestProperty_Update(t *testing.T) {
	p, err := NewProperty("Maple", "12 Maple St", uuid.New())
	require.NoError(t, err)

	require.NoError(t, p.Update("Maple Court", "14 Maple St"))
	assert.Equal(t, "14 Maple St", p.Address)
	assert.Error(t, p.Update("", "x"))
	assert.Equal(t, "Maple Court", p.Name)
}

func TestNewExpense(t *testing.T) {
	propertyID := uuid.New()
	date := time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)

	e, err := NewExpense(propertyID, ExpenseTypeFixedService, valueobject.NewMoneyFromInt(120), "Water service", date)
	require.NoError(t, err)
	assert.Equal(t, ExpenseTypeFixedService, e.Type)

	_, err = NewExpense(propertyID, ExpenseType("OTHER"), valueobject.NewMoneyFromInt(120), "x", date)
	assert.Error(t, err)

	_, err = NewExpense(propertyID, ExpenseTypeMaintenanceOther, valueobject.Zero(), "x", date)
	assert.Error(t, err)

	_, err = NewExpense(propertyID, ExpenseTypeMaintenanceOther, valueobject.NewMoneyFromInt(5), "x", time.Time{})
	assert.Error(t, err)

	require.NoError(t, e.Update(propertyID, ExpenseTypeMaintenanceOther, valueobject.NewMoneyFromInt(80), "Plumber", date))
	assert.Equal(t, "Plumber", e.Description)
}
