package tenancy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTerms() Terms {
	return Terms{
		PropertyID:       uuid.New(),
		FixedMonthlyRent: valueobject.NewMoneyFromInt(1200),
		PaysUtilities:    true,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewTenancy(t *testing.T) {
	userID := uuid.New()

	t.Run("creates active tenancy", func(t *testing.T) {
		ten, err := NewTenancy(userID, validTerms())
		require.NoError(t, err)
		assert.True(t, ten.Active)
		assert.Nil(t, ten.EndDate)
		assert.Len(t, ten.GetDomainEvents(), 1)
	})

	t.Run("allows zero rent", func(t *testing.T) {
		terms := validTerms()
		terms.FixedMonthlyRent = valueobject.Zero()
		_, err := NewTenancy(userID, terms)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*Terms)
	}{
		{"negative rent", func(tr *Terms) { tr.FixedMonthlyRent = valueobject.NewMoneyFromInt(-1) }},
		{"missing property", func(tr *Terms) { tr.PropertyID = uuid.Nil }},
		{"missing start date", func(tr *Terms) { tr.StartDate = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := validTerms()
			tt.mutate(&terms)
			_, err := NewTenancy(userID, terms)
			assert.Error(t, err)
		})
	}

	t.Run("requires user", func(t *testing.T) {
		_, err := NewTenancy(uuid.Nil, validTerms())
		assert.Error(t, err)
	})
}

func TestTenancy_Deactivate(t *testing.T) {
	ten, err := NewTenancy(uuid.New(), validTerms())
	require.NoError(t, err)

	assert.Error(t, ten.Deactivate(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))

	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ten.Deactivate(end))
	assert.False(t, ten.Active)
	require.NotNil(t, ten.EndDate)
	assert.Equal(t, end, *ten.EndDate)

	assert.Error(t, ten.Deactivate(end))
}

func TestSelectCurrent(t *testing.T) {
	a, _ := NewTenancy(uuid.New(), validTerms())
	b, _ := NewTenancy(uuid.New(), validTerms())

	current, needs, err := SelectCurrent(nil, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.False(t, needs)

	current, needs, err = SelectCurrent([]*Tenancy{a}, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, a, current)
	assert.False(t, needs)

	current, needs, err = SelectCurrent([]*Tenancy{a, b}, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.True(t, needs)

	current, needs, err = SelectCurrent([]*Tenancy{a, b}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, current)
	assert.False(t, needs)

	_, _, err = SelectCurrent([]*Tenancy{a, b}, uuid.New())
	assert.Error(t, err)
}
