package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProperty(t *testing.T, name string, owner uuid.UUID) *property.Property {
	t.Helper()
	p, err := property.NewProperty(name, "1 Main St", owner)
	require.NoError(t, err)
	return p
}

func TestGormPropertyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPropertyRepository(setupTestDB(t))

	alice := uuid.New()
	bob := uuid.New()
	maple := mustProperty(t, "Maple Court", alice)
	birch := mustProperty(t, "Birch House", bob)
	require.NoError(t, repo.Create(ctx, maple))
	require.NoError(t, repo.Create(ctx, birch))

	t.Run("finds by owner", func(t *testing.T) {
		owned, err := repo.FindByOwner(ctx, alice)
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, maple.ID, owned[0].ID)
		assert.Equal(t, []uuid.UUID{alice}, owned[0].OwnerIDs)
	})

	t.Run("add owner keeps order", func(t *testing.T) {
		require.NoError(t, maple.AddOwner(bob))
		require.NoError(t, maple.Update("Maple Court East", "2 Main St"))
		require.NoError(t, repo.Update(ctx, maple))

		found, err := repo.FindByID(ctx, maple.ID)
		require.NoError(t, err)
		assert.Equal(t, "Maple Court East", found.Name)
		assert.Equal(t, []uuid.UUID{alice, bob}, found.OwnerIDs)

		owned, err := repo.FindByOwner(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, owned, 2)
	})

	t.Run("find all sorted by name", func(t *testing.T) {
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Birch House", all[0].Name)

		some, err := repo.FindByIDs(ctx, []uuid.UUID{birch.ID})
		require.NoError(t, err)
		assert.Len(t, some, 1)
	})

	t.Run("delete removes owner links", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, birch.ID))
		_, err := repo.FindByID(ctx, birch.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		owned, err := repo.FindByOwner(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, owned, 1)
		assert.ErrorIs(t, repo.Delete(ctx, birch.ID), shared.ErrNotFound)
	})
}

func TestGormExpenseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(setupTestDB(t))

	maple := uuid.New()
	birch := uuid.New()
	day := func(d int) time.Time { return time.Date(2024, 8, d, 0, 0, 0, 0, time.UTC) }

	water, err := property.NewExpense(maple, property.ExpenseTypeFixedService, valueobject.NewMoneyFromInt(120), "Water service", day(3))
	require.NoError(t, err)
	plumber, err := property.NewExpense(maple, property.ExpenseTypeMaintenanceOther, valueobject.NewMoneyFromInt(80), "Plumber 100%", day(10))
	require.NoError(t, err)
	roof, err := property.NewExpense(birch, property.ExpenseTypeMaintenanceOther, valueobject.NewMoneyFromInt(900), "Roof", day(20))
	require.NoError(t, err)
	for _, e := range []*property.Expense{water, plumber, roof} {
		require.NoError(t, repo.Create(ctx, e))
	}

	t.Run("filters by property and type", func(t *testing.T) {
		maintenance := property.ExpenseTypeMaintenanceOther
		found, total, err := repo.FindAll(ctx, property.ExpenseFilter{
			PropertyIDs: []uuid.UUID{maple},
			Type:        &maintenance,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, plumber.ID, found[0].ID)
		assert.True(t, found[0].Amount.Equals(valueobject.NewMoneyFromInt(80)))
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		found, _, err := repo.FindAll(ctx, property.ExpenseFilter{Filter: shared.Filter{Search: "100%"}})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, plumber.ID, found[0].ID)
	})

	t.Run("paginates newest first", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, property.ExpenseFilter{Filter: shared.Filter{Page: 1, PageSize: 2, OrderBy: "date", OrderDir: "desc"}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, found, 2)
		assert.Equal(t, roof.ID, found[0].ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		require.NoError(t, water.Update(maple, property.ExpenseTypeFixedService, valueobject.NewMoneyFromInt(130), "Water", day(4)))
		require.NoError(t, repo.Update(ctx, water))
		found, err := repo.FindByID(ctx, water.ID)
		require.NoError(t, err)
		assert.Equal(t, "Water", found.Description)

		byProperty, err := repo.FindByProperties(ctx, []uuid.UUID{maple})
		require.NoError(t, err)
		assert.Len(t, byProperty, 2)

		require.NoError(t, repo.Delete(ctx, roof.ID))
		assert.ErrorIs(t, repo.Delete(ctx, roof.ID), shared.ErrNotFound)
	})
}
