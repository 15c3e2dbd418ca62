package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

func TestCategoryRepository_Create(t *testing.T) {
	store, ctx := setupStore(t)

	t.Run("creates category", func(t *testing.T) {
		cat, err := store.Categories.Create(ctx, "Food")
		require.NoError(t, err)
		require.NotZero(t, cat.ID)
		require.Equal(t, "Food", cat.Name)
		require.False(t, cat.CreatedAt.IsZero())
	})

	t.Run("trims the name", func(t *testing.T) {
		cat, err := store.Categories.Create(ctx, "  Transport  ")
		require.NoError(t, err)
		require.Equal(t, "Transport", cat.Name)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := store.Categories.Create(ctx, "   ")
		require.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestCategoryRepository_GetAll(t *testing.T) {
	store, ctx := setupStore(t)

	first, err := store.Categories.Create(ctx, "Zebra")
	require.NoError(t, err)
	second, err := store.Categories.Create(ctx, "Apple")
	require.NoError(t, err)

	t.Run("insertion order, not alphabetical", func(t *testing.T) {
		categories, err := store.Categories.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		require.Equal(t, first.ID, categories[0].ID)
		require.Equal(t, second.ID, categories[1].ID)
	})
}

func TestCategoryRepository_GetByID(t *testing.T) {
	store, ctx := setupStore(t)

	cat, err := store.Categories.Create(ctx, "Food")
	require.NoError(t, err)

	t.Run("retrieves existing category", func(t *testing.T) {
		got, err := store.Categories.GetByID(ctx, cat.ID)
		require.NoError(t, err)
		require.Equal(t, cat.Name, got.Name)
	})

	t.Run("fails for unknown id", func(t *testing.T) {
		_, err := store.Categories.GetByID(ctx, 999999)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}
