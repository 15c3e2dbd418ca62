package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

func setupReceipt(t *testing.T) (*Store, *models.Receipt, context.Context) {
	t.Helper()

	store, ctx := setupStore(t)
	p, err := store.Projects.Create(ctx, "Trip")
	require.NoError(t, err)

	receipt := &models.Receipt{ProjectID: p.ID, Name: "Taxi", Amount: decimal.NewFromInt(45)}
	require.NoError(t, store.Receipts.Create(ctx, receipt))
	return store, receipt, ctx
}

func TestReceiptImageRepository_Add(t *testing.T) {
	store, receipt, ctx := setupReceipt(t)

	t.Run("records the filename", func(t *testing.T) {
		img, err := store.Images.Add(ctx, receipt.ID, "receipt_1_1_1.jpg")
		require.NoError(t, err)
		require.NotZero(t, img.ID)
		require.Equal(t, receipt.ID, img.ReceiptID)
		require.Equal(t, "receipt_1_1_1.jpg", img.ImageName)
		require.False(t, img.CreatedAt.IsZero())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := store.Images.Add(ctx, receipt.ID, "  ")
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("fails for unknown receipt", func(t *testing.T) {
		_, err := store.Images.Add(ctx, 999999, "receipt_1_1_1.jpg")
		require.Error(t, err)
	})
}

func TestReceiptImageRepository_ListByReceipt(t *testing.T) {
	store, receipt, ctx := setupReceipt(t)

	t.Run("empty without images", func(t *testing.T) {
		images, err := store.Images.ListByReceipt(ctx, receipt.ID)
		require.NoError(t, err)
		require.Empty(t, images)
	})

	t.Run("insertion order", func(t *testing.T) {
		first, err := store.Images.Add(ctx, receipt.ID, "receipt_1_1_1.jpg")
		require.NoError(t, err)
		second, err := store.Images.Add(ctx, receipt.ID, "receipt_1_1_2.png")
		require.NoError(t, err)

		images, err := store.Images.ListByReceipt(ctx, receipt.ID)
		require.NoError(t, err)
		require.Len(t, images, 2)
		require.Equal(t, first.ID, images[0].ID)
		require.Equal(t, second.ID, images[1].ID)
	})
}

func TestReceiptImageRepository_Delete(t *testing.T) {
	store, receipt, ctx := setupReceipt(t)

	img, err := store.Images.Add(ctx, receipt.ID, "receipt_1_1_1.jpg")
	require.NoError(t, err)

	t.Run("removes the row", func(t *testing.T) {
		err := store.Images.Delete(ctx, img.ID)
		require.NoError(t, err)

		_, err = store.Images.GetByID(ctx, img.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("fails for unknown id", func(t *testing.T) {
		err := store.Images.Delete(ctx, img.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}
