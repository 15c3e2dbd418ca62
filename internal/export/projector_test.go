package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/receipt-vault/internal/blob"
	"gitlab.com/yelinaung/receipt-vault/internal/database"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
	"gitlab.com/yelinaung/receipt-vault/internal/repository"
)

func setupProjector(t *testing.T) (*Projector, *repository.Store, *blob.Store, context.Context) {
	t.Helper()

	tx := database.TestTx(t)
	store := repository.New(tx)
	blobs := blob.NewStore(t.TempDir())
	return NewProjector(store, blobs), store, blobs, context.Background()
}

func TestRenderCSV(t *testing.T) {
	budget := decimal.NewFromFloat(500.00)
	rows := []models.ExportRow{
		{
			ProjectID:          1,
			ProjectName:        "Trip",
			ProjectDescription: "January trip",
			Budget:             &budget,
			TotalExpense:       decimal.NewFromFloat(165.00),
			ReceiptID:          10,
			ReceiptName:        "Taxi",
			CategoryName:       "Transport",
			Amount:             decimal.NewFromFloat(45.00),
			IssuedAt:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ProjectID:          1,
			ProjectName:        "Trip",
			ProjectDescription: "January trip",
			Budget:             &budget,
			TotalExpense:       decimal.NewFromFloat(165.00),
			ReceiptID:          11,
			ReceiptName:        "Hotel",
			Amount:             decimal.NewFromFloat(120.00),
			IssuedAt:           time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	out, err := renderCSV(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t,
		"project_id,project_name,project_description,budget,total_expense,receipt_id,receipt_name,category,amount,issued_at",
		lines[0])
	require.Equal(t, "1,Trip,January trip,500.00,165.00,10,Taxi,Transport,45.00,2024-01-15", lines[1])
	require.Equal(t, "1,Trip,January trip,500.00,165.00,11,Hotel,,120.00,2024-01-16", lines[2])
}

func TestRenderCSV_NoBudget(t *testing.T) {
	rows := []models.ExportRow{
		{
			ProjectID:    2,
			ProjectName:  "Misc",
			TotalExpense: decimal.Zero,
			ReceiptID:    20,
			ReceiptName:  "Stamps",
			Amount:       decimal.NewFromFloat(3.50),
			IssuedAt:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	out, err := renderCSV(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "2,Misc,,,0.00,20,Stamps,,3.50,2024-03-01", lines[1])
}

func TestProjector_Rows(t *testing.T) {
	p, store, _, ctx := setupProjector(t)

	project, err := store.Projects.Create(ctx, "Trip")
	require.NoError(t, err)

	category, err := store.Categories.Create(ctx, "Transport")
	require.NoError(t, err)

	taxi := &models.Receipt{
		ProjectID:  project.ID,
		Name:       "Taxi",
		Amount:     decimal.NewFromFloat(45.00),
		CategoryID: &category.ID,
		IssuedAt:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Receipts.Create(ctx, taxi))
	hotel := &models.Receipt{
		ProjectID: project.ID,
		Name:      "Hotel",
		Amount:    decimal.NewFromFloat(120.00),
		IssuedAt:  time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Receipts.Create(ctx, hotel))

	rows, err := p.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest issued_at first within a project.
	require.Equal(t, "Hotel", rows[0].ReceiptName)
	require.Equal(t, "", rows[0].CategoryName)
	require.Equal(t, "Taxi", rows[1].ReceiptName)
	require.Equal(t, "Transport", rows[1].CategoryName)
	require.Equal(t, project.ID, rows[0].ProjectID)

	out, err := p.CSV(ctx)
	require.NoError(t, err)
	require.Contains(t, string(out), "Taxi,Transport,45.00,2024-01-15")
}

func TestCSVFilename(t *testing.T) {
	name := CSVFilename()
	require.True(t, strings.HasPrefix(name, "receipts_export_"))
	require.True(t, strings.HasSuffix(name, ".csv"))
}
