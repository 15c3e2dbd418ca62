// Package export produces read-only bulk export projections: a CSV
// of all receipts joined with their projects and categories, a zip of
// the image tree, and per-project category charts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"gitlab.com/yelinaung/receipt-vault/internal/blob"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
	"gitlab.com/yelinaung/receipt-vault/internal/repository"
)

// Projector builds export views over the record store and, for image
// bundling, the blob store. It performs no mutation.
type Projector struct {
	store *repository.Store
	blobs *blob.Store
}

// NewProjector creates a Projector over the given stores.
func NewProjector(store *repository.Store, blobs *blob.Store) *Projector {
	return &Projector{store: store, blobs: blobs}
}

// Rows returns the denormalized export row set, one row per receipt.
func (p *Projector) Rows(ctx context.Context) ([]models.ExportRow, error) {
	return p.store.Receipts.ExportRows(ctx)
}

// CSV renders the export row set as CSV bytes.
func (p *Projector) CSV(ctx context.Context) ([]byte, error) {
	rows, err := p.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return renderCSV(rows)
}

func renderCSV(rows []models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"project_id", "project_name", "project_description", "budget",
		"total_expense", "receipt_id", "receipt_name", "category",
		"amount", "issued_at",
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range rows {
		budget := ""
		if rows[i].Budget != nil {
			budget = rows[i].Budget.StringFixed(2)
		}

		record := []string{
			fmt.Sprintf("%d", rows[i].ProjectID),
			rows[i].ProjectName,
			rows[i].ProjectDescription,
			budget,
			rows[i].TotalExpense.StringFixed(2),
			fmt.Sprintf("%d", rows[i].ReceiptID),
			rows[i].ReceiptName,
			rows[i].CategoryName,
			rows[i].Amount.StringFixed(2),
			rows[i].IssuedAt.Format("2006-01-02"),
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CSVFilename creates a dated filename for the CSV export.
func CSVFilename() string {
	return fmt.Sprintf("receipts_export_%s.csv", time.Now().Format("2006-01-02"))
}
