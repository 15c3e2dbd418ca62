package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

// ExportRows retrieves the denormalized export projection: one row
// per receipt, joined with its project and category. Projects without
// receipts are not represented.
func (r *ReceiptRepository) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.budget, p.total_expense,
		       r.id, r.name, COALESCE(c.name, ''), r.amount, r.issued_at
		FROM receipts r
		LEFT JOIN projects p ON r.project_id = p.id
		LEFT JOIN categories c ON r.category_id = c.id
		ORDER BY p.id ASC, r.issued_at DESC, r.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	var result []models.ExportRow
	for rows.Next() {
		var row models.ExportRow
		var budget decimal.NullDecimal
		if err := rows.Scan(
			&row.ProjectID, &row.ProjectName, &row.ProjectDescription, &budget, &row.TotalExpense,
			&row.ReceiptID, &row.ReceiptName, &row.CategoryName, &row.Amount, &row.IssuedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		if budget.Valid {
			row.Budget = &budget.Decimal
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}
	return result, nil
}
