package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/receipt-vault/internal/database"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

// ReceiptRepository handles receipt database operations.
type ReceiptRepository struct {
	db database.PGXDB
	mu *sync.Mutex
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db database.PGXDB, mu *sync.Mutex) *ReceiptRepository {
	return &ReceiptRepository{db: db, mu: mu}
}

// Create adds a new receipt. The owning project must exist.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	receipt.Name = strings.TrimSpace(receipt.Name)
	if receipt.Name == "" {
		return fmt.Errorf("receipt name must not be empty: %w", models.ErrValidation)
	}
	if receipt.IssuedAt.IsZero() {
		receipt.IssuedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`,
		receipt.ProjectID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if !exists {
		return fmt.Errorf("project %d does not exist: %w", receipt.ProjectID, models.ErrValidation)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO receipts (project_id, category_id, name, amount, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, issued_at, created_at, updated_at
	`, receipt.ProjectID, receipt.CategoryID, receipt.Name, receipt.Amount, receipt.IssuedAt,
	).Scan(&receipt.ID, &receipt.IssuedAt, &receipt.CreatedAt, &receipt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	return nil
}

// Update modifies an existing receipt and refreshes updated_at.
func (r *ReceiptRepository) Update(ctx context.Context, receipt *models.Receipt) error {
	receipt.Name = strings.TrimSpace(receipt.Name)
	if receipt.Name == "" {
		return fmt.Errorf("receipt name must not be empty: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tag, err := r.db.Exec(ctx, `
		UPDATE receipts
		SET name = $2, amount = $3, category_id = $4, issued_at = $5, updated_at = NOW()
		WHERE id = $1
	`, receipt.ID, receipt.Name, receipt.Amount, receipt.CategoryID, receipt.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %d: %w", receipt.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a receipt and its image rows in one transaction.
// Backing image files are the coordinator's responsibility.
func (r *ReceiptRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM receipt_images WHERE receipt_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete receipt image rows: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %d: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit receipt delete: %w", err)
	}
	return nil
}

// GetByID retrieves a receipt by ID.
func (r *ReceiptRepository) GetByID(ctx context.Context, id int) (*models.Receipt, error) {
	var rec models.Receipt
	var categoryID *int
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, category_id, name, amount, issued_at, created_at, updated_at
		FROM receipts WHERE id = $1
	`, id).Scan(&rec.ID, &rec.ProjectID, &categoryID, &rec.Name, &rec.Amount,
		&rec.IssuedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("receipt %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	rec.CategoryID = categoryID
	return &rec, nil
}

// List retrieves a project's receipts, most recently issued first.
// searchText filters by case-insensitive substring match on the name
// or the amount rendered as text; categoryID filters by exact match.
func (r *ReceiptRepository) List(ctx context.Context, projectID int, searchText string, categoryID *int) ([]models.Receipt, error) {
	query := `
		SELECT r.id, r.project_id, r.category_id, r.name, r.amount, r.issued_at,
		       r.created_at, r.updated_at,
		       c.id, c.name, c.created_at
		FROM receipts r
		LEFT JOIN categories c ON r.category_id = c.id
		WHERE r.project_id = $1
	`
	args := []any{projectID}

	if searchText = strings.TrimSpace(searchText); searchText != "" {
		keyword := "%" + searchText + "%"
		args = append(args, keyword)
		n := strconv.Itoa(len(args))
		query += ` AND (r.name ILIKE $` + n + ` OR CAST(r.amount AS TEXT) ILIKE $` + n + `)`
	}

	if categoryID != nil {
		args = append(args, *categoryID)
		query += ` AND r.category_id = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY r.issued_at DESC, r.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	return scanReceipts(rows)
}

// SumAmounts returns the sum of amounts over all receipts of a
// project, zero when the project has none.
func (r *ReceiptRepository) SumAmounts(ctx context.Context, projectID int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM receipts WHERE project_id = $1
	`, projectID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum receipt amounts: %w", err)
	}
	return total, nil
}

// scanReceipts is a helper to scan receipt rows with category joins.
func scanReceipts(rows pgx.Rows) ([]models.Receipt, error) {
	var receipts []models.Receipt
	for rows.Next() {
		var rec models.Receipt
		var categoryID, catID *int
		var catName *string
		var catCreatedAt *time.Time

		if err := rows.Scan(
			&rec.ID, &rec.ProjectID, &categoryID, &rec.Name, &rec.Amount,
			&rec.IssuedAt, &rec.CreatedAt, &rec.UpdatedAt,
			&catID, &catName, &catCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}

		rec.CategoryID = categoryID
		if catID != nil {
			rec.Category = &models.Category{
				ID:        *catID,
				Name:      *catName,
				CreatedAt: *catCreatedAt,
			}
		}
		receipts = append(receipts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return receipts, nil
}
