package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/receipt-vault/internal/database"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

// ReceiptImageRepository handles receipt image record operations.
// Rows here only name files; the files themselves live in the blob
// store, and a row must only be inserted once its file is in place.
type ReceiptImageRepository struct {
	db database.PGXDB
	mu *sync.Mutex
}

// NewReceiptImageRepository creates a new ReceiptImageRepository.
func NewReceiptImageRepository(db database.PGXDB, mu *sync.Mutex) *ReceiptImageRepository {
	return &ReceiptImageRepository{db: db, mu: mu}
}

// Add records an image filename for a receipt.
func (r *ReceiptImageRepository) Add(ctx context.Context, receiptID int, imageName string) (*models.ReceiptImage, error) {
	imageName = strings.TrimSpace(imageName)
	if imageName == "" {
		return nil, fmt.Errorf("image name must not be empty: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var img models.ReceiptImage
	err := r.db.QueryRow(ctx, `
		INSERT INTO receipt_images (receipt_id, image_name)
		VALUES ($1, $2)
		RETURNING id, receipt_id, image_name, created_at
	`, receiptID, imageName).Scan(&img.ID, &img.ReceiptID, &img.ImageName, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add receipt image: %w", err)
	}
	return &img, nil
}

// ListByReceipt retrieves all image rows for a receipt in insertion order.
func (r *ReceiptImageRepository) ListByReceipt(ctx context.Context, receiptID int) ([]models.ReceiptImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, receipt_id, image_name, created_at
		FROM receipt_images
		WHERE receipt_id = $1
		ORDER BY id ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt images: %w", err)
	}
	defer rows.Close()

	var images []models.ReceiptImage
	for rows.Next() {
		var img models.ReceiptImage
		if err := rows.Scan(&img.ID, &img.ReceiptID, &img.ImageName, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt images: %w", err)
	}
	return images, nil
}

// GetByID retrieves an image row by ID.
func (r *ReceiptImageRepository) GetByID(ctx context.Context, id int) (*models.ReceiptImage, error) {
	var img models.ReceiptImage
	err := r.db.QueryRow(ctx, `
		SELECT id, receipt_id, image_name, created_at
		FROM receipt_images WHERE id = $1
	`, id).Scan(&img.ID, &img.ReceiptID, &img.ImageName, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("receipt image %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt image: %w", err)
	}
	return &img, nil
}

// Delete removes an image row by ID.
func (r *ReceiptImageRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, err := r.db.Exec(ctx, `DELETE FROM receipt_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt image %d: %w", id, models.ErrNotFound)
	}
	return nil
}
