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

// CategoryRepository handles category database operations.
// Categories are create-and-read only; deletion is not offered.
type CategoryRepository struct {
	db database.PGXDB
	mu *sync.Mutex
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db database.PGXDB, mu *sync.Mutex) *CategoryRepository {
	return &CategoryRepository{db: db, mu: mu}
}

// Create adds a new category.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name must not be empty: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var cat models.Category
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &cat, nil
}

// GetAll retrieves all categories in insertion order.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at FROM categories ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var cat models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM categories WHERE id = $1
	`, id).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}
