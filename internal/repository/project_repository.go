package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/receipt-vault/internal/database"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

// ProjectRepository handles project database operations.
type ProjectRepository struct {
	db database.PGXDB
	mu *sync.Mutex
}

// NewProjectRepository creates a new ProjectRepository. The mutex is
// the store-wide write lock.
func NewProjectRepository(db database.PGXDB, mu *sync.Mutex) *ProjectRepository {
	return &ProjectRepository{db: db, mu: mu}
}

// Create adds a new project with the given name.
func (r *ProjectRepository) Create(ctx context.Context, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name must not be empty: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var p models.Project
	var budget decimal.NullDecimal
	err := r.db.QueryRow(ctx, `
		INSERT INTO projects (name) VALUES ($1)
		RETURNING id, name, description, budget, total_expense, created_at, updated_at
	`, name).Scan(&p.ID, &p.Name, &p.Description, &budget, &p.TotalExpense, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if budget.Valid {
		p.Budget = &budget.Decimal
	}
	return &p, nil
}

// Update modifies a project's name, description and budget and
// refreshes updated_at.
func (r *ProjectRepository) Update(ctx context.Context, id int, name, description string, budget *decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("project name must not be empty: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tag, err := r.db.Exec(ctx, `
		UPDATE projects
		SET name = $2, description = $3, budget = $4, updated_at = NOW()
		WHERE id = $1
	`, id, name, description, budget)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Delete removes a project, its receipts, and their image rows in a
// single transaction. Blob cleanup is the coordinator's job and must
// happen before this call.
func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM receipt_images
		WHERE receipt_id IN (SELECT id FROM receipts WHERE project_id = $1)
	`, id); err != nil {
		return fmt.Errorf("failed to delete project image rows: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM receipts WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete project receipts: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit project delete: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*models.Project, error) {
	var p models.Project
	var budget decimal.NullDecimal
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, budget, total_expense, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &budget, &p.TotalExpense, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if budget.Valid {
		p.Budget = &budget.Decimal
	}
	return &p, nil
}

// List retrieves all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, budget, total_expense, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var budget decimal.NullDecimal
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &budget, &p.TotalExpense, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if budget.Valid {
			p.Budget = &budget.Decimal
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// SetTotalExpense writes the cached total_expense aggregate and
// refreshes updated_at.
func (r *ProjectRepository) SetTotalExpense(ctx context.Context, id int, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, err := r.db.Exec(ctx, `
		UPDATE projects SET total_expense = $2, updated_at = NOW() WHERE id = $1
	`, id, total)
	if err != nil {
		return fmt.Errorf("failed to set total expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", id, models.ErrNotFound)
	}
	return nil
}
