package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
//
// Receipt images are not ON DELETE CASCADE: the rows must be removed
// explicitly, in step with their backing files, by the coordinator.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			budget DECIMAL(12, 2),
			total_expense DECIMAL(12, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS receipts (
			id SERIAL PRIMARY KEY,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			category_id INTEGER REFERENCES categories(id),
			name TEXT NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			issued_at DATE NOT NULL DEFAULT CURRENT_DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS receipt_images (
			id SERIAL PRIMARY KEY,
			receipt_id INTEGER NOT NULL REFERENCES receipts(id),
			image_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_receipts_project_id ON receipts(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_category_id ON receipts(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_issued_at ON receipts(issued_at)`,
		`CREATE INDEX IF NOT EXISTS idx_receipt_images_receipt_id ON receipt_images(receipt_id)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// DropSchema removes all tables. Development use only.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	tables := []string{"receipt_images", "receipts", "categories", "projects"}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
