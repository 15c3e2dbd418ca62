// Package models defines the domain entities for the receipt vault.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project groups receipts under a budget.
type Project struct {
	ID          int
	Name        string
	Description string
	// Budget is nil when no budget has been set.
	Budget *decimal.Decimal
	// TotalExpense is a cached aggregate: the sum of all receipt
	// amounts for this project, recomputed after every receipt
	// mutation rather than adjusted incrementally.
	TotalExpense decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category labels receipts. Categories are shared across projects and
// are never deleted.
type Category struct {
	ID        int
	Name      string
	CreatedAt time.Time
}

// Receipt is a single recorded expense, owned by its project.
type Receipt struct {
	ID         int
	ProjectID  int
	CategoryID *int
	// Category is populated on list queries that join categories.
	Category *Category
	Name     string
	Amount   decimal.Decimal
	// IssuedAt is the date printed on the receipt, distinct from
	// when the row was created.
	IssuedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReceiptImage records one stored photo of a receipt. ImageName is a
// bare filename; the on-disk location is derived from the owning
// project and receipt.
type ReceiptImage struct {
	ID        int
	ReceiptID int
	ImageName string
	CreatedAt time.Time
}

// ExportRow is one denormalized line of the bulk export: a receipt
// joined with its project and category.
type ExportRow struct {
	ProjectID          int
	ProjectName        string
	ProjectDescription string
	Budget             *decimal.Decimal
	TotalExpense       decimal.Decimal
	ReceiptID          int
	ReceiptName        string
	CategoryName       string
	Amount             decimal.Decimal
	IssuedAt           time.Time
}
