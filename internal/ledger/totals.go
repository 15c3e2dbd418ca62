package ledger

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/receipt-vault/internal/repository"
)

// Totals keeps Project.total_expense equal to the sum of the
// project's receipt amounts. The total is always recomputed from
// scratch rather than adjusted incrementally, so a refresh repairs
// any drift left by an earlier partial failure.
type Totals struct {
	projects *repository.ProjectRepository
	receipts *repository.ReceiptRepository
}

// NewTotals creates a Totals maintainer.
func NewTotals(projects *repository.ProjectRepository, receipts *repository.ReceiptRepository) *Totals {
	return &Totals{projects: projects, receipts: receipts}
}

// RefreshProjectTotal recomputes and stores a project's total
// expense. Must be called after every receipt create, update and
// delete.
func (t *Totals) RefreshProjectTotal(ctx context.Context, projectID int) error {
	total, err := t.receipts.SumAmounts(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to refresh project total: %w", err)
	}
	if err := t.projects.SetTotalExpense(ctx, projectID, total); err != nil {
		return fmt.Errorf("failed to refresh project total: %w", err)
	}
	return nil
}
