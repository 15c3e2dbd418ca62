package export

import (
	"context"
	"fmt"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
)

// CategoryChart creates a pie chart of a project's receipt amounts
// broken down by category. Returns PNG image bytes.
func (p *Projector) CategoryChart(ctx context.Context, projectID int) ([]byte, error) {
	project, err := p.store.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	receipts, err := p.store.Receipts.List(ctx, projectID, "", nil)
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, fmt.Errorf("no receipts to chart")
	}

	categoryTotals := aggregateByCategory(receipts)

	var values []float64
	var categoryNames []string
	for categoryName, total := range categoryTotals {
		categoryNames = append(categoryNames, categoryName)
		values = append(values, total.InexactFloat64())
	}

	chart, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expense Breakdown - %s", project.Name),
		}),
		charts.LegendLabelsOptionFunc(categoryNames),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := chart.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// aggregateByCategory groups receipts and returns category totals.
func aggregateByCategory(receipts []models.Receipt) map[string]decimal.Decimal {
	categoryTotals := make(map[string]decimal.Decimal)

	for _, receipt := range receipts {
		categoryName := "Uncategorized"
		if receipt.Category != nil {
			categoryName = receipt.Category.Name
		}
		categoryTotals[categoryName] = categoryTotals[categoryName].Add(receipt.Amount)
	}

	return categoryTotals
}
