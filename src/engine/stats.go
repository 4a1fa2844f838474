package engine

import (
	"context"
	"fmt"
	"math"
)

type Statistics struct {
	BudgetAmount        float64 `json:"budgetAmount"`
	TotalSpent          float64 `json:"totalSpent"`
	RemainingAmount     float64 `json:"remainingAmount"`
	UsedPercentage      float64 `json:"usedPercentage"`
	RemainingPercentage float64 `json:"remainingPercentage"`
}

// BudgetStatistics derives spend and remaining figures for a budget from its
// full set of live transactions. The transaction sum is a read-only
// projection; it is never written back to the budget's stored balance.
//
// RemainingAmount subtracts the spend total from the budget's already-debited
// running balance, so historical spend is counted twice. That matches the
// deployed behavior and stays until product says otherwise.
func (e *Engine) BudgetStatistics(ctx context.Context, budgetID int, ownerID string) (*Statistics, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	budget, err := tx.Budget(ctx, budgetID, ownerID)
	if err != nil {
		return nil, err
	}
	transactions, err := tx.TransactionsByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	var totalSpent float64
	for _, t := range transactions {
		totalSpent += t.Amount
	}

	remainingAmount := budget.Amount - totalSpent

	return &Statistics{
		BudgetAmount:        budget.Amount,
		TotalSpent:          totalSpent,
		RemainingAmount:     remainingAmount,
		UsedPercentage:      percentage(totalSpent, budget.Amount),
		RemainingPercentage: percentage(remainingAmount, budget.Amount),
	}, nil
}

// percentage clamps part/total to [0, 100] and rounds to 2 decimal places.
// A zero total yields 0 rather than a non-numeric result.
func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := part / total * 100
	if math.IsNaN(p) {
		return 0
	}
	p = math.Min(100, math.Max(0, p))
	return math.Round(p*100) / 100
}
