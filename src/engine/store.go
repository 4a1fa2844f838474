package engine

import (
	"context"

	"centavo-server/src/models"
)

// Store hands out units of work. Every transaction lifecycle event runs
// inside exactly one Tx so the budget debit and the transaction write land
// together or not at all.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single unit of work against the budget and transaction stores.
//
// BudgetForUpdate must serialize concurrent units of work touching the same
// budget id: the caller holds an exclusive claim on the budget row until
// Commit or Rollback. The Postgres implementation uses SELECT ... FOR UPDATE;
// the in-memory test store uses a per-budget mutex. Without this, two
// concurrent debits can read the same stale balance and over-debit.
type Tx interface {
	// Budget reads a budget without claiming it. Used by read-only paths.
	Budget(ctx context.Context, budgetID int, ownerID string) (*models.Budget, error)
	// BudgetForUpdate reads a budget and claims it for the rest of the unit
	// of work.
	BudgetForUpdate(ctx context.Context, budgetID int, ownerID string) (*models.Budget, error)
	SaveBudgetAmount(ctx context.Context, budgetID int, amount float64) error

	Category(ctx context.Context, categoryID int) (*models.Category, error)

	TransactionForUpdate(ctx context.Context, transactionID int, ownerID string) (*models.Transaction, error)
	TransactionsByBudget(ctx context.Context, budgetID int) ([]models.Transaction, error)
	InsertTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID int) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
