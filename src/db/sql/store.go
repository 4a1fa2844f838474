package db

import (
	"context"
	"errors"
	"fmt"

	"centavo-server/src/engine"
	"centavo-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements engine.Store on a pgx pool. Each unit of work is one
// database transaction; BudgetForUpdate takes a row lock on the budget so
// concurrent lifecycle events against the same budget serialize instead of
// reading the same stale balance.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Begin(ctx context.Context) (engine.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

type storeTx struct {
	tx pgx.Tx
}

const budgetColumns = `id, user_id, name, amount, currency, period, start_date, end_date, category_id, created_at, updated_at`

func (t *storeTx) Budget(ctx context.Context, budgetID int, ownerID string) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	return t.scanBudget(ctx, query, budgetID, ownerID)
}

func (t *storeTx) BudgetForUpdate(ctx context.Context, budgetID int, ownerID string) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return t.scanBudget(ctx, query, budgetID, ownerID)
}

func (t *storeTx) scanBudget(ctx context.Context, query string, budgetID int, ownerID string) (*models.Budget, error) {
	var b models.Budget
	err := t.tx.QueryRow(ctx, query, budgetID, ownerID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Currency, &b.Period, &b.StartDate, &b.EndDate, &b.CategoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("budget %d: %w", budgetID, engine.ErrNotFound)
		}
		return nil, err
	}
	return &b, nil
}

func (t *storeTx) SaveBudgetAmount(ctx context.Context, budgetID int, amount float64) error {
	query := `UPDATE budgets SET amount = $1, updated_at = NOW() WHERE id = $2`
	_, err := t.tx.Exec(ctx, query, amount, budgetID)
	return err
}

func (t *storeTx) Category(ctx context.Context, categoryID int) (*models.Category, error) {
	query := `SELECT id, name, description, created_at FROM categories WHERE id = $1`
	var c models.Category
	err := t.tx.QueryRow(ctx, query, categoryID).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", categoryID, engine.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

const transactionColumns = `id, amount, description, date, budget_id, category_id, user_id, created_at, updated_at`

func (t *storeTx) TransactionForUpdate(ctx context.Context, transactionID int, ownerID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`
	var tr models.Transaction
	err := t.tx.QueryRow(ctx, query, transactionID, ownerID).
		Scan(&tr.ID, &tr.Amount, &tr.Description, &tr.Date, &tr.BudgetID, &tr.CategoryID, &tr.UserID, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", transactionID, engine.ErrNotFound)
		}
		return nil, err
	}
	return &tr, nil
}

func (t *storeTx) TransactionsByBudget(ctx context.Context, budgetID int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE budget_id = $1 ORDER BY id`
	rows, err := t.tx.Query(ctx, query, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tr models.Transaction
		err := rows.Scan(&tr.ID, &tr.Amount, &tr.Description, &tr.Date, &tr.BudgetID, &tr.CategoryID, &tr.UserID, &tr.CreatedAt, &tr.UpdatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tr)
	}
	return transactions, rows.Err()
}

func (t *storeTx) InsertTransaction(ctx context.Context, tr *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (amount, description, date, budget_id, category_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + transactionColumns
	var saved models.Transaction
	err := t.tx.QueryRow(ctx, query, tr.Amount, tr.Description, tr.Date, tr.BudgetID, tr.CategoryID, tr.UserID).
		Scan(&saved.ID, &saved.Amount, &saved.Description, &saved.Date, &saved.BudgetID, &saved.CategoryID, &saved.UserID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (t *storeTx) UpdateTransaction(ctx context.Context, tr *models.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $1, description = $2, category_id = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := t.tx.Exec(ctx, query, tr.Amount, tr.Description, tr.CategoryID, tr.ID)
	return err
}

func (t *storeTx) DeleteTransaction(ctx context.Context, transactionID int) error {
	query := `DELETE FROM transactions WHERE id = $1`
	_, err := t.tx.Exec(ctx, query, transactionID)
	return err
}

func (t *storeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *storeTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
