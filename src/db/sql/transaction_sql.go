package db

import (
	"centavo-server/src/models"
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func GetTransactionsByBudget(ctx context.Context, pool *pgxpool.Pool, userID string, budgetID int) ([]models.Transaction, error) {
	query := `
		SELECT id, amount, description, date, budget_id, category_id, user_id, created_at, updated_at
		FROM transactions
		WHERE budget_id = $1 AND user_id = $2
		ORDER BY date DESC, id DESC
	`
	rows, err := pool.Query(ctx, query, budgetID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.Amount, &t.Description, &t.Date, &t.BudgetID, &t.CategoryID, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
