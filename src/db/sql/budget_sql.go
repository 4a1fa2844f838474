package db

import (
	"centavo-server/src/models"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateBudget(ctx context.Context, pool *pgxpool.Pool, budget *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, name, amount, currency, period, start_date, end_date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, name, amount, currency, period, start_date, end_date, category_id, created_at, updated_at
	`
	var b models.Budget
	err := pool.QueryRow(ctx, query, budget.UserID, budget.Name, budget.Amount, budget.Currency, budget.Period, budget.StartDate, budget.EndDate, budget.CategoryID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Currency, &b.Period, &b.StartDate, &b.EndDate, &b.CategoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func GetBudgetByID(ctx context.Context, pool *pgxpool.Pool, userID string, budgetID int) (*models.Budget, error) {
	query := `
		SELECT id, user_id, name, amount, currency, period, start_date, end_date, category_id, created_at, updated_at
		FROM budgets WHERE id = $1 AND user_id = $2
	`
	var b models.Budget
	err := pool.QueryRow(ctx, query, budgetID, userID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Currency, &b.Period, &b.StartDate, &b.EndDate, &b.CategoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func GetAllBudgetsForUser(ctx context.Context, pool *pgxpool.Pool, userID string) ([]models.Budget, error) {
	query := `
		SELECT id, user_id, name, amount, currency, period, start_date, end_date, category_id, created_at, updated_at
		FROM budgets WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Currency, &b.Period, &b.StartDate, &b.EndDate, &b.CategoryID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func UpdateBudget(ctx context.Context, pool *pgxpool.Pool, budget *models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET name = $1, amount = $2, currency = $3, period = $4, category_id = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING id, user_id, name, amount, currency, period, start_date, end_date, category_id, created_at, updated_at
	`
	var b models.Budget
	err := pool.QueryRow(ctx, query, budget.Name, budget.Amount, budget.Currency, budget.Period, budget.CategoryID, budget.ID, budget.UserID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Currency, &b.Period, &b.StartDate, &b.EndDate, &b.CategoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func DeleteBudget(ctx context.Context, pool *pgxpool.Pool, userID string, budgetID int) error {
	query := `DELETE FROM budgets WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, budgetID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("budget not found")
	}
	return nil
}
