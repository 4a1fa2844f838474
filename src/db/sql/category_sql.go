package db

import (
	"centavo-server/src/models"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateCategory(ctx context.Context, pool *pgxpool.Pool, category *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, category.Name, category.Description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetCategoryByID(ctx context.Context, pool *pgxpool.Pool, categoryID int) (*models.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories WHERE id = $1
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, categoryID).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetAllCategories(ctx context.Context, pool *pgxpool.Pool) ([]models.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func UpdateCategory(ctx context.Context, pool *pgxpool.Pool, category *models.Category) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, description = $2
		WHERE id = $3
		RETURNING id, name, description, created_at
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, category.Name, category.Description, category.ID).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, categoryID int) error {
	query := `DELETE FROM categories WHERE id = $1`
	cmd, err := pool.Exec(ctx, query, categoryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}
