package models

import "time"

// Transaction.Amount is a fixed debit magnitude, not a balance. Its
// CategoryID must always equal the CategoryID of the budget it references.
type Transaction struct {
	ID          int       `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	BudgetID    int       `json:"budget_id"`
	CategoryID  int       `json:"category_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
