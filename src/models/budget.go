package models

import "time"

// Budget.Amount is the current remaining balance, not the original
// allocation. Every transaction create/update/delete mutates it in place.
type Budget struct {
	ID         int       `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Period     string    `json:"period"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CategoryID int       `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
