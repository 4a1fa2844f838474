package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"centavo-server/src/models"
)

// lowBalanceThreshold is the remaining/total ratio at or below which a
// notification is emitted.
const lowBalanceThreshold = 0.10

// Engine serializes transaction lifecycle events against their owning budget
// so that, at any quiescent point, the budget's stored amount equals its
// initial allocation minus the sum of all live transactions referencing it.
// It maintains that invariant incrementally: every event applies its delta to
// the budget exactly once, inside the same unit of work as the transaction
// write.
type Engine struct {
	store    Store
	notifier Notifier
}

func New(store Store, notifier Notifier) *Engine {
	return &Engine{store: store, notifier: notifier}
}

type CreateTransactionRequest struct {
	BudgetID    int
	CategoryID  int
	Amount      float64
	Description string
}

// UpdateTransactionRequest fields are applied independently; nil means leave
// the field alone. All nil is a valid no-op that still persists.
type UpdateTransactionRequest struct {
	Amount      *float64
	CategoryID  *int
	Description *string
}

type BudgetView struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	RemainingAmount float64 `json:"remainingAmount"`
	Currency        string  `json:"currency"`
}

type CategoryView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TransactionView struct {
	ID          int          `json:"id"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Budget      BudgetView   `json:"budget"`
	Category    CategoryView `json:"category"`
}

type TransactionResult struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    *TransactionView `json:"data,omitempty"`
}

// CreateTransaction debits the budget and records the transaction as one
// atomic unit. Validation order: budget found, then sufficiency, then
// category match; the first failing check wins.
func (e *Engine) CreateTransaction(ctx context.Context, ownerID string, req CreateTransactionRequest) (*TransactionResult, error) {
	// A non-positive amount would credit the budget instead of debiting it.
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	budget, err := tx.BudgetForUpdate(ctx, req.BudgetID, ownerID)
	if err != nil {
		return nil, err
	}
	if budget.Amount < req.Amount {
		return nil, fmt.Errorf("budget %d: %w", budget.ID, ErrInsufficientFunds)
	}
	if budget.CategoryID != req.CategoryID {
		return nil, ErrCategoryMismatch
	}

	category, err := tx.Category(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	total := budget.Amount
	budget.Amount -= req.Amount
	if err := tx.SaveBudgetAmount(ctx, budget.ID, budget.Amount); err != nil {
		return nil, fmt.Errorf("save budget: %w", err)
	}

	transaction := &models.Transaction{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        today(),
		BudgetID:    budget.ID,
		CategoryID:  category.ID,
		UserID:      ownerID,
	}
	saved, err := tx.InsertTransaction(ctx, transaction)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.checkLowBalance(ctx, ownerID, budget, total)

	return &TransactionResult{
		Code:    201,
		Message: "Transaction created successfully",
		Data:    transactionView(saved, budget, category),
	}, nil
}

// UpdateTransaction applies amount, category and description changes
// independently. An amount change adjusts the budget by the delta between the
// new and old amounts, so decreasing a transaction gives balance back.
func (e *Engine) UpdateTransaction(ctx context.Context, transactionID int, ownerID string, req UpdateTransactionRequest) (*TransactionResult, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	transaction, err := tx.TransactionForUpdate(ctx, transactionID, ownerID)
	if err != nil {
		return nil, err
	}
	budget, err := tx.BudgetForUpdate(ctx, transaction.BudgetID, ownerID)
	if err != nil {
		return nil, err
	}

	total := budget.Amount
	amountChanged := false

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, ErrInvalidAmount
		}
		difference := *req.Amount - transaction.Amount
		if budget.Amount < difference {
			return nil, fmt.Errorf("budget %d: %w", budget.ID, ErrInsufficientFunds)
		}
		budget.Amount -= difference
		if err := tx.SaveBudgetAmount(ctx, budget.ID, budget.Amount); err != nil {
			return nil, fmt.Errorf("save budget: %w", err)
		}
		transaction.Amount = *req.Amount
		amountChanged = true
	}

	if req.CategoryID != nil {
		if budget.CategoryID != *req.CategoryID {
			return nil, ErrCategoryMismatch
		}
		category, err := tx.Category(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		transaction.CategoryID = category.ID
	}

	if req.Description != nil {
		transaction.Description = *req.Description
	}

	// A request with no fields set is a valid no-op that still persists.
	if err := tx.UpdateTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	category, err := tx.Category(ctx, transaction.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if amountChanged {
		e.checkLowBalance(ctx, ownerID, budget, total)
	}

	return &TransactionResult{
		Code:    200,
		Message: "Transaction updated successfully",
		Data:    transactionView(transaction, budget, category),
	}, nil
}

// DeleteTransaction reverses the transaction's effect on its budget and
// removes the row, as one atomic unit.
func (e *Engine) DeleteTransaction(ctx context.Context, transactionID int, ownerID string) (*TransactionResult, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	transaction, err := tx.TransactionForUpdate(ctx, transactionID, ownerID)
	if err != nil {
		return nil, err
	}
	budget, err := tx.BudgetForUpdate(ctx, transaction.BudgetID, ownerID)
	if err != nil {
		return nil, err
	}

	restored := budget.Amount + transaction.Amount
	if math.IsNaN(restored) || math.IsInf(restored, 0) {
		return nil, ErrInvalidState
	}

	total := budget.Amount
	budget.Amount = restored
	if err := tx.SaveBudgetAmount(ctx, budget.ID, budget.Amount); err != nil {
		return nil, fmt.Errorf("save budget: %w", err)
	}
	if err := tx.DeleteTransaction(ctx, transaction.ID); err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.checkLowBalance(ctx, ownerID, budget, total)

	return &TransactionResult{
		Code:    200,
		Message: "Transaction deleted successfully",
	}, nil
}

// checkLowBalance compares the post-mutation remaining amount against the
// budget amount read at the start of the unit of work and emits a
// notification when the ratio is at or below the threshold. Runs after
// commit; never affects the outcome of the mutation.
func (e *Engine) checkLowBalance(ctx context.Context, ownerID string, budget *models.Budget, total float64) {
	if e.notifier == nil || total <= 0 {
		return
	}
	if budget.Amount/total <= lowBalanceThreshold {
		e.notifier.Notify(ctx, LowBalanceAlert{
			OwnerID:         ownerID,
			BudgetName:      budget.Name,
			RemainingAmount: budget.Amount,
		})
	}
}

func transactionView(t *models.Transaction, b *models.Budget, c *models.Category) *TransactionView {
	return &TransactionView{
		ID:          t.ID,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		Budget: BudgetView{
			ID:              b.ID,
			Name:            b.Name,
			RemainingAmount: b.Amount,
			Currency:        b.Currency,
		},
		Category: CategoryView{
			ID:   c.ID,
			Name: c.Name,
		},
	}
}

// today is the current calendar date with no time component.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
