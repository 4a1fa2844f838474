package handlers

import (
	"centavo-server/src/db"
	sqldb "centavo-server/src/db/sql"
	"centavo-server/src/engine"
	"centavo-server/src/models"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Statistics are per-owner reads, so the cache key carries the owner id:
// a cached entry must never be served to a user the ownership check would
// have turned away.
func budgetStatisticsCacheKey(budgetID int, userID string) string {
	return fmt.Sprintf("statistics_budget_%d_user_%s", budgetID, userID)
}

// writeEngineError maps the engine's business-rule failures onto HTTP status
// codes. Anything else is an infrastructure failure.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrCategoryMismatch),
		errors.Is(err, engine.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func CreateTransaction(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		var req struct {
			Amount      float64 `json:"amount"`
			Description string  `json:"description"`
			BudgetID    int     `json:"budget_id"`
			CategoryID  int     `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create transaction request body for user %s: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}
		if req.BudgetID == 0 || req.CategoryID == 0 {
			http.Error(w, "budget_id and category_id are required", http.StatusBadRequest)
			return
		}

		result, err := eng.CreateTransaction(r.Context(), userID, engine.CreateTransactionRequest{
			BudgetID:    req.BudgetID,
			CategoryID:  req.CategoryID,
			Amount:      req.Amount,
			Description: req.Description,
		})
		if err != nil {
			log.Printf("ERROR: Failed to create transaction for user %s, budget %d: %v", userID, req.BudgetID, err)
			writeEngineError(w, err)
			return
		}

		db.DelBudgetCache(userBudgetsCacheKey(userID))
		db.DelStatisticsCache(budgetStatisticsCacheKey(req.BudgetID, userID))
		log.Printf("INFO: Created transaction id %d for user %s, budget %d, amount %.2f",
			result.Data.ID, userID, req.BudgetID, req.Amount)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(result)
	}
}

func UpdateTransaction(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		transactionIDStr := chi.URLParam(r, "transaction_id")
		transactionID, err := strconv.Atoi(transactionIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid transaction id param: %s", transactionIDStr)
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}
		var req struct {
			Amount      *float64 `json:"amount"`
			Description *string  `json:"description"`
			CategoryID  *int     `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update transaction request body for user %s: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		result, err := eng.UpdateTransaction(r.Context(), transactionID, userID, engine.UpdateTransactionRequest{
			Amount:      req.Amount,
			CategoryID:  req.CategoryID,
			Description: req.Description,
		})
		if err != nil {
			log.Printf("ERROR: Failed to update transaction id %d for user %s: %v", transactionID, userID, err)
			writeEngineError(w, err)
			return
		}

		db.DelBudgetCache(userBudgetsCacheKey(userID))
		db.DelStatisticsCache(budgetStatisticsCacheKey(result.Data.Budget.ID, userID))
		log.Printf("INFO: Updated transaction id %d for user %s", transactionID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func DeleteTransaction(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		transactionIDStr := chi.URLParam(r, "transaction_id")
		transactionID, err := strconv.Atoi(transactionIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid transaction id param: %s", transactionIDStr)
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		result, err := eng.DeleteTransaction(r.Context(), transactionID, userID)
		if err != nil {
			log.Printf("ERROR: Failed to delete transaction id %d for user %s: %v", transactionID, userID, err)
			writeEngineError(w, err)
			return
		}

		// The delete envelope carries no budget reference, so statistics
		// caches are cleared wholesale.
		db.DelBudgetCache(userBudgetsCacheKey(userID))
		db.ClearAllStatisticsCaches()
		log.Printf("INFO: Deleted transaction id %d for user %s", transactionID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func GetBudgetStatistics(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		budgetIDStr := chi.URLParam(r, "budget_id")
		budgetID, err := strconv.Atoi(budgetIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid budget id param: %s", budgetIDStr)
			http.Error(w, "invalid budget id", http.StatusBadRequest)
			return
		}
		cacheKey := budgetStatisticsCacheKey(budgetID, userID)

		if cached, found := db.Cache.Get(cacheKey); found {
			if stats, ok := cached.(*engine.Statistics); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(stats)
				return
			}
		}

		stats, err := eng.BudgetStatistics(r.Context(), budgetID, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get statistics for budget %d, user %s: %v", budgetID, userID, err)
			writeEngineError(w, err)
			return
		}

		db.SetStatisticsCache(cacheKey, stats)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// transactionListItem is a transaction row with its date in the same
// calendar-date form the engine envelopes use.
type transactionListItem struct {
	ID          int       `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	BudgetID    int       `json:"budget_id"`
	CategoryID  int       `json:"category_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func transactionListItems(transactions []models.Transaction) []transactionListItem {
	items := make([]transactionListItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, transactionListItem{
			ID:          t.ID,
			Amount:      t.Amount,
			Description: t.Description,
			Date:        t.Date.Format("2006-01-02"),
			BudgetID:    t.BudgetID,
			CategoryID:  t.CategoryID,
			UserID:      t.UserID,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return items
}

func GetTransactionsByBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		budgetIDStr := r.URL.Query().Get("budget_id")
		budgetID, err := strconv.Atoi(budgetIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid budget_id query param: %s", budgetIDStr)
			http.Error(w, "budget_id is required", http.StatusBadRequest)
			return
		}

		transactions, err := sqldb.GetTransactionsByBudget(r.Context(), pool, userID, budgetID)
		if err != nil {
			log.Printf("ERROR: Failed to get transactions for budget %d, user %s: %v", budgetID, userID, err)
			http.Error(w, "failed to get transactions", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactionListItems(transactions))
	}
}
