package handlers

import (
	"centavo-server/src/db"
	sqldb "centavo-server/src/db/sql"
	"centavo-server/src/models"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func userBudgetsCacheKey(userID string) string {
	return fmt.Sprintf("budgets_user_%s", userID)
}

func CreateBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		var req struct {
			Name       string  `json:"name"`
			Amount     float64 `json:"amount"`
			Currency   string  `json:"currency"`
			Period     string  `json:"period"`
			CategoryID int     `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create budget request body for user %s: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.CategoryID == 0 {
			http.Error(w, "category_id is required", http.StatusBadRequest)
			return
		}

		category, err := sqldb.GetCategoryByID(r.Context(), pool, req.CategoryID)
		if err != nil {
			log.Printf("ERROR: Category id %d not found for budget create, user %s: %v", req.CategoryID, userID, err)
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}

		if req.Currency == "" {
			req.Currency = "COP"
		}
		if req.Period == "" {
			req.Period = "monthly"
		}

		// Budgets start today and run 30 days regardless of period.
		startDate := time.Now().UTC().Truncate(24 * time.Hour)
		budget := &models.Budget{
			UserID:     userID,
			Name:       req.Name,
			Amount:     req.Amount,
			Currency:   req.Currency,
			Period:     req.Period,
			StartDate:  startDate,
			EndDate:    startDate.AddDate(0, 0, 30),
			CategoryID: category.ID,
		}
		created, err := sqldb.CreateBudget(r.Context(), pool, budget)
		if err != nil {
			log.Printf("ERROR: Failed to create budget for user %s: %v", userID, err)
			http.Error(w, "failed to create budget", http.StatusInternalServerError)
			return
		}

		db.DelBudgetCache(userBudgetsCacheKey(userID))
		log.Printf("INFO: Created budget id %d for user %s, category %s", created.ID, userID, category.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetBudgetByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		budgetIDStr := chi.URLParam(r, "budget_id")
		budgetID, err := strconv.Atoi(budgetIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid budget id param: %s", budgetIDStr)
			http.Error(w, "invalid budget id", http.StatusBadRequest)
			return
		}
		budget, err := sqldb.GetBudgetByID(r.Context(), pool, userID, budgetID)
		if err != nil {
			log.Printf("ERROR: Budget id %d not found for user %s: %v", budgetID, userID, err)
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(budget)
	}
}

func GetAllBudgetsForUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		cacheKey := userBudgetsCacheKey(userID)

		if cached, found := db.Cache.Get(cacheKey); found {
			if budgets, ok := cached.([]models.Budget); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(budgets)
				return
			}
		}

		budgets, err := sqldb.GetAllBudgetsForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get budgets for user %s: %v", userID, err)
			http.Error(w, "failed to get budgets", http.StatusInternalServerError)
			return
		}

		db.SetBudgetCache(cacheKey, budgets)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(budgets)
	}
}

func UpdateBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		budgetIDStr := chi.URLParam(r, "budget_id")
		budgetID, err := strconv.Atoi(budgetIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid budget id param: %s", budgetIDStr)
			http.Error(w, "invalid budget id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name       *string  `json:"name"`
			Amount     *float64 `json:"amount"`
			Currency   *string  `json:"currency"`
			Period     *string  `json:"period"`
			CategoryID *int     `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update budget request body for user %s: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		budget, err := sqldb.GetBudgetByID(r.Context(), pool, userID, budgetID)
		if err != nil {
			log.Printf("ERROR: Budget id %d not found for user %s: %v", budgetID, userID, err)
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		if req.Name != nil {
			budget.Name = *req.Name
		}
		if req.Amount != nil {
			budget.Amount = *req.Amount
		}
		if req.Currency != nil {
			budget.Currency = *req.Currency
		}
		if req.Period != nil {
			budget.Period = *req.Period
		}
		if req.CategoryID != nil {
			category, err := sqldb.GetCategoryByID(r.Context(), pool, *req.CategoryID)
			if err != nil {
				log.Printf("ERROR: Category id %d not found for budget update, user %s: %v", *req.CategoryID, userID, err)
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			budget.CategoryID = category.ID
		}

		updated, err := sqldb.UpdateBudget(r.Context(), pool, budget)
		if err != nil {
			log.Printf("ERROR: Failed to update budget id %d for user %s: %v", budgetID, userID, err)
			http.Error(w, "failed to update budget", http.StatusInternalServerError)
			return
		}

		db.DelBudgetCache(userBudgetsCacheKey(userID))
		db.DelStatisticsCache(budgetStatisticsCacheKey(budgetID, userID))
		log.Printf("INFO: Updated budget id %d for user %s", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		budgetIDStr := chi.URLParam(r, "budget_id")
		budgetID, err := strconv.Atoi(budgetIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid budget id param: %s", budgetIDStr)
			http.Error(w, "invalid budget id", http.StatusBadRequest)
			return
		}
		err = sqldb.DeleteBudget(r.Context(), pool, userID, budgetID)
		if err != nil {
			log.Printf("ERROR: Failed to delete budget id %d for user %s: %v", budgetID, userID, err)
			http.Error(w, "failed to delete budget", http.StatusInternalServerError)
			return
		}

		db.DelBudgetCache(userBudgetsCacheKey(userID))
		db.DelStatisticsCache(budgetStatisticsCacheKey(budgetID, userID))
		log.Printf("INFO: Deleted budget id %d for user %s", budgetID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "budget deleted"})
	}
}
