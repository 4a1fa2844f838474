package handlers

import (
	"centavo-server/src/db"
	sqldb "centavo-server/src/db/sql"
	"centavo-server/src/models"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const allCategoriesCacheKey = "categories_all"

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		category := &models.Category{
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
		}
		created, err := sqldb.CreateCategory(r.Context(), pool, category)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				log.Printf("ERROR: Category name already exists: %s", req.Name)
				http.Error(w, "category name already exists", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create category: %v", err)
			http.Error(w, "failed to create category", http.StatusInternalServerError)
			return
		}

		db.DelCategoryCache(allCategoriesCacheKey)
		log.Printf("INFO: Created category id %d, name %s", created.ID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, found := db.Cache.Get(allCategoriesCacheKey); found {
			if categories, ok := cached.([]models.Category); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(categories)
				return
			}
		}

		categories, err := sqldb.GetAllCategories(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to get categories: %v", err)
			http.Error(w, "failed to get categories", http.StatusInternalServerError)
			return
		}

		db.SetCategoryCache(allCategoriesCacheKey, categories)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(categories)
	}
}

func GetCategoryByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		category, err := sqldb.GetCategoryByID(r.Context(), pool, categoryID)
		if err != nil {
			log.Printf("ERROR: Category id %d not found: %v", categoryID, err)
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(category)
	}
}

func UpdateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		category := &models.Category{
			ID:          categoryID,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
		}
		updated, err := sqldb.UpdateCategory(r.Context(), pool, category)
		if err != nil {
			log.Printf("ERROR: Failed to update category id %d: %v", categoryID, err)
			http.Error(w, "failed to update category", http.StatusInternalServerError)
			return
		}

		db.DelCategoryCache(allCategoriesCacheKey)
		log.Printf("INFO: Updated category id %d", updated.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		if err := sqldb.DeleteCategory(r.Context(), pool, categoryID); err != nil {
			log.Printf("ERROR: Failed to delete category id %d: %v", categoryID, err)
			http.Error(w, "failed to delete category", http.StatusInternalServerError)
			return
		}

		db.DelCategoryCache(allCategoriesCacheKey)
		log.Printf("INFO: Deleted category id %d", categoryID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "category deleted"})
	}
}
