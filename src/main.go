package main

import (
	"centavo-server/src/api"
	"centavo-server/src/config"
	"centavo-server/src/db"
	sqldb "centavo-server/src/db/sql"
	"centavo-server/src/engine"
	"log"
	"net/http"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	// Schema
	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Cache
	db.InitCache()

	// Consistency engine
	eng := engine.New(sqldb.NewStore(pool), engine.LogNotifier{})

	// Router
	router := api.NewRouter(pool, eng)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
