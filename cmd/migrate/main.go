package main

import (
	"os"

	"sportz-service/config"
	"sportz-service/database"
	"sportz-service/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabaseURL == "" {
		logger.Fatalf("DATABASE_URL environment variable is not set")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger.Println("Connected to database successfully")

	names, err := database.Migrations()
	if err != nil {
		logger.Fatalf("Failed to list migrations: %v", err)
	}
	for _, name := range names {
		logger.Printf("Pending migration: %s", name)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		logger.Errorf("Migration failed: %v", err)
		os.Exit(1)
	}

	logger.Printf("All %d migrations completed successfully", len(names))
}
