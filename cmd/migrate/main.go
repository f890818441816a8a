package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/roadsmart/backend/internal/config"
	"github.com/roadsmart/backend/internal/db"
	"github.com/roadsmart/backend/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Initialize(cfg.LogLevel, "")

	// Connect to database
	db.Connect(cfg.Database)

	// Run migrations
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(db.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("✅ Database migrations completed successfully!")
}
