package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/roadsmart/backend/internal/config"
	"github.com/roadsmart/backend/internal/db"
	"github.com/roadsmart/backend/internal/logger"
)

func main() {
	usersFile := flag.String("users", "data/initial-users.json", "path to the users JSON file")
	flag.Parse()

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

	// Run migrations first
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(db.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Seeding database with users...")
	seed, err := db.LoadSeedFile(*usersFile)
	if err != nil {
		log.Fatalf("Error loading users: %v", err)
	}

	created, err := db.SeedUsers(db.DB, seed.Users)
	if err != nil {
		log.Fatalf("Error seeding users: %v", err)
	}

	log.Printf("✅ Database seeding completed successfully! (%d new users)", created)
}
