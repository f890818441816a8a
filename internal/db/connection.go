package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roadsmart/backend/internal/config"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open creates a gorm connection for the configured driver.
func Open(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite serialises writers; one connection avoids "database is locked" inside transactions
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return gdb, nil
}

// Connect initializes the package-level database connection
func Connect(cfg config.Database) {
	gdb, err := Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"driver": cfg.Driver,
			"error":  err.Error(),
		})
	}
	DB = gdb

	logger.Info("Database connected successfully", map[string]interface{}{
		"driver": cfg.Driver,
	})
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(gdb *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Report{},
		&models.Task{},
		&models.Complaint{},
		&models.StatusUpdate{},
	}

	for _, table := range tables {
		if err := gdb.AutoMigrate(table); err != nil {
			return fmt.Errorf("migration of %T failed: %w", table, err)
		}
	}

	logger.Info("All database migrations completed successfully", map[string]interface{}{
		"tables": len(tables),
	})
	return nil
}

// Ping checks that the database is reachable.
func Ping(gdb *gorm.DB) error {
	if gdb == nil {
		return fmt.Errorf("database connection not initialized")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
