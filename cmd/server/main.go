package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/roadsmart/backend/internal/config"
	"github.com/roadsmart/backend/internal/db"
	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/middleware"
	"github.com/roadsmart/backend/internal/routes"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	logger.Initialize(cfg.LogLevel, cfg.LogDir)
	if envErr != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	// Connect to database
	db.Connect(cfg.Database)
	if err := db.AutoMigrate(db.DB); err != nil {
		logger.Fatal("Database migration failed", map[string]interface{}{"error": err.Error()})
	}

	// Seed database with initial data if in development
	if cfg.IsDevelopment() {
		seedDatabase()
	}

	deps := routes.Dependencies{
		DB:               db.DB,
		Publisher:        events.NopPublisher{},
		ReportDailyLimit: cfg.ReportDailyLimit,
	}

	var rdb *redis.Client
	var denylist middleware.Denylist
	if cfg.RedisAddress != "" {
		rdb, err = db.ConnectRedis(cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		defer rdb.Close()
		deps.ReportCounter = middleware.NewRedisCounter(rdb)
		denylist = middleware.NewRedisDenylist(rdb)
	} else {
		logger.Warn("REDIS_ADDRESS not set, report rate limiting disabled", nil)
	}
	deps.Tokens = middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, denylist)

	if cfg.RabbitMQURL != "" {
		publisher, err := events.Dial(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", map[string]interface{}{"error": err.Error()})
		}
		defer publisher.Close()

		dispatcher := events.NewDispatcher(publisher, 2, 256)
		defer dispatcher.Stop()
		deps.Publisher = dispatcher
	} else {
		logger.Warn("RABBITMQ_URL not set, status events will not be published", nil)
	}

	// Set Gin mode
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigin))
	r.Use(gin.Recovery())

	r.GET("/health", routes.HealthHandler(db.DB, rdb))
	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	logger.Info("Starting RoadSmart backend server", map[string]interface{}{
		"port":     cfg.Port,
		"gin_mode": gin.Mode(),
		"driver":   cfg.Database.Driver,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}

func seedDatabase() {
	seed, err := db.LoadSeedFile("../../data/initial-users.json", "data/initial-users.json")
	if err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{"error": err.Error()})
		return
	}

	created, err := db.SeedUsers(db.DB, seed.Users)
	if err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{"error": err.Error()})
		return
	}
	logger.Info("Database seeding completed", map[string]interface{}{"created": created})
}
