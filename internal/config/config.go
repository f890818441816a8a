package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Env        string
	Port       string
	GinMode    string
	CORSOrigin string

	Database Database

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel string
	LogDir   string

	RedisAddress     string
	RedisPassword    string
	ReportDailyLimit int

	RabbitMQURL    string
	EventsExchange string
}

// Database describes how to reach the backing store. Driver is "postgres" or "sqlite".
type Database struct {
	Driver     string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	SQLitePath string
}

const (
	defaultPort             = "8080"
	defaultDriver           = "postgres"
	defaultSQLitePath       = "data/roadsmart.db"
	defaultJWTSecret        = "roadsmart-dev-secret" // development only
	defaultTokenTTL         = 24 * time.Hour
	defaultCORSOrigin       = "http://localhost:5173"
	defaultReportDailyLimit = 10
	defaultEventsExchange   = "roadsmart.events"
)

// Load reads the configuration from environment variables. Call godotenv.Load first
// if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        os.Getenv("ENV"),
		Port:       getEnv("PORT", defaultPort),
		GinMode:    os.Getenv("GIN_MODE"),
		CORSOrigin: getEnv("CORS_ORIGIN", defaultCORSOrigin),
		Database: Database{
			Driver:     getEnv("DB_DRIVER", defaultDriver),
			Host:       getEnv("DB_HOST", "localhost"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       getEnv("DB_NAME", "roadsmart"),
			Port:       getEnv("DB_PORT", "5432"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_DB_PATH", defaultSQLitePath),
		},
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       defaultTokenTTL,
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		LogDir:         os.Getenv("LOG_DIR"),
		RedisAddress:   os.Getenv("REDIS_ADDRESS"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", defaultEventsExchange),
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = defaultJWTSecret
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenTTL = d
	}

	cfg.ReportDailyLimit = defaultReportDailyLimit
	if limit := os.Getenv("REPORT_DAILY_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid REPORT_DAILY_LIMIT %q", limit)
		}
		cfg.ReportDailyLimit = n
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

// IsDevelopment reports whether development-only behaviour such as seeding is enabled.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// DSN builds the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
