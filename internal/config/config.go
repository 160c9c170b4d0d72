package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers selectable with STORE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverPQ       = "pq"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

type Config struct {
	// Server
	Port            int
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// CORS
	AllowedOrigins []string

	// Match store
	StoreDriver string
	PostgresURL string
	SQLitePath  string
	MySQLDSN    string

	// Optional backends, disabled when empty
	ClickHouseURL string
	RedisURL      string
	FormTTL       time.Duration

	// Model and fixtures
	ModelPath   string
	FixturesDir string

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Auth
	IngestTokenHash string
}

// Load loads configuration from environment variables.
// It returns an error if the selected store has no connection string.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		Env:             getEnv("ENV", "development"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		PostgresURL: os.Getenv("POSTGRES_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "footy.db"),
		MySQLDSN:    os.Getenv("MYSQL_DSN"),

		ClickHouseURL: os.Getenv("CLICKHOUSE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		FormTTL:       getEnvDuration("FORM_TTL", 24*time.Hour),

		ModelPath:   getEnv("MODEL_PATH", "configs/model.yaml"),
		FixturesDir: getEnv("FIXTURES_PATH", "data"),

		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 1000),
		BatchSize:     getEnvInt("BATCH_SIZE", 50),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 2*time.Second),

		IngestTokenHash: strings.ToLower(os.Getenv("INGEST_TOKEN_HASH")),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if the selected store cannot be reached
	switch cfg.StoreDriver {
	case DriverPostgres, DriverPQ:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("missing required environment variable: POSTGRES_URL")
		}
	case DriverMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("missing required environment variable: MYSQL_DSN")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
