package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage backend selectors. The entry store is swappable at startup and
// everything above it is backend-agnostic.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Storage backend selection: postgres, redis or memory
	StorageBackend string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// S3 bucket for meal photos
	S3Bucket string
}

// LoadConfig creates a new Config instance with values from environment
// variables or Docker secrets depending on the environment.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case Development, Test, CI:
		loadEnvConfig(cfg)
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvConfig reads configuration from environment variables with local
// development defaults.
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = envOr("SERVER_PORT", "8080")
	cfg.ServerHost = envOr("SERVER_HOST", "0.0.0.0")
	cfg.StorageBackend = envOr("STORAGE_BACKEND", BackendPostgres)
	cfg.DBHost = envOr("DB_HOST", "localhost")
	cfg.DBPort = envOr("DB_PORT", "5432")
	cfg.DBUser = envOr("DB_USER", "postgres")
	cfg.DBPassword = envOr("DB_PASSWORD", "postgres")
	cfg.DBName = envOr("DB_NAME", "mealsnap")
	cfg.DBSSLMode = envOr("DB_SSL_MODE", "disable")
	cfg.RedisHost = envOr("REDIS_HOST", "localhost")
	cfg.RedisPort = envOr("REDIS_PORT", "6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = 0
	cfg.RedisURL = envOr("REDIS_URL", "redis://localhost:6379")
	cfg.JWTSecret = envOr("JWT_SECRET", "dev-secret-key")
	cfg.S3Bucket = envOr("S3_BUCKET_NAME", "mealsnap-meal-photos")
}

// loadProdConfig loads configuration using ONLY Docker secrets.
func loadProdConfig(cfg *Config) error {
	cfg.ServerPort = readSecret("server_port")
	cfg.ServerHost = readSecret("server_host")
	cfg.StorageBackend = readSecret("storage_backend")
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendPostgres
	}
	cfg.DBHost = readSecret("db_host")
	cfg.DBPort = readSecret("db_port")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = readSecret("db_name")
	cfg.DBSSLMode = readSecret("db_ssl_mode")
	cfg.RedisHost = readSecret("redis_host")
	cfg.RedisPort = readSecret("redis_port")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.RedisDB = 0
	cfg.RedisURL = readSecret("redis_url")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.S3Bucket = readSecret("s3_bucket_name")

	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
