package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is usable for the
// current environment.
func ValidateConfig(cfg *Config) error {
	var errors []string

	switch cfg.StorageBackend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("unknown storage backend %q", cfg.StorageBackend))
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, "jwt secret is required")
	}
	if cfg.ServerPort == "" {
		errors = append(errors, "server port is required")
	}

	if cfg.StorageBackend == BackendPostgres {
		if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBUser == "" || cfg.DBName == "" {
			errors = append(errors, "database host, port, user and name are required for the postgres backend")
		}
		if cfg.DBPassword == "" {
			errors = append(errors, "database password is required for the postgres backend")
		}
	}
	if cfg.StorageBackend == BackendRedis {
		if cfg.RedisHost == "" || cfg.RedisPort == "" {
			errors = append(errors, "redis host and port are required for the redis backend")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
