// Package cli holds the initialization steps shared by cmd/viaggio and
// cmd/viaggio-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"viaggio/internal/config"
	"viaggio/internal/log"
	"viaggio/internal/storage"
)

// SetupLogger builds the process logger for the named component and installs
// it as the slog default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.DefaultConfig()).WithComponent(component)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are fine; in
// production configuration comes from real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, exiting the process when it is
// unusable.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository, exiting the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
