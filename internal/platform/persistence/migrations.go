package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

var (
	ErrNoMigrationsPath = errors.New("migrations path cannot be empty")
	ErrNoDatabaseURL    = errors.New("database URL cannot be empty")
)

// RunMigrations brings the accounts schema up to date and returns the applied version
func RunMigrations(logger *slog.Logger, databaseURL, migrationsPath string) (uint, error) {
	if migrationsPath == "" {
		return 0, ErrNoMigrationsPath
	}
	if databaseURL == "" {
		return 0, ErrNoDatabaseURL
	}

	m, err := migrate.New(migrationSource(migrationsPath), databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	logger.Info("Accounts schema up to date", "version", version)
	return version, nil
}

// migrationSource turns a directory into a source URL. Values that already carry a scheme are kept.
func migrationSource(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + filepath.ToSlash(path)
}
