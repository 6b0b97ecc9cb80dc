// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration provides a thin wrapper around golang-migrate for
// running database schema migrations.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. It enforces schema
// idempotency during application startup, ensuring the database is always
// in the correct state before traffic is served. The SQL files are embedded
// in the binary, one directory per dialect.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// sqlite driver registers "sqlite" scheme (modernc, no cgo).
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql
var migrationFiles embed.FS

const (
	pgPrefix     = "postgres://"
	pgqlPrefix   = "postgresql://"
	pgx5Prefix   = "pgx5://"
	sqlitePrefix = "sqlite://"
)

// ErrUnsupportedURL is returned for a database URL without a known scheme.
var ErrUnsupportedURL = errors.New("migration: unsupported database URL")

// RunUp applies all pending UP migrations.
//
// # Parameters
//   - databaseURL: postgres://..., postgresql://... or sqlite://path
//   - logger: Structured logger for migration events.
func RunUp(databaseURL string, logger *slog.Logger) error {
	migrator, err := newMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}

	if isDirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
	}

	logger.Info("migration_started", slog.Int("current_version", int(currentVersion)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)

	return nil
}

// RunDown rolls back every applied migration.
func RunDown(databaseURL string, logger *slog.Logger) error {
	migrator, err := newMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: down failed: %w", err)
	}

	logger.Info("migration_rolled_back")
	return nil
}

func newMigrator(databaseURL string, logger *slog.Logger) (*migrate.Migrate, error) {
	sourceDir, migrateURL, err := resolve(databaseURL)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationFiles, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("migration: failed to open embedded source: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, migrateURL)
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	// Enable verbose logging via the slog bridge.
	migrator.Log = &migrateLogger{logger: logger}

	return migrator, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceError, dbError := migrator.Close()
	if sourceError != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
	}
	if dbError != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbError))
	}
}

// resolve picks the embedded SQL directory and the golang-migrate URL for databaseURL.
func resolve(databaseURL string) (sourceDir, migrateURL string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, sqlitePrefix):
		return "sql/sqlite", databaseURL, nil
	case strings.HasPrefix(databaseURL, pgPrefix), strings.HasPrefix(databaseURL, pgqlPrefix), strings.HasPrefix(databaseURL, pgx5Prefix):
		return "sql/postgres", convertToPgx5DSN(databaseURL), nil
	default:
		return "", "", ErrUnsupportedURL
	}
}

// convertToPgx5DSN ensures the DSN uses the pgx5:// scheme required by golang-migrate/v4.
func convertToPgx5DSN(dsn string) string {
	if strings.HasPrefix(dsn, pgx5Prefix) {
		return dsn
	}

	if rest, ok := strings.CutPrefix(dsn, pgPrefix); ok {
		return pgx5Prefix + rest
	}

	if rest, ok := strings.CutPrefix(dsn, pgqlPrefix); ok {
		return pgx5Prefix + rest
	}

	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
