package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema up to the newest embedded migration.
// Running it against an up-to-date schema is a no-op.
func RunMigrations(dsn string, logger *zap.Logger) error {
	return withMigrator(dsn, logger, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// RollbackMigrations undoes the last steps migrations.
func RollbackMigrations(dsn string, steps int, logger *zap.Logger) error {
	if steps < 1 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	return withMigrator(dsn, logger, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

func withMigrator(dsn string, logger *zap.Logger, run func(*migrate.Migrate) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer conn.Close()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	target, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}

	if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("schema empty after migration")
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	default:
		logger.Info("schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}
