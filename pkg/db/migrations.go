package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/migrations"
)

func newMigrator(cfg *Config) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, cfg.Dialect())
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	dbURL := cfg.DatabaseURL()
	if cfg.Dialect() == DialectSQLite {
		dbURL = "sqlite://" + cfg.SQLitePath()
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending up migration for the configured dialect.
func RunMigrations(logger *logrus.Logger, cfg *Config) error {
	logger.WithField("dialect", cfg.Dialect()).Debug("Running database migrations")

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrationStatus returns the current migration version and dirty state.
func MigrationStatus(logger *logrus.Logger, cfg *Config) (uint, bool, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Debug("Migration status retrieved")

	return version, dirty, nil
}
