package db

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the pure-Go "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// SetupDatabase runs the embedded migrations and opens the GORM handle.
func SetupDatabase(logger *logrus.Logger, cfg *Config) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.WithField("dialect", cfg.Dialect()).Debug("Starting database setup")

	if err := RunMigrations(logger, cfg); err != nil {
		return nil, err
	}

	db, err := Open(logger, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Database setup completed successfully")
	return db, nil
}

// Open connects without migrating.
func Open(logger *logrus.Logger, cfg *Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogrusLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Dialect() == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		// sqlite allows a single writer; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func dialectorFor(cfg *Config) (gorm.Dialector, error) {
	if cfg.Dialect() == DialectPostgres {
		dsn, err := pq.ParseURL(cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres url: %w", err)
		}
		return postgres.Open(dsn), nil
	}

	return sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        cfg.SQLitePath() + "?" + sqlitePragmas,
	}), nil
}
