package db

import (
	"fmt"
	"os"
	"strings"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultDatabaseURL = "sqlite://social_media.db"
)

// Config selects the store backend. DATABASE_URL wins; without it the
// DB_* variables describe a postgres server, and with neither set a local
// sqlite file is used.
type Config struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func NewDBConfig() *Config {
	return &Config{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}
}

// DatabaseURL returns the migrate-compatible URL for the configured store.
func (c *Config) DatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
	}
	return defaultDatabaseURL
}

func (c *Config) Dialect() string {
	u := c.DatabaseURL()
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// SQLitePath strips the scheme and query from a sqlite URL.
func (c *Config) SQLitePath() string {
	p := strings.TrimPrefix(c.DatabaseURL(), "sqlite://")
	p = strings.TrimPrefix(p, "sqlite:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

func (c *Config) Validate() error {
	u := c.DatabaseURL()
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return nil
	case strings.HasPrefix(u, "sqlite:"):
		if c.SQLitePath() == "" {
			return fmt.Errorf("sqlite database url %q has no path", u)
		}
		return nil
	}
	return fmt.Errorf("unsupported database url %q: expected postgres:// or sqlite://", u)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
