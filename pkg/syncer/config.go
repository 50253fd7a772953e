package syncer

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 2 * time.Second
)

type Config struct {
	// RetryAttempts is the number of tries for a retryable fetch, the first
	// included. Retries wait RetryDelay between tries.
	RetryAttempts int
	RetryDelay    time.Duration
	Logger        *logrus.Logger
}

// NewSyncConfig reads SYNC_RETRY_ATTEMPTS and SYNC_RETRY_DELAY.
func NewSyncConfig(logger *logrus.Logger) (*Config, error) {
	config := &Config{
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,
		Logger:        logger,
	}

	if v := os.Getenv("SYNC_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_RETRY_ATTEMPTS %q: %w", v, err)
		}
		config.RetryAttempts = n
	}
	if v := os.Getenv("SYNC_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_RETRY_DELAY %q: %w", v, err)
		}
		config.RetryDelay = d
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	return nil
}
