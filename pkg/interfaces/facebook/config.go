package facebook

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL      = "https://graph.facebook.com"
	DefaultAPIVersion   = "v19.0"
	DefaultRequestDelay = time.Second
	defaultTimeout      = 30 * time.Second
)

type FacebookConfig struct {
	PageID      string
	AccessToken string

	BaseURL    string
	APIVersion string

	// RequestDelay is the minimum spacing between two Graph requests.
	RequestDelay time.Duration
	Timeout      time.Duration

	Logger *logrus.Logger
}

func NewFacebookConfig(logger *logrus.Logger) (*FacebookConfig, error) {
	delay, err := parseDurationEnv("FACEBOOK_REQUEST_DELAY", DefaultRequestDelay)
	if err != nil {
		return nil, err
	}

	config := &FacebookConfig{
		PageID:       os.Getenv("FACEBOOK_PAGE_ID"),
		AccessToken:  os.Getenv("FACEBOOK_PAGE_ACCESS_TOKEN"),
		BaseURL:      getEnvOrDefault("FACEBOOK_API_BASE_URL", DefaultBaseURL),
		APIVersion:   getEnvOrDefault("FACEBOOK_API_VERSION", DefaultAPIVersion),
		RequestDelay: delay,
		Timeout:      defaultTimeout,
		Logger:       logger,
	}

	config.Logger.WithFields(logrus.Fields{
		"page_id":       config.PageID,
		"token_exists":  config.AccessToken != "",
		"base_url":      config.BaseURL,
		"api_version":   config.APIVersion,
		"request_delay": config.RequestDelay.String(),
	}).Debug("Facebook config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *FacebookConfig) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.PageID == "" {
		return fmt.Errorf("FACEBOOK_PAGE_ID is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("FACEBOOK_PAGE_ACCESS_TOKEN is required")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}

// Endpoint joins the versioned API root with a path such as "/{page}/posts".
func (c *FacebookConfig) Endpoint(path string) string {
	root := strings.TrimRight(c.BaseURL, "/")
	if c.APIVersion != "" {
		root += "/" + c.APIVersion
	}
	return root + "/" + strings.TrimLeft(path, "/")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv accepts Go durations ("1500ms") or plain seconds ("1.5").
func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	var seconds float64
	if _, err := fmt.Sscanf(raw, "%g", &seconds); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
