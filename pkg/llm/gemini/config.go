package gemini

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.7
	defaultMaxTokens   = 200
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *logrus.Logger
}

func NewGeminiConfig(logger *logrus.Logger) (*Config, error) {
	config := &Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
		Logger: logger,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	return nil
}
