package openai

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	defaultModel       = "gpt-3.5-turbo"
	defaultTemperature = 0.7
	defaultMaxTokens   = 200
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *logrus.Logger
}

func NewOpenAIConfig(logger *logrus.Logger) (*Config, error) {
	config := &Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
		Logger:  logger,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	return nil
}
