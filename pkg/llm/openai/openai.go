package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/lisanmuaddib/pagesync/pkg/llm"
)

type Client struct {
	logger *logrus.Logger
	model  llms.Model
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}

	return NewClientWithModel(config, model), nil
}

// NewClientWithModel wraps an existing langchaingo model.
func NewClientWithModel(config *Config, model llms.Model) *Client {
	return &Client{
		logger: config.Logger,
		model:  model,
		config: config,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.NewOptions(llm.Options{
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Model:       c.config.Model,
	}, opts...)

	c.logger.WithFields(logrus.Fields{
		"temperature": options.Temperature,
		"max_tokens":  options.MaxTokens,
		"model":       options.Model,
	}).Debug("Generating completion")

	messages := make([]llms.MessageContent, 0, 2)
	if options.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, options.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithModel(options.Model),
		llms.WithTemperature(options.Temperature),
		llms.WithMaxTokens(options.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	choice := resp.Choices[0]
	return &llm.Completion{
		Text:             choice.Content,
		Model:            options.Model,
		PromptTokens:     intInfo(choice.GenerationInfo, "PromptTokens"),
		CompletionTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
		TotalTokens:      intInfo(choice.GenerationInfo, "TotalTokens"),
		Duration:         time.Since(start),
	}, nil
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
