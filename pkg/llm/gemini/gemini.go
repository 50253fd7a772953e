// Package gemini adapts Google's genai SDK to the llm.LLM interface.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/lisanmuaddib/pagesync/pkg/llm"
)

type Client struct {
	logger *logrus.Logger
	genai  *genai.Client
	config *Config
}

func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		logger: config.Logger,
		genai:  gc,
		config: config,
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.NewOptions(llm.Options{
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Model:       c.config.Model,
	}, opts...)

	temperature := float32(options.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(options.MaxTokens),
	}
	if options.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: options.SystemPrompt}}}
	}

	c.logger.WithFields(logrus.Fields{
		"temperature": options.Temperature,
		"max_tokens":  options.MaxTokens,
		"model":       options.Model,
	}).Debug("Generating completion")

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, options.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
			return nil, fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	completion := &llm.Completion{
		Text:     text,
		Model:    options.Model,
		Duration: time.Since(start),
	}
	if u := resp.UsageMetadata; u != nil {
		completion.PromptTokens = int(u.PromptTokenCount)
		completion.CompletionTokens = int(u.CandidatesTokenCount)
		completion.TotalTokens = int(u.TotalTokenCount)
	}
	return completion, nil
}
