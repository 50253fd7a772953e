package llm

import (
	"context"
	"time"
)

// LLM generates a single completion for a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (*Completion, error)
}

// Completion is the generated text plus what the provider reported about
// the call. Token counts are zero when the provider reported none.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Duration         time.Duration
}

type Option func(*Options)

type Options struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Model        string
}

// NewOptions applies opts over the given defaults.
func NewOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(tokens int) Option {
	return func(o *Options) {
		o.MaxTokens = tokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}
