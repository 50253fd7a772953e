package agentconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the process-level configuration read from the environment.
type Config struct {
	LLMProvider   string  `validate:"required,oneof=openai gemini"`
	PageName      string  `validate:"required"`
	ReplyLanguage string  `validate:"required"`
	CostPer1K     float64 `validate:"gte=0"`

	SyncInterval        time.Duration `validate:"min=1m"`
	AutoReplyInterval   time.Duration `validate:"min=1m"`
	MessageSyncInterval time.Duration `validate:"min=1m"`

	PostsLimit         int `validate:"min=1"`
	CommentsPerPost    int `validate:"min=1"`
	AutoReplyBatch     int `validate:"min=1,max=200"`
	ConversationsLimit int `validate:"min=1"`
	MessagesLimit      int `validate:"min=1"`

	// MessagesEnabled adds Messenger sync to the scheduled actions.
	MessagesEnabled bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads the agent settings with their defaults applied.
func LoadConfig() (*Config, error) {
	c := &Config{
		LLMProvider:   strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI)),
		PageName:      getEnvOrDefault("PAGE_NAME", "our page"),
		ReplyLanguage: getEnvOrDefault("REPLY_LANGUAGE", "the language of the comment"),
	}

	var err error
	if c.CostPer1K, err = floatEnv("LLM_COST_PER_1K_TOKENS", 0.002); err != nil {
		return nil, err
	}
	if c.SyncInterval, err = durationEnv("SYNC_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if c.AutoReplyInterval, err = durationEnv("AUTO_REPLY_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if c.MessageSyncInterval, err = durationEnv("MESSAGE_SYNC_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	for _, v := range []struct {
		key string
		dst *int
		def int
	}{
		{"SYNC_POSTS_LIMIT", &c.PostsLimit, 25},
		{"SYNC_COMMENTS_PER_POST", &c.CommentsPerPost, 100},
		{"AUTO_REPLY_BATCH", &c.AutoReplyBatch, 20},
		{"SYNC_CONVERSATIONS_LIMIT", &c.ConversationsLimit, 20},
		{"SYNC_MESSAGES_LIMIT", &c.MessagesLimit, 50},
	} {
		if *v.dst, err = intEnv(v.key, v.def); err != nil {
			return nil, err
		}
	}
	c.MessagesEnabled = getEnvOrDefault("MESSAGES_ENABLED", "false") == "true"

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid agent config: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
