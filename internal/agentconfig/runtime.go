package agentconfig

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lisanmuaddib/pagesync/internal/personality/traits"
	"github.com/lisanmuaddib/pagesync/pkg/actions"
	"github.com/lisanmuaddib/pagesync/pkg/agent"
	"github.com/lisanmuaddib/pagesync/pkg/db"
	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
	"github.com/lisanmuaddib/pagesync/pkg/ledger"
	"github.com/lisanmuaddib/pagesync/pkg/llm"
	"github.com/lisanmuaddib/pagesync/pkg/llm/gemini"
	"github.com/lisanmuaddib/pagesync/pkg/llm/openai"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/syncer"
	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

// Runtime is the fully wired process: store, Graph client, model and the
// agent facade on top of them.
type Runtime struct {
	Config   *Config
	DB       *gorm.DB
	Store    *memory.Store
	Ledger   *ledger.Ledger
	Facebook *facebook.FacebookClient
	Syncer   *syncer.Syncer
	Comments *actions.CommentResponder
	Messages *actions.MessageResponder
	Agent    *agent.Agent

	// Evaluator is also used directly for detailed comment analysis.
	Evaluator *thoughts.CommentEvaluator
}

// Build reads every component's configuration from the environment and
// connects them.
func Build(ctx context.Context, logger *logrus.Logger, opts ...Option) (*Runtime, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	gormDB, err := db.SetupDatabase(logger, db.NewDBConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	fbConfig, err := facebook.NewFacebookConfig(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Facebook config: %w", err)
	}
	fbClient, err := facebook.NewFacebookClient(fbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Facebook client: %w", err)
	}

	model, err := NewLLM(ctx, cfg.LLMProvider, logger)
	if err != nil {
		return nil, err
	}

	syncConfig, err := syncer.NewSyncConfig(logger)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore(logger, gormDB)
	usage := ledger.New(logger, gormDB, cfg.CostPer1K)

	w := WireConfig{
		Config:     cfg,
		DB:         gormDB,
		Store:      store,
		Ledger:     usage,
		Facebook:   fbClient,
		LLM:        model,
		SyncConfig: *syncConfig,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&w)
	}
	return Wire(w)
}

type Option func(*WireConfig)

// WithProgress replaces the default debug log of sync progress.
func WithProgress(fn syncer.ProgressFunc) Option {
	return func(w *WireConfig) {
		w.Progress = fn
	}
}

// WireConfig holds already-constructed dependencies for Wire.
type WireConfig struct {
	Config     *Config
	DB         *gorm.DB
	Store      *memory.Store
	Ledger     *ledger.Ledger
	Facebook   *facebook.FacebookClient
	LLM        llm.LLM
	SyncConfig syncer.Config
	Logger     *logrus.Logger
	// Progress receives sync progress; nil logs it at debug level.
	Progress syncer.ProgressFunc
}

// Wire assembles evaluators, responders, the syncer and the agent.
func Wire(w WireConfig) (*Runtime, error) {
	cfg := w.Config
	prompt := traits.NewPageManagerPrompt(cfg.PageName, cfg.ReplyLanguage, "")

	commentEval := thoughts.NewCommentEvaluator(w.LLM, w.Ledger, thoughts.CommentEvaluatorConfig{
		SystemPrompt: prompt,
		Logger:       w.Logger,
	})
	messageEval := thoughts.NewMessageEvaluator(w.LLM, w.Ledger, thoughts.CommentEvaluatorConfig{
		SystemPrompt: prompt,
		Logger:       w.Logger,
	})

	progress := w.Progress
	if progress == nil {
		progress = logProgress(w.Logger)
	}
	s := syncer.New(w.Facebook, w.Store, w.SyncConfig, syncer.WithProgress(progress))
	comments := actions.NewCommentResponder(w.Store, w.Facebook, commentEval, actions.ResponderConfig{
		Author: cfg.PageName,
		Logger: w.Logger,
	})

	var messages *actions.MessageResponder
	if cfg.MessagesEnabled {
		messages = actions.NewMessageResponder(w.Store, w.Facebook, messageEval, actions.MessageResponderConfig{
			Logger: w.Logger,
		})
	}

	a, err := agent.New(agent.Config{
		Store:    w.Store,
		Syncer:   s,
		Comments: comments,
		Messages: messages,
		Ledger:   w.Ledger,
		Logger:   w.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &Runtime{
		Config:   cfg,
		DB:       w.DB,
		Store:    w.Store,
		Ledger:   w.Ledger,
		Facebook: w.Facebook,
		Syncer:   s,
		Comments: comments,
		Messages: messages,
		Agent:    a,

		Evaluator: commentEval,
	}, nil
}

func logProgress(logger *logrus.Logger) syncer.ProgressFunc {
	return func(percent float64, msg string) {
		logger.WithField("percent", percent).Debug(msg)
	}
}

// NewLLM returns the completion client for provider.
func NewLLM(ctx context.Context, provider string, logger *logrus.Logger) (llm.LLM, error) {
	switch provider {
	case ProviderOpenAI:
		config, err := openai.NewOpenAIConfig(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI config: %w", err)
		}
		client, err := openai.NewClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	case ProviderGemini:
		config, err := gemini.NewGeminiConfig(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini config: %w", err)
		}
		client, err := gemini.NewClient(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

// RegisterActions adds the scheduled actions for the runtime to its agent.
func (r *Runtime) RegisterActions(logger *logrus.Logger) error {
	scheduled, err := ConfigureActions(ActionConfig{
		Config:   r.Config,
		Syncer:   r.Syncer,
		Store:    r.Store,
		Comments: r.Comments,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	for _, action := range scheduled {
		if err := r.Agent.RegisterAction(action); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (r *Runtime) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
