package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/lisanmuaddib/pagesync/pkg/actions"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/ledger"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/syncer"
)

var ErrMessagesDisabled = errors.New("message responder is not configured")

// Agent is the entry point for callers. Operations run one at a time so a
// sync never interleaves with a responder run.
type Agent struct {
	store    *memory.Store
	syncer   *syncer.Syncer
	comments *actions.CommentResponder
	messages *actions.MessageResponder
	ledger   *ledger.Ledger
	logger   *logrus.Logger

	sem     *semaphore.Weighted
	actions map[string]actions.Action
	mu      sync.RWMutex
}

func New(config Config) (*Agent, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if config.Syncer == nil {
		return nil, fmt.Errorf("syncer is required")
	}
	if config.Comments == nil {
		return nil, fmt.Errorf("comment responder is required")
	}
	if config.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Agent{
		store:    config.Store,
		syncer:   config.Syncer,
		comments: config.Comments,
		messages: config.Messages,
		ledger:   config.Ledger,
		logger:   config.Logger,
		sem:      semaphore.NewWeighted(1),
		actions:  make(map[string]actions.Action),
	}, nil
}

// exclusive runs fn once no other operation holds the agent.
func exclusive[T any](ctx context.Context, a *Agent, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer a.sem.Release(1)
	return fn(ctx)
}

func (a *Agent) Sync(ctx context.Context, postsLimit, commentsPerPost int) (*syncer.PostSummary, error) {
	return exclusive(ctx, a, func(ctx context.Context) (*syncer.PostSummary, error) {
		return a.syncer.SyncPostsWithComments(ctx, postsLimit, commentsPerPost)
	})
}

func (a *Agent) SyncMessages(ctx context.Context, conversationsLimit, messagesLimit int) (*syncer.ConversationSummary, error) {
	return exclusive(ctx, a, func(ctx context.Context) (*syncer.ConversationSummary, error) {
		return a.syncer.SyncConversationsWithMessages(ctx, conversationsLimit, messagesLimit)
	})
}

func (a *Agent) ListUnrespondedComments(ctx context.Context, limit int) ([]models.Comment, error) {
	return a.store.ListUnrespondedComments(ctx, limit)
}

func (a *Agent) ProcessPending(ctx context.Context, limit int) (*actions.BatchResult, error) {
	return exclusive(ctx, a, func(ctx context.Context) (*actions.BatchResult, error) {
		return a.comments.ProcessPending(ctx, limit)
	})
}

func (a *Agent) BatchGenerate(ctx context.Context, limit int) (*actions.BatchResult, error) {
	return exclusive(ctx, a, func(ctx context.Context) (*actions.BatchResult, error) {
		return a.comments.BatchGenerateResponses(ctx, limit)
	})
}

func (a *Agent) GenerateDraft(ctx context.Context, commentID string, opts actions.DraftOptions) (*models.ResponseDraft, error) {
	return exclusive(ctx, a, func(ctx context.Context) (*models.ResponseDraft, error) {
		return a.comments.GenerateDraft(ctx, commentID, opts)
	})
}

func (a *Agent) PostDraft(ctx context.Context, draftID uint) (string, error) {
	return exclusive(ctx, a, func(ctx context.Context) (string, error) {
		return a.comments.PostDraft(ctx, draftID)
	})
}

func (a *Agent) ProcessPendingMessages(ctx context.Context, limit int) (*actions.BatchResult, error) {
	if a.messages == nil {
		return nil, ErrMessagesDisabled
	}
	return exclusive(ctx, a, func(ctx context.Context) (*actions.BatchResult, error) {
		return a.messages.ProcessPendingMessages(ctx, limit)
	})
}

func (a *Agent) UsageStats(ctx context.Context) (*ledger.Stats, error) {
	return a.ledger.Stats(ctx)
}

func (a *Agent) Settings(ctx context.Context) (*models.AutoReplySettings, error) {
	return a.store.GetSettings(ctx)
}

func (a *Agent) UpdateSettings(ctx context.Context, settings *models.AutoReplySettings) error {
	_, err := exclusive(ctx, a, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.store.UpdateSettings(ctx, settings)
	})
	return err
}

// RegisterAction adds a new scheduled action to the agent
func (a *Agent) RegisterAction(action actions.Action) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := action.Name()
	if _, exists := a.actions[name]; exists {
		return fmt.Errorf("action %s already registered", name)
	}
	if action.Interval() <= 0 {
		return fmt.Errorf("action %s has no interval", name)
	}

	a.actions[name] = action
	return nil
}

// Run schedules every registered action and blocks until ctx is done.
// Each action runs immediately, then on its interval; a run still in
// progress when the next is due causes that run to be skipped.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.RLock()
	registered := make([]actions.Action, 0, len(a.actions))
	for _, action := range a.actions {
		registered = append(registered, action)
	}
	a.mu.RUnlock()

	if len(registered) == 0 {
		return fmt.Errorf("no actions registered")
	}

	s, err := gocron.NewScheduler(gocron.WithLogger(NewGocronLogger(a.logger)))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	for _, action := range registered {
		if _, err := s.NewJob(
			gocron.DurationJob(action.Interval()),
			gocron.NewTask(func() { a.runAction(ctx, action) }),
			gocron.WithName(action.Name()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		); err != nil {
			_ = s.Shutdown()
			return fmt.Errorf("failed to schedule %s: %w", action.Name(), err)
		}
		a.logger.WithFields(logrus.Fields{
			"action":   action.Name(),
			"interval": action.Interval().String(),
		}).Info("Scheduled action")
	}

	s.Start()
	a.logger.Info("Agent running")

	<-ctx.Done()
	a.logger.Info("Context cancelled, stopping scheduler")
	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return ctx.Err()
}

func (a *Agent) runAction(ctx context.Context, action actions.Action) {
	log := a.logger.WithField("action", action.Name())
	_, err := exclusive(ctx, a, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, action.Execute(ctx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithField("error", err).Error("Action failed")
		return
	}
	log.Debug("Action finished")
}
