// Package syncer mirrors the page into the local store. Each post or
// conversation is written in its own transaction so one bad item never
// stops its siblings.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
)

// Source is the read side of the Graph client.
type Source interface {
	PageID() string
	FetchPosts(ctx context.Context, limit int) (*facebook.Page[facebook.Post], error)
	FetchComments(ctx context.Context, postID string, limit int) (*facebook.Page[facebook.Comment], error)
	FetchConversations(ctx context.Context, limit int) (*facebook.Page[facebook.Conversation], error)
	FetchMessages(ctx context.Context, conversationID string, limit int) (*facebook.Page[facebook.Message], error)
}

// Store is the write side used by a sync run.
type Store interface {
	SavePostWithComments(ctx context.Context, post memory.PostInput, comments []memory.CommentInput) (*memory.PostSaveResult, error)
	SaveConversationWithMessages(ctx context.Context, conv memory.ConversationInput, messages []memory.MessageInput) (*memory.ConversationSaveResult, error)
}

// ProgressFunc receives a completion percentage in [0,100] and a status line.
type ProgressFunc func(percent float64, msg string)

type Syncer struct {
	source   Source
	store    Store
	config   Config
	logger   *logrus.Logger
	sleep    func(ctx context.Context, d time.Duration) error
	progress ProgressFunc
}

type Option func(*Syncer)

// WithProgress reports progress after every synced item.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Syncer) {
		s.progress = fn
	}
}

// WithSleep replaces the wait between retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Syncer) {
		s.sleep = sleep
	}
}

func New(source Source, store Store, config Config, opts ...Option) *Syncer {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	s := &Syncer{
		source: source,
		store:  store,
		config: config,
		logger: config.Logger,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry retries rate limits and network failures with a flat delay.
func withRetry[T any](ctx context.Context, s *Syncer, op string, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= s.config.RetryAttempts; attempt++ {
		result, err = fn()
		if err == nil || !facebook.IsRetryable(err) || attempt == s.config.RetryAttempts {
			return result, err
		}
		s.logger.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
			"error":   err,
		}).Warn("Retryable fetch failure, waiting before next attempt")
		if serr := s.sleep(ctx, s.config.RetryDelay); serr != nil {
			return result, fmt.Errorf("%s: %w", op, serr)
		}
	}
	return result, err
}

func (s *Syncer) report(done, total int, msg string) {
	if s.progress == nil {
		return
	}
	if total == 0 {
		s.progress(100, msg)
		return
	}
	s.progress(float64(done)*100/float64(total), msg)
}
