package actions

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/syncer"
)

const (
	DefaultSyncInterval        = 15 * time.Minute
	DefaultAutoReplyInterval   = 5 * time.Minute
	DefaultMessageSyncInterval = 10 * time.Minute
)

// SyncAction periodically mirrors posts and their comments.
type SyncAction struct {
	syncer          *syncer.Syncer
	interval        time.Duration
	postsLimit      int
	commentsPerPost int
}

type SyncOptions struct {
	Interval        time.Duration
	PostsLimit      int
	CommentsPerPost int
}

func NewSyncAction(s *syncer.Syncer, opts SyncOptions) *SyncAction {
	if opts.Interval == 0 {
		opts.Interval = DefaultSyncInterval
	}
	if opts.PostsLimit == 0 {
		opts.PostsLimit = 25
	}
	if opts.CommentsPerPost == 0 {
		opts.CommentsPerPost = 100
	}
	return &SyncAction{
		syncer:          s,
		interval:        opts.Interval,
		postsLimit:      opts.PostsLimit,
		commentsPerPost: opts.CommentsPerPost,
	}
}

func (a *SyncAction) Name() string {
	return "post_sync"
}

func (a *SyncAction) Interval() time.Duration {
	return a.interval
}

func (a *SyncAction) Execute(ctx context.Context) error {
	_, err := a.syncer.SyncPostsWithComments(ctx, a.postsLimit, a.commentsPerPost)
	return err
}

// MessageSyncAction periodically mirrors Messenger threads.
type MessageSyncAction struct {
	syncer   *syncer.Syncer
	interval time.Duration
	convs    int
	messages int
}

func NewMessageSyncAction(s *syncer.Syncer, interval time.Duration, conversationsLimit, messagesLimit int) *MessageSyncAction {
	if interval == 0 {
		interval = DefaultMessageSyncInterval
	}
	if conversationsLimit == 0 {
		conversationsLimit = 20
	}
	if messagesLimit == 0 {
		messagesLimit = 50
	}
	return &MessageSyncAction{syncer: s, interval: interval, convs: conversationsLimit, messages: messagesLimit}
}

func (a *MessageSyncAction) Name() string {
	return "message_sync"
}

func (a *MessageSyncAction) Interval() time.Duration {
	return a.interval
}

func (a *MessageSyncAction) Execute(ctx context.Context) error {
	_, err := a.syncer.SyncConversationsWithMessages(ctx, a.convs, a.messages)
	return err
}

// AutoReplyAction runs the comment responder while auto replies are
// enabled in the stored settings.
type AutoReplyAction struct {
	responder *CommentResponder
	store     *memory.Store
	logger    *logrus.Logger
	interval  time.Duration
	limit     int
}

func NewAutoReplyAction(responder *CommentResponder, store *memory.Store, logger *logrus.Logger, interval time.Duration, limit int) *AutoReplyAction {
	if interval == 0 {
		interval = DefaultAutoReplyInterval
	}
	if limit == 0 {
		limit = 20
	}
	return &AutoReplyAction{
		responder: responder,
		store:     store,
		logger:    logger,
		interval:  interval,
		limit:     limit,
	}
}

func (a *AutoReplyAction) Name() string {
	return "auto_reply"
}

func (a *AutoReplyAction) Interval() time.Duration {
	return a.interval
}

func (a *AutoReplyAction) Execute(ctx context.Context) error {
	settings, err := a.store.GetSettings(ctx)
	if err != nil {
		return failures.New(failures.KindStore, "load settings", err)
	}
	if !settings.Enabled {
		a.logger.Debug("Auto reply disabled, nothing to do")
		return nil
	}
	_, err = a.responder.ProcessPending(ctx, a.limit)
	return err
}
