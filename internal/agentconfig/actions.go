package agentconfig

import (
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/actions"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/syncer"
)

type ActionConfig struct {
	Config   *Config
	Syncer   *syncer.Syncer
	Store    *memory.Store
	Comments *actions.CommentResponder
	Logger   *logrus.Logger
}

// ConfigureActions sets up all scheduled agent actions
func ConfigureActions(config ActionConfig) ([]actions.Action, error) {
	cfg := config.Config

	scheduled := []actions.Action{
		actions.NewSyncAction(config.Syncer, actions.SyncOptions{
			Interval:        cfg.SyncInterval,
			PostsLimit:      cfg.PostsLimit,
			CommentsPerPost: cfg.CommentsPerPost,
		}),
		actions.NewAutoReplyAction(config.Comments, config.Store, config.Logger, cfg.AutoReplyInterval, cfg.AutoReplyBatch),
	}

	if cfg.MessagesEnabled {
		scheduled = append(scheduled, actions.NewMessageSyncAction(
			config.Syncer, cfg.MessageSyncInterval, cfg.ConversationsLimit, cfg.MessagesLimit))
	}

	return scheduled, nil
}
