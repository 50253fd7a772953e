package actions

import (
	"context"
	"time"

	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

// Action is a unit of work the agent runs on a schedule.
type Action interface {
	// Name returns the unique identifier for this action
	Name() string
	// Interval is the time between two runs
	Interval() time.Duration
	// Execute performs one run
	Execute(ctx context.Context) error
}

// ActionConfig holds common configuration for actions
type ActionConfig struct {
	Name     string
	Interval time.Duration
}

// Publisher is the write side of the Graph client used for comments and posts.
type Publisher interface {
	PostReply(ctx context.Context, commentID, text string) (string, error)
	EditPost(ctx context.Context, postID, message string) (bool, error)
	DeletePost(ctx context.Context, postID string) (bool, error)
	DeleteComment(ctx context.Context, commentID string) (bool, error)
}

// Messenger sends Messenger replies on behalf of the page.
type Messenger interface {
	PageID() string
	SendMessage(ctx context.Context, recipientID, text string) (bool, error)
}

type CommentEvaluator interface {
	Evaluate(ctx context.Context, in thoughts.CommentInput) (*thoughts.Evaluation, error)
}

type MessageEvaluator interface {
	Evaluate(ctx context.Context, in thoughts.MessageInput) (*thoughts.Evaluation, error)
}
