package models

import (
	"time"
)

type SentimentCategory string

const (
	SentimentPositive SentimentCategory = "positive"
	SentimentNegative SentimentCategory = "negative"
	SentimentNeutral  SentimentCategory = "neutral"
)

// Comment is a comment on a mirrored post. Responded only turns true once
// an automatically generated reply was confirmed by the platform.
type Comment struct {
	ID                uint              `gorm:"primaryKey;column:id"`
	CommentID         string            `gorm:"column:comment_id;uniqueIndex;not null"`
	PostID            string            `gorm:"column:post_id;index;not null"`
	Message           string            `gorm:"column:message;not null"`
	UserName          string            `gorm:"column:user_name"`
	UserID            string            `gorm:"column:user_id"`
	CreatedTime       time.Time         `gorm:"column:created_time;not null"`
	SentimentScore    *float64          `gorm:"column:sentiment_score"`
	SentimentCategory SentimentCategory `gorm:"column:sentiment_category"`
	Keywords          []string          `gorm:"column:keywords;serializer:json"`
	Responded         bool              `gorm:"column:responded;not null;default:false"`
	RespondedAt       *time.Time        `gorm:"column:responded_at"`
	AIResponse        *string           `gorm:"column:ai_response"`
	AIEvaluation      *string           `gorm:"column:ai_evaluation"`
	SyncedAt          time.Time         `gorm:"column:synced_at;not null"`

	Replies []CommentReply  `gorm:"foreignKey:CommentID;references:CommentID;constraint:OnDelete:CASCADE"`
	Drafts  []ResponseDraft `gorm:"foreignKey:CommentID;references:CommentID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentReply is a reply to a comment, either posted by the page or an
// AI attempt that failed to post. Failed attempts carry a placeholder
// ReplyID prefixed with ErrorReplyPrefix.
type CommentReply struct {
	ID          uint      `gorm:"primaryKey;column:id"`
	ReplyID     string    `gorm:"column:reply_id;uniqueIndex;not null"`
	CommentID   string    `gorm:"column:comment_id;index;not null"`
	Message     string    `gorm:"column:message;not null"`
	Author      string    `gorm:"column:author"`
	CreatedTime time.Time `gorm:"column:created_time;not null"`
	AIGenerated bool      `gorm:"column:ai_generated;not null;default:false"`
	Posted      bool      `gorm:"column:posted;not null;default:false"`
	PostError   *string   `gorm:"column:post_error"`
}

const ErrorReplyPrefix = "error_"

func (CommentReply) TableName() string {
	return "comment_replies"
}

// ResponseDraft is a generated reply awaiting review. At most one
// unposted draft exists per comment and a posted draft is frozen.
type ResponseDraft struct {
	ID             uint       `gorm:"primaryKey;column:id"`
	CommentID      string     `gorm:"column:comment_id;not null"`
	Message        string     `gorm:"column:message;not null"`
	GeneratedAt    time.Time  `gorm:"column:generated_at;not null"`
	Posted         bool       `gorm:"column:posted;not null;default:false"`
	PostedID       *string    `gorm:"column:posted_id"`
	PostedAt       *time.Time `gorm:"column:posted_at"`
	PostError      *string    `gorm:"column:post_error"`
	TokensUsed     int        `gorm:"column:tokens_used"`
	ProcessingTime float64    `gorm:"column:processing_time"`
	// Confidence is the evaluator's score for generated text. It is cleared
	// once a person edits the draft.
	Confidence *float64 `gorm:"column:confidence"`
}

func (ResponseDraft) TableName() string {
	return "response_drafts"
}
