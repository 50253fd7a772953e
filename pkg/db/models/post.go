package models

import (
	"time"
)

// Post is a Page post mirrored from the Graph API. Message is nil for
// posts without text (shares, photo-only posts).
type Post struct {
	ID             uint      `gorm:"primaryKey;column:id"`
	PostID         string    `gorm:"column:post_id;uniqueIndex;not null"`
	PageID         string    `gorm:"column:page_id;not null"`
	Message        *string   `gorm:"column:message"`
	CreatedTime    time.Time `gorm:"column:created_time;not null"`
	UpdatedTime    time.Time `gorm:"column:updated_time"`
	AvgSentiment   *float64  `gorm:"column:avg_sentiment"`
	TrendingTopics []string  `gorm:"column:trending_topics;serializer:json"`
	SyncedAt       time.Time `gorm:"column:synced_at;not null"`

	Comments []Comment `gorm:"foreignKey:PostID;references:PostID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}

// Text returns the post message or an empty string.
func (p Post) Text() string {
	if p.Message == nil {
		return ""
	}
	return *p.Message
}
