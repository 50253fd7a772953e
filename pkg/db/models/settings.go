package models

import (
	"time"
)

// SettingsID is the fixed primary key of the single settings row.
const SettingsID = 1

type AutoReplySettings struct {
	ID                   uint      `gorm:"primaryKey;column:id"`
	Enabled              bool      `gorm:"column:enabled;not null"`
	ResponseTemplate     string    `gorm:"column:response_template"`
	MinConfidence        float64   `gorm:"column:min_confidence;not null"`
	MaxDailyReplies      int       `gorm:"column:max_daily_replies;not null"`
	ExcludedKeywords     []string  `gorm:"column:excluded_keywords;serializer:json"`
	RespondToNegative    bool      `gorm:"column:respond_to_negative;not null"`
	RespondToQuestions   bool      `gorm:"column:respond_to_questions;not null"`
	RespondToCompliments bool      `gorm:"column:respond_to_compliments;not null"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (AutoReplySettings) TableName() string {
	return "auto_reply_settings"
}

func DefaultAutoReplySettings() AutoReplySettings {
	return AutoReplySettings{
		ID:                   SettingsID,
		Enabled:              false,
		MinConfidence:        0.7,
		MaxDailyReplies:      50,
		ExcludedKeywords:     []string{},
		RespondToNegative:    true,
		RespondToQuestions:   true,
		RespondToCompliments: true,
	}
}
