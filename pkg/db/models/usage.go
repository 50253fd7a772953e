package models

import (
	"time"
)

// UsageLog is one LLM call. Rows are only ever inserted.
type UsageLog struct {
	ID             uint      `gorm:"primaryKey;column:id"`
	TargetID       *string   `gorm:"column:target_id;index"`
	Endpoint       string    `gorm:"column:endpoint;not null"`
	Model          string    `gorm:"column:model"`
	TokensUsed     int       `gorm:"column:tokens_used;not null;default:0"`
	ProcessingTime float64   `gorm:"column:processing_time;not null;default:0"`
	Success        bool      `gorm:"column:success;not null"`
	ErrorMessage   *string   `gorm:"column:error_message"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}
