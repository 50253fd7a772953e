package models

import (
	"time"
)

type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Conversation struct {
	ID             uint          `gorm:"primaryKey;column:id"`
	ConversationID string        `gorm:"column:conversation_id;uniqueIndex;not null"`
	Snippet        string        `gorm:"column:snippet"`
	UpdatedTime    time.Time     `gorm:"column:updated_time"`
	MessageCount   int           `gorm:"column:message_count"`
	Participants   []Participant `gorm:"column:participants;serializer:json"`
	CanReply       bool          `gorm:"column:can_reply;not null;default:true"`
	SyncedAt       time.Time     `gorm:"column:synced_at;not null"`

	Messages []Message `gorm:"foreignKey:ConversationID;references:ConversationID;constraint:OnDelete:CASCADE"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	ID             uint      `gorm:"primaryKey;column:id"`
	MessageID      string    `gorm:"column:message_id;uniqueIndex;not null"`
	ConversationID string    `gorm:"column:conversation_id;index;not null"`
	SenderID       string    `gorm:"column:sender_id"`
	SenderName     string    `gorm:"column:sender_name"`
	RecipientID    string    `gorm:"column:recipient_id"`
	RecipientName  string    `gorm:"column:recipient_name"`
	MessageText    string    `gorm:"column:message_text"`
	CreatedTime    time.Time `gorm:"column:created_time;not null"`
	HasAttachments bool      `gorm:"column:has_attachments;not null;default:false"`
	AIGenerated    bool      `gorm:"column:ai_generated;not null;default:false"`

	Responses []MessageResponse `gorm:"foreignKey:MessageID;references:MessageID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageResponse is a generated reply to an inbound message. SentAt is
// set only once the platform accepted it.
type MessageResponse struct {
	ID             uint       `gorm:"primaryKey;column:id"`
	MessageID      string     `gorm:"column:message_id;index;not null"`
	ResponseText   string     `gorm:"column:response_text;not null"`
	GeneratedAt    time.Time  `gorm:"column:generated_at;not null"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	AIGenerated    bool       `gorm:"column:ai_generated;not null;default:true"`
	TokensUsed     int        `gorm:"column:tokens_used"`
	ProcessingTime float64    `gorm:"column:processing_time"`
	SendError      *string    `gorm:"column:send_error"`
}

func (MessageResponse) TableName() string {
	return "message_responses"
}
