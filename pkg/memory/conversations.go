package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

type ConversationInput struct {
	ConversationID string
	Snippet        string
	UpdatedTime    time.Time
	MessageCount   int
	Participants   []models.Participant
	CanReply       bool
}

type MessageInput struct {
	MessageID      string
	SenderID       string
	SenderName     string
	RecipientID    string
	RecipientName  string
	Text           string
	CreatedTime    time.Time
	HasAttachments bool
}

type ConversationSaveResult struct {
	ConversationCreated bool
	MessagesCreated     int
	MessagesUpdated     int
}

var (
	conversationRemoteColumns = []string{"snippet", "updated_time", "message_count", "participants", "can_reply", "synced_at"}
	messageRemoteColumns      = []string{"sender_id", "sender_name", "recipient_id", "recipient_name", "message_text", "created_time", "has_attachments"}
)

// SaveConversationWithMessages merges one thread and its messages. A new
// message is flagged ai_generated when it matches the text of a response
// this process already sent into the thread.
func (s *Store) SaveConversationWithMessages(ctx context.Context, conv ConversationInput, messages []MessageInput) (*ConversationSaveResult, error) {
	result := &ConversationSaveResult{}
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Conversation{}).Where("conversation_id = ?", conv.ConversationID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check conversation: %w", err)
		}
		result.ConversationCreated = existing == 0

		participants := conv.Participants
		if participants == nil {
			participants = []models.Participant{}
		}
		row := models.Conversation{
			ConversationID: conv.ConversationID,
			Snippet:        conv.Snippet,
			UpdatedTime:    conv.UpdatedTime.UTC(),
			MessageCount:   conv.MessageCount,
			Participants:   participants,
			CanReply:       conv.CanReply,
			SyncedAt:       now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.AssignmentColumns(conversationRemoteColumns),
		}).Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}

		if len(messages) == 0 {
			return nil
		}

		ids := make([]string, 0, len(messages))
		for _, m := range messages {
			ids = append(ids, m.MessageID)
		}
		var known []string
		if err := tx.Model(&models.Message{}).Where("message_id IN ?", ids).Pluck("message_id", &known).Error; err != nil {
			return fmt.Errorf("failed to load known messages: %w", err)
		}
		exists := make(map[string]bool, len(known))
		for _, id := range known {
			exists[id] = true
		}

		rows := make([]models.Message, 0, len(messages))
		seen := make(map[string]bool, len(messages))
		for _, m := range messages {
			if seen[m.MessageID] {
				continue
			}
			seen[m.MessageID] = true
			aiGenerated := false
			if exists[m.MessageID] {
				result.MessagesUpdated++
			} else {
				result.MessagesCreated++
				sent, err := matchesSentResponse(tx, conv.ConversationID, m.Text)
				if err != nil {
					return err
				}
				aiGenerated = sent
			}
			rows = append(rows, models.Message{
				MessageID:      m.MessageID,
				ConversationID: conv.ConversationID,
				SenderID:       m.SenderID,
				SenderName:     m.SenderName,
				RecipientID:    m.RecipientID,
				RecipientName:  m.RecipientName,
				MessageText:    m.Text,
				CreatedTime:    m.CreatedTime.UTC(),
				HasAttachments: m.HasAttachments,
				AIGenerated:    aiGenerated,
			})
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns(messageRemoteColumns),
		}).Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id":  conv.ConversationID,
		"created":          result.ConversationCreated,
		"messages_created": result.MessagesCreated,
		"messages_updated": result.MessagesUpdated,
	}).Debug("Saved conversation with messages")

	return result, nil
}

func matchesSentResponse(tx *gorm.DB, conversationID, text string) (bool, error) {
	if text == "" {
		return false, nil
	}
	var count int64
	err := tx.Model(&models.MessageResponse{}).
		Joins("JOIN messages ON messages.message_id = message_responses.message_id").
		Where("messages.conversation_id = ? AND message_responses.response_text = ? AND message_responses.sent_at IS NOT NULL", conversationID, text).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to match sent responses: %w", err)
	}
	return count > 0, nil
}

func (s *Store) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&conv).Error; err != nil {
		return nil, notFound(err)
	}
	return &conv, nil
}

func (s *Store) ListConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	q := s.db.WithContext(ctx).Order("updated_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *Store) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	var msg models.Message
	if err := s.db.WithContext(ctx).Where("message_id = ?", messageID).First(&msg).Error; err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

// ConversationHistory returns the last n messages of a thread, oldest first.
func (s *Store) ConversationHistory(ctx context.Context, conversationID string, n int) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_time DESC").Limit(n).
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListMessagesNeedingResponse returns inbound messages that are the latest
// word in a repliable thread and have no sent response yet.
func (s *Store) ListMessagesNeedingResponse(ctx context.Context, pageID string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	q := s.db.WithContext(ctx).
		Table("messages AS m").
		Select("m.*").
		Joins("JOIN conversations c ON c.conversation_id = m.conversation_id").
		Where("c.can_reply = ?", true).
		Where("m.sender_id <> ?", pageID).
		Where("NOT EXISTS (SELECT 1 FROM message_responses r WHERE r.message_id = m.message_id AND r.sent_at IS NOT NULL)").
		Where("NOT EXISTS (SELECT 1 FROM messages later WHERE later.conversation_id = m.conversation_id AND later.created_time > m.created_time)").
		Order("m.created_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages needing response: %w", err)
	}
	return msgs, nil
}

// SaveMessageResponse stores a generated response before it is sent.
func (s *Store) SaveMessageResponse(ctx context.Context, messageID, text string, tokens int, processing float64) (*models.MessageResponse, error) {
	row := models.MessageResponse{
		MessageID:      messageID,
		ResponseText:   text,
		GeneratedAt:    s.now(),
		AIGenerated:    true,
		TokensUsed:     tokens,
		ProcessingTime: processing,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to save message response: %w", err)
	}
	return &row, nil
}

// GetUnsentResponse returns the newest stored response to messageID that
// has not been delivered, or ErrNotFound.
func (s *Store) GetUnsentResponse(ctx context.Context, messageID string) (*models.MessageResponse, error) {
	var row models.MessageResponse
	if err := s.db.WithContext(ctx).
		Where("message_id = ? AND sent_at IS NULL", messageID).
		Order("generated_at DESC").Order("id DESC").
		First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (s *Store) MarkResponseSent(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.MessageResponse{}).Where("id = ?", id).
		Updates(map[string]interface{}{"sent_at": s.now(), "send_error": nil}).Error
}

func (s *Store) MarkResponseFailed(ctx context.Context, id uint, sendErr string) error {
	return s.db.WithContext(ctx).Model(&models.MessageResponse{}).Where("id = ?", id).
		Update("send_error", sendErr).Error
}

func (s *Store) ListMessageResponses(ctx context.Context, messageID string) ([]models.MessageResponse, error) {
	var rows []models.MessageResponse
	if err := s.db.WithContext(ctx).Where("message_id = ?", messageID).Order("generated_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list message responses: %w", err)
	}
	return rows, nil
}
