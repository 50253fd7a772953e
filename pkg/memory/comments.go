package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

func (s *Store) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Where("comment_id = ?", commentID).First(&comment).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

// ListUnrespondedComments returns comments still awaiting an automatic
// reply, newest first.
func (s *Store) ListUnrespondedComments(ctx context.Context, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	q := s.db.WithContext(ctx).Where("responded = ?", false).Order("created_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list unresponded comments: %w", err)
	}
	return comments, nil
}

// ListAutoReplyCandidates returns unresponded comments newest first,
// leaving out comments whose live draft is held below minConfidence. When
// after is set, only comments older than it are returned, so a caller can
// page past comments it skipped.
func (s *Store) ListAutoReplyCandidates(ctx context.Context, minConfidence float64, after *models.Comment, limit int) ([]models.Comment, error) {
	held := s.db.WithContext(ctx).Model(&models.ResponseDraft{}).Select("comment_id").
		Where("posted = ? AND confidence IS NOT NULL AND confidence < ?", false, minConfidence)

	q := s.db.WithContext(ctx).
		Where("responded = ?", false).
		Where("comment_id NOT IN (?)", held)
	if after != nil {
		created := after.CreatedTime.UTC()
		q = q.Where("(created_time < ? OR (created_time = ? AND id < ?))", created, created, after.ID)
	}
	q = q.Order("created_time DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var comments []models.Comment
	if err := q.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list auto-reply candidates: %w", err)
	}
	return comments, nil
}

// ListCommentsWithoutDraft returns unresponded comments that have no live
// draft, newest first.
func (s *Store) ListCommentsWithoutDraft(ctx context.Context, limit int) ([]models.Comment, error) {
	live := s.db.WithContext(ctx).Model(&models.ResponseDraft{}).Select("comment_id").Where("posted = ?", false)

	var comments []models.Comment
	q := s.db.WithContext(ctx).
		Where("responded = ?", false).
		Where("comment_id NOT IN (?)", live).
		Order("created_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments without draft: %w", err)
	}
	return comments, nil
}

func (s *Store) ListCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_time ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CountAutoRepliesSince counts AI replies the platform accepted since t.
func (s *Store) CountAutoRepliesSince(ctx context.Context, t time.Time) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CommentReply{}).
		Where("ai_generated = ? AND posted = ? AND created_time >= ?", true, true, t.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count auto replies: %w", err)
	}
	return int(count), nil
}

// AutoReply describes a reply the platform confirmed.
type AutoReply struct {
	CommentID  string
	ReplyID    string
	Message    string
	Author     string
	Evaluation *string
	DraftID    *uint
}

// RecordAutoReply stores a confirmed AI reply and marks the comment as
// responded, atomically. A previous failed attempt for the same comment is
// turned into the successful row instead of adding a second one.
func (s *Store) RecordAutoReply(ctx context.Context, reply AutoReply) error {
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		failed, err := findFailedReply(tx, reply.CommentID)
		if err != nil {
			return err
		}

		if failed != nil {
			if err := tx.Model(failed).Updates(map[string]interface{}{
				"reply_id":     reply.ReplyID,
				"message":      reply.Message,
				"author":       reply.Author,
				"created_time": now,
				"posted":       true,
				"post_error":   nil,
			}).Error; err != nil {
				return fmt.Errorf("failed to update reply: %w", err)
			}
		} else {
			row := models.CommentReply{
				ReplyID:     reply.ReplyID,
				CommentID:   reply.CommentID,
				Message:     reply.Message,
				Author:      reply.Author,
				CreatedTime: now,
				AIGenerated: true,
				Posted:      true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save reply: %w", err)
			}
		}

		updates := map[string]interface{}{
			"responded":    true,
			"responded_at": now,
			"ai_response":  reply.Message,
		}
		if reply.Evaluation != nil {
			updates["ai_evaluation"] = *reply.Evaluation
		}
		if err := tx.Model(&models.Comment{}).Where("comment_id = ?", reply.CommentID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mark comment responded: %w", err)
		}

		if reply.DraftID != nil {
			if err := tx.Model(&models.ResponseDraft{}).Where("id = ?", *reply.DraftID).
				Updates(map[string]interface{}{
					"posted":     true,
					"posted_id":  reply.ReplyID,
					"posted_at":  now,
					"post_error": nil,
				}).Error; err != nil {
				return fmt.Errorf("failed to mark draft posted: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id": reply.CommentID,
		"reply_id":   reply.ReplyID,
	}).Info("Recorded automatic reply")
	return nil
}

// RecordFailedAutoReply keeps the text of an AI reply the platform
// rejected. Repeated failures refresh one placeholder row per comment.
func (s *Store) RecordFailedAutoReply(ctx context.Context, commentID, message, author, postErr string) (*models.CommentReply, error) {
	var out models.CommentReply
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		failed, err := findFailedReply(tx, commentID)
		if err != nil {
			return err
		}
		if failed != nil {
			if err := tx.Model(failed).Updates(map[string]interface{}{
				"message":      message,
				"created_time": now,
				"post_error":   postErr,
			}).Error; err != nil {
				return fmt.Errorf("failed to refresh failed reply: %w", err)
			}
			out = *failed
			out.Message, out.CreatedTime, out.PostError = message, now, strPtr(postErr)
			return nil
		}

		out = models.CommentReply{
			ReplyID:     models.ErrorReplyPrefix + uuid.NewString(),
			CommentID:   commentID,
			Message:     message,
			Author:      author,
			CreatedTime: now,
			AIGenerated: true,
			Posted:      false,
			PostError:   strPtr(postErr),
		}
		if err := tx.Create(&out).Error; err != nil {
			return fmt.Errorf("failed to save failed reply: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findFailedReply(tx *gorm.DB, commentID string) (*models.CommentReply, error) {
	var failed models.CommentReply
	err := tx.Where("comment_id = ? AND ai_generated = ? AND posted = ?", commentID, true, false).
		Order("id").First(&failed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up failed reply: %w", err)
	}
	return &failed, nil
}

// RecordManualReply stores a reply typed by a human. It does not change
// the comment's responded flag, which tracks the automatic pipeline only.
func (s *Store) RecordManualReply(ctx context.Context, commentID, replyID, message, author string) (*models.CommentReply, error) {
	row := models.CommentReply{
		ReplyID:     replyID,
		CommentID:   commentID,
		Message:     message,
		Author:      author,
		CreatedTime: s.now(),
		AIGenerated: false,
		Posted:      true,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to save manual reply: %w", err)
	}
	return &row, nil
}

func (s *Store) ListReplies(ctx context.Context, commentID string) ([]models.CommentReply, error) {
	var replies []models.CommentReply
	if err := s.db.WithContext(ctx).Where("comment_id = ?", commentID).Order("created_time ASC").Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return replies, nil
}

// DeleteComment removes a comment with its replies and drafts.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.ResponseDraft{}).Error; err != nil {
			return fmt.Errorf("failed to delete drafts: %w", err)
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentReply{}).Error; err != nil {
			return fmt.Errorf("failed to delete replies: %w", err)
		}
		res := tx.Where("comment_id = ?", commentID).Delete(&models.Comment{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete comment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
