package memory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

func (s *Store) GetDraft(ctx context.Context, id uint) (*models.ResponseDraft, error) {
	var draft models.ResponseDraft
	if err := s.db.WithContext(ctx).First(&draft, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &draft, nil
}

// GetLiveDraft returns the comment's unposted draft or ErrNotFound.
func (s *Store) GetLiveDraft(ctx context.Context, commentID string) (*models.ResponseDraft, error) {
	var draft models.ResponseDraft
	if err := s.db.WithContext(ctx).
		Where("comment_id = ? AND posted = ?", commentID, false).
		First(&draft).Error; err != nil {
		return nil, notFound(err)
	}
	return &draft, nil
}

// CreateDraft inserts a new unposted draft. It fails with ErrDraftExists
// when the comment already has one.
func (s *Store) CreateDraft(ctx context.Context, commentID, message string, tokens int, processing float64, confidence *float64) (*models.ResponseDraft, error) {
	draft := models.ResponseDraft{
		CommentID:      commentID,
		Message:        message,
		GeneratedAt:    s.now(),
		TokensUsed:     tokens,
		ProcessingTime: processing,
		Confidence:     confidence,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&models.ResponseDraft{}).
			Where("comment_id = ? AND posted = ?", commentID, false).
			Count(&live).Error; err != nil {
			return fmt.Errorf("failed to check drafts: %w", err)
		}
		if live > 0 {
			return ErrDraftExists
		}
		if err := tx.Create(&draft).Error; err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// ReplaceDraftText overwrites an unposted draft, used by edit and
// regenerate. Posted drafts are frozen. A nil confidence marks the text as
// written or approved by a person.
func (s *Store) ReplaceDraftText(ctx context.Context, id uint, message string, tokens int, processing float64, confidence *float64, regenerated bool) (*models.ResponseDraft, error) {
	var draft models.ResponseDraft

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&draft, id).Error; err != nil {
			return notFound(err)
		}
		if draft.Posted {
			return ErrDraftPosted
		}

		updates := map[string]interface{}{
			"message":    message,
			"post_error": nil,
			"confidence": confidence,
		}
		if regenerated {
			updates["generated_at"] = s.now()
			updates["tokens_used"] = tokens
			updates["processing_time"] = processing
		}
		if err := tx.Model(&draft).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}
		return tx.First(&draft, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteDraft discards an unposted draft.
func (s *Store) DeleteDraft(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft models.ResponseDraft
		if err := tx.First(&draft, id).Error; err != nil {
			return notFound(err)
		}
		if draft.Posted {
			return ErrDraftPosted
		}
		return tx.Delete(&draft).Error
	})
}

// MarkDraftFailed records why posting a draft failed. The draft stays live.
func (s *Store) MarkDraftFailed(ctx context.Context, id uint, postErr string) error {
	res := s.db.WithContext(ctx).Model(&models.ResponseDraft{}).
		Where("id = ? AND posted = ?", id, false).
		Update("post_error", postErr)
	if res.Error != nil {
		return fmt.Errorf("failed to mark draft failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListDrafts(ctx context.Context, includePosted bool) ([]models.ResponseDraft, error) {
	var drafts []models.ResponseDraft
	q := s.db.WithContext(ctx).Order("generated_at DESC")
	if !includePosted {
		q = q.Where("posted = ?", false)
	}
	if err := q.Find(&drafts).Error; err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// IsNotFound reports whether err means the row is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
