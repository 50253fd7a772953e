package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lisanmuaddib/pagesync/pkg/analysis"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

// PostInput carries the remote-sourced fields of a post.
type PostInput struct {
	PostID      string
	PageID      string
	Message     *string
	CreatedTime time.Time
	UpdatedTime time.Time
}

// CommentInput carries the remote-sourced fields of a comment.
type CommentInput struct {
	CommentID   string
	Message     string
	UserName    string
	UserID      string
	CreatedTime time.Time
}

type PostSaveResult struct {
	PostCreated     bool
	CommentsCreated int
	CommentsUpdated int
}

var (
	postRemoteColumns    = []string{"page_id", "message", "created_time", "updated_time", "synced_at"}
	commentRemoteColumns = []string{"message", "user_name", "user_id", "created_time", "synced_at"}
)

// SavePostWithComments merges one post and its comments. Existing rows only
// get their remote fields overwritten; sentiment, keywords and response
// state are computed once on insert and kept afterwards. The post's average
// sentiment is recomputed from the stored comments.
func (s *Store) SavePostWithComments(ctx context.Context, post PostInput, comments []CommentInput) (*PostSaveResult, error) {
	result := &PostSaveResult{}
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Post{}).Where("post_id = ?", post.PostID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check post: %w", err)
		}
		result.PostCreated = existing == 0

		row := models.Post{
			PostID:      post.PostID,
			PageID:      post.PageID,
			Message:     post.Message,
			CreatedTime: post.CreatedTime.UTC(),
			UpdatedTime: post.UpdatedTime.UTC(),
			SyncedAt:    now,
		}
		if result.PostCreated && post.Message != nil {
			row.TrendingTopics = analysis.ExtractKeywords(*post.Message, analysis.DefaultKeywordCount)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns(postRemoteColumns),
		}).Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save post: %w", err)
		}

		if len(comments) > 0 {
			created, updated, err := s.upsertComments(tx, post.PostID, comments, now)
			if err != nil {
				return err
			}
			result.CommentsCreated, result.CommentsUpdated = created, updated
		}

		return recomputePostSentiment(tx, post.PostID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"post_id":          post.PostID,
		"post_created":     result.PostCreated,
		"comments_created": result.CommentsCreated,
		"comments_updated": result.CommentsUpdated,
	}).Debug("Saved post with comments")

	return result, nil
}

func (s *Store) upsertComments(tx *gorm.DB, postID string, comments []CommentInput, now time.Time) (int, int, error) {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentID)
	}

	var known []string
	if err := tx.Model(&models.Comment{}).Where("comment_id IN ?", ids).Pluck("comment_id", &known).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to load known comments: %w", err)
	}
	exists := make(map[string]bool, len(known))
	for _, id := range known {
		exists[id] = true
	}

	var created, updated int
	rows := make([]models.Comment, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, c := range comments {
		if seen[c.CommentID] {
			continue
		}
		seen[c.CommentID] = true

		row := models.Comment{
			CommentID:   c.CommentID,
			PostID:      postID,
			Message:     c.Message,
			UserName:    c.UserName,
			UserID:      c.UserID,
			CreatedTime: c.CreatedTime.UTC(),
			SyncedAt:    now,
		}
		if exists[c.CommentID] {
			updated++
		} else {
			sentiment := analysis.AnalyzeSentiment(c.Message)
			row.SentimentScore = &sentiment.Score
			row.SentimentCategory = sentiment.Category
			row.Keywords = analysis.ExtractKeywords(c.Message, analysis.DefaultKeywordCount)
			created++
		}
		rows = append(rows, row)
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "comment_id"}},
		DoUpdates: clause.AssignmentColumns(commentRemoteColumns),
	}).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to save comments: %w", err)
	}

	return created, updated, nil
}

func recomputePostSentiment(tx *gorm.DB, postID string) error {
	var avg struct {
		Value *float64
	}
	if err := tx.Model(&models.Comment{}).
		Select("AVG(sentiment_score) AS value").
		Where("post_id = ? AND sentiment_score IS NOT NULL", postID).
		Scan(&avg).Error; err != nil {
		return fmt.Errorf("failed to average comment sentiment: %w", err)
	}

	if err := tx.Model(&models.Post{}).Where("post_id = ?", postID).
		Update("avg_sentiment", avg.Value).Error; err != nil {
		return fmt.Errorf("failed to update post sentiment: %w", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// ListPosts returns the most recent posts first.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := s.db.WithContext(ctx).Order("created_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *Store) UpdatePostMessage(ctx context.Context, postID, message string) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("post_id = ?", postID).
		Updates(map[string]interface{}{
			"message":      message,
			"updated_time": s.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post and everything hanging off it.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("comment_id").Where("post_id = ?", postID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.ResponseDraft{}).Error; err != nil {
			return fmt.Errorf("failed to delete drafts: %w", err)
		}
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentReply{}).Error; err != nil {
			return fmt.Errorf("failed to delete replies: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		res := tx.Where("post_id = ?", postID).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// TrendingTopics aggregates keywords over the comments of the latest posts.
func (s *Store) TrendingTopics(ctx context.Context, recentPosts, n int) ([]string, error) {
	postIDs := s.db.WithContext(ctx).Model(&models.Post{}).Select("post_id").
		Order("created_time DESC").Limit(recentPosts)

	var texts []string
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id IN (?)", postIDs).
		Pluck("message", &texts).Error; err != nil {
		return nil, fmt.Errorf("failed to load comment texts: %w", err)
	}
	return analysis.TrendingTopics(texts, n), nil
}
