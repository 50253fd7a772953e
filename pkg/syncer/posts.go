package syncer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
)

type PostSummary struct {
	PostsFetched    int
	PostsSaved      int
	PostsCreated    int
	CommentsSaved   int
	CommentsCreated int
	CommentsUpdated int
	// Skipped counts remote items that could not be decoded.
	Skipped     int
	Failures    []failures.ItemFailure
	Interrupted bool
}

// SyncPostsWithComments mirrors up to postsLimit recent posts and up to
// commentsPerPost top-level comments of each. Only a failure to fetch the
// post list is returned as an error.
func (s *Syncer) SyncPostsWithComments(ctx context.Context, postsLimit, commentsPerPost int) (*PostSummary, error) {
	page, err := withRetry(ctx, s, "fetch posts", func() (*facebook.Page[facebook.Post], error) {
		return s.source.FetchPosts(ctx, postsLimit)
	})
	if err != nil {
		return nil, failures.New(failures.Classify(err, failures.KindAdapter), "fetch posts", err)
	}

	summary := &PostSummary{
		PostsFetched: len(page.Items),
		Skipped:      page.Skipped,
	}
	total := len(page.Items)
	s.report(0, total, fmt.Sprintf("fetched %d posts", total))

	for i, post := range page.Items {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		logger := s.logger.WithField("post_id", post.ID)
		if err := s.syncPost(context.WithoutCancel(ctx), post, commentsPerPost, summary); err != nil {
			logger.WithField("error", err).Warn("Post sync failed")
			summary.Failures = append(summary.Failures, failures.NewItemFailure(post.ID, err, failures.KindStore))
		}
		s.report(i+1, total, fmt.Sprintf("synced post %d/%d", i+1, total))
	}

	s.logger.WithFields(logrus.Fields{
		"posts":       summary.PostsSaved,
		"comments":    summary.CommentsSaved,
		"failures":    len(summary.Failures),
		"interrupted": summary.Interrupted,
	}).Info("Post sync finished")

	return summary, nil
}

func (s *Syncer) syncPost(ctx context.Context, post facebook.Post, commentsPerPost int, summary *PostSummary) error {
	var comments []memory.CommentInput
	if commentsPerPost > 0 {
		page, err := withRetry(ctx, s, "fetch comments", func() (*facebook.Page[facebook.Comment], error) {
			return s.source.FetchComments(ctx, post.ID, commentsPerPost)
		})
		if err != nil {
			// The post itself is still saved; its comments are retried next run.
			summary.Failures = append(summary.Failures, failures.NewItemFailure(post.ID, err, failures.KindAdapter))
		} else {
			summary.Skipped += page.Skipped
			comments = make([]memory.CommentInput, 0, len(page.Items))
			for _, c := range page.Items {
				comments = append(comments, memory.CommentInput{
					CommentID:   c.ID,
					Message:     c.Message,
					UserName:    c.AuthorName(),
					UserID:      c.AuthorID(),
					CreatedTime: c.CreatedTime.Time,
				})
			}
		}
	}

	res, err := s.store.SavePostWithComments(ctx, memory.PostInput{
		PostID:      post.ID,
		PageID:      s.source.PageID(),
		Message:     post.Message,
		CreatedTime: post.CreatedTime.Time,
		UpdatedTime: post.UpdatedTime.Time,
	}, comments)
	if err != nil {
		return failures.New(failures.KindStore, "save post", err)
	}

	summary.PostsSaved++
	if res.PostCreated {
		summary.PostsCreated++
	}
	summary.CommentsCreated += res.CommentsCreated
	summary.CommentsUpdated += res.CommentsUpdated
	summary.CommentsSaved += res.CommentsCreated + res.CommentsUpdated
	return nil
}
