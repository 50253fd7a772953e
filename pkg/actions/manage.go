package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
)

// ReplyManually posts a reply written by a person. The comment keeps its
// response state since that only tracks the automatic pipeline.
func (r *CommentResponder) ReplyManually(ctx context.Context, commentID, text string) (*models.CommentReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if _, err := r.store.GetComment(ctx, commentID); err != nil {
		return nil, fmt.Errorf("load comment %s: %w", commentID, err)
	}

	replyID, err := r.publisher.PostReply(ctx, commentID, text)
	if err != nil {
		return nil, failures.New(failures.KindPost, "post manual reply", err)
	}
	reply, err := r.store.RecordManualReply(ctx, commentID, replyID, text, r.author)
	if err != nil {
		return nil, failures.New(failures.KindStore, "record manual reply", err)
	}
	return reply, nil
}

// EditPost changes a post's text on the platform, then locally.
func (r *CommentResponder) EditPost(ctx context.Context, postID, message string) error {
	ok, err := r.publisher.EditPost(ctx, postID, message)
	if err := remoteResult("edit post", ok, err); err != nil {
		return err
	}
	if err := r.store.UpdatePostMessage(ctx, postID, message); err != nil && !errors.Is(err, memory.ErrNotFound) {
		return failures.New(failures.KindStore, "update post", err)
	}
	return nil
}

// DeletePost removes a post on the platform, then locally with its comments.
func (r *CommentResponder) DeletePost(ctx context.Context, postID string) error {
	ok, err := r.publisher.DeletePost(ctx, postID)
	if err := remoteResult("delete post", ok, err); err != nil {
		return err
	}
	if err := r.store.DeletePost(ctx, postID); err != nil && !errors.Is(err, memory.ErrNotFound) {
		return failures.New(failures.KindStore, "delete post", err)
	}
	return nil
}

func (r *CommentResponder) DeleteComment(ctx context.Context, commentID string) error {
	ok, err := r.publisher.DeleteComment(ctx, commentID)
	if err := remoteResult("delete comment", ok, err); err != nil {
		return err
	}
	if err := r.store.DeleteComment(ctx, commentID); err != nil && !errors.Is(err, memory.ErrNotFound) {
		return failures.New(failures.KindStore, "delete comment", err)
	}
	return nil
}

func remoteResult(op string, ok bool, err error) error {
	if err != nil {
		return failures.New(failures.Classify(err, failures.KindAdapter), op, err)
	}
	if !ok {
		return failures.New(failures.KindAdapter, op, ErrRejected)
	}
	return nil
}
