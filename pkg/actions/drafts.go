package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

var (
	ErrAlreadyResponded = errors.New("comment already has an automatic reply")
	ErrDeclined         = errors.New("model declined to respond")
	ErrEmptyText        = errors.New("reply text is empty")
	ErrRejected         = errors.New("platform rejected the request")
)

type DraftOptions struct {
	// Regenerate replaces the text of an existing live draft and allows
	// drafting for a comment that was already answered.
	Regenerate bool
}

// GenerateDraft returns the comment's live draft, creating it with one
// evaluator call when there is none. The comment's response state is
// never changed.
func (r *CommentResponder) GenerateDraft(ctx context.Context, commentID string, opts DraftOptions) (*models.ResponseDraft, error) {
	comment, err := r.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("load comment %s: %w", commentID, err)
	}

	live, err := r.store.GetLiveDraft(ctx, commentID)
	switch {
	case err == nil && !opts.Regenerate:
		return live, nil
	case err == nil:
		return r.RegenerateDraft(ctx, live.ID)
	case !errors.Is(err, memory.ErrNotFound):
		return nil, failures.New(failures.KindStore, "load draft", err)
	}

	if comment.Responded && !opts.Regenerate {
		return nil, ErrAlreadyResponded
	}

	eval, err := r.evaluateForDraft(ctx, *comment)
	if err != nil {
		return nil, err
	}

	draft, err := r.store.CreateDraft(ctx, commentID, eval.Response, eval.TokensUsed,
		eval.ProcessingTime.Seconds(), confidenceOf(eval))
	if errors.Is(err, memory.ErrDraftExists) {
		return r.store.GetLiveDraft(ctx, commentID)
	}
	if err != nil {
		return nil, failures.New(failures.KindStore, "save draft", err)
	}

	r.logger.WithFields(logrus.Fields{
		"comment_id": commentID,
		"draft_id":   draft.ID,
		"tokens":     eval.TokensUsed,
	}).Info("Generated draft")
	return draft, nil
}

// RegenerateDraft replaces a live draft's text with a fresh evaluation.
func (r *CommentResponder) RegenerateDraft(ctx context.Context, draftID uint) (*models.ResponseDraft, error) {
	draft, err := r.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("load draft %d: %w", draftID, err)
	}
	if draft.Posted {
		return nil, memory.ErrDraftPosted
	}
	comment, err := r.store.GetComment(ctx, draft.CommentID)
	if err != nil {
		return nil, fmt.Errorf("load comment %s: %w", draft.CommentID, err)
	}

	eval, err := r.evaluateForDraft(ctx, *comment)
	if err != nil {
		return nil, err
	}
	return r.store.ReplaceDraftText(ctx, draftID, eval.Response, eval.TokensUsed,
		eval.ProcessingTime.Seconds(), confidenceOf(eval), true)
}

// EditDraft replaces the text of an unposted draft by hand.
func (r *CommentResponder) EditDraft(ctx context.Context, draftID uint, text string) (*models.ResponseDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	return r.store.ReplaceDraftText(ctx, draftID, text, 0, 0, nil, false)
}

func (r *CommentResponder) DeleteDraft(ctx context.Context, draftID uint) error {
	return r.store.DeleteDraft(ctx, draftID)
}

// PostDraft publishes a draft. Success freezes the draft and marks the
// comment responded; a failure is kept on the draft so it can be retried.
func (r *CommentResponder) PostDraft(ctx context.Context, draftID uint) (string, error) {
	draft, err := r.store.GetDraft(ctx, draftID)
	if err != nil {
		return "", fmt.Errorf("load draft %d: %w", draftID, err)
	}
	if draft.Posted {
		return "", memory.ErrDraftPosted
	}

	log := r.logger.WithFields(logrus.Fields{
		"comment_id": draft.CommentID,
		"draft_id":   draft.ID,
	})

	replyID, err := r.publisher.PostReply(ctx, draft.CommentID, draft.Message)
	if err != nil {
		log.WithField("error", err).Warn("Posting draft failed")
		if merr := r.store.MarkDraftFailed(ctx, draft.ID, err.Error()); merr != nil {
			log.WithField("error", merr).Error("Failed to record draft error")
		}
		return "", failures.New(failures.KindPost, "post draft", err)
	}

	if err := r.store.RecordAutoReply(ctx, memory.AutoReply{
		CommentID: draft.CommentID,
		ReplyID:   replyID,
		Message:   draft.Message,
		Author:    r.author,
		DraftID:   &draft.ID,
	}); err != nil {
		return replyID, failures.New(failures.KindStore, "record posted draft", err)
	}

	log.WithField("reply_id", replyID).Info("Posted draft")
	return replyID, nil
}

// BatchGenerateResponses drafts replies for unresponded comments that have
// no live draft yet. Nothing is posted.
func (r *CommentResponder) BatchGenerateResponses(ctx context.Context, limit int) (*BatchResult, error) {
	comments, err := r.store.ListCommentsWithoutDraft(ctx, limit)
	if err != nil {
		return nil, failures.New(failures.KindStore, "list comments without draft", err)
	}

	result := &BatchResult{Items: []ItemResult{}}
	for _, c := range comments {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		itemCtx := context.WithoutCancel(ctx)

		eval, err := r.evaluateForDraft(itemCtx, c)
		if errors.Is(err, ErrDeclined) {
			result.add(skipped(c.CommentID, ErrDeclined.Error()))
			continue
		}
		if err != nil {
			result.add(failed(c.CommentID, err, failures.KindEvaluation))
			continue
		}
		draft, err := r.store.CreateDraft(itemCtx, c.CommentID, eval.Response, eval.TokensUsed,
			eval.ProcessingTime.Seconds(), confidenceOf(eval))
		if err != nil {
			result.add(failed(c.CommentID, err, failures.KindStore))
			continue
		}
		result.add(ItemResult{ID: c.CommentID, Status: StatusDrafted, DraftID: draft.ID})
	}

	r.logger.WithFields(logrus.Fields{
		"drafted": result.Drafted,
		"errors":  result.Errors,
	}).Info("Batch draft generation finished")
	return result, nil
}

func (r *CommentResponder) evaluateForDraft(ctx context.Context, c models.Comment) (*thoughts.Evaluation, error) {
	eval, err := r.evaluator.Evaluate(ctx, r.commentInput(ctx, c))
	if err != nil {
		return nil, err
	}
	if eval.Response == "" {
		return nil, ErrDeclined
	}
	return eval, nil
}

func confidenceOf(eval *thoughts.Evaluation) *float64 {
	if eval.Analysis == nil {
		return nil
	}
	c := eval.Analysis.Confidence
	return &c
}
