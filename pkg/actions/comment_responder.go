package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/analysis"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

const defaultReplyAuthor = "Page"

type ResponderConfig struct {
	// Author is stored on replies the page posts.
	Author string
	Logger *logrus.Logger
}

// CommentResponder turns unresponded comments into posted replies. A
// comment is only marked responded after the platform confirmed the reply.
type CommentResponder struct {
	store     *memory.Store
	publisher Publisher
	evaluator CommentEvaluator
	author    string
	logger    *logrus.Logger
	now       func() time.Time
}

func NewCommentResponder(store *memory.Store, publisher Publisher, evaluator CommentEvaluator, config ResponderConfig) *CommentResponder {
	if config.Author == "" {
		config.Author = defaultReplyAuthor
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return &CommentResponder{
		store:     store,
		publisher: publisher,
		evaluator: evaluator,
		author:    config.Author,
		logger:    config.Logger,
		now:       time.Now,
	}
}

// ProcessPending answers up to limit unresponded comments, newest first.
// Comments the settings filter out are reported as skipped and do not count
// towards limit, so older comments are still reached behind them. Comments
// with a draft held for review are not picked up at all. Failures are
// recorded per item and never stop the batch.
func (r *CommentResponder) ProcessPending(ctx context.Context, limit int) (*BatchResult, error) {
	settings, err := r.store.GetSettings(ctx)
	if err != nil {
		return nil, failures.New(failures.KindStore, "load settings", err)
	}
	repliedToday, err := r.store.CountAutoRepliesSince(ctx, startOfDay(r.now()))
	if err != nil {
		return nil, failures.New(failures.KindStore, "count replies", err)
	}

	result := &BatchResult{Items: []ItemResult{}}
	attempted := 0
	var cursor *models.Comment

pages:
	for {
		comments, err := r.store.ListAutoReplyCandidates(ctx, settings.MinConfidence, cursor, limit)
		if err != nil {
			if result.Processed == 0 {
				return nil, failures.New(failures.KindStore, "list unresponded comments", err)
			}
			r.logger.WithField("error", err).Error("Failed to load more comments")
			break
		}

		for i, c := range comments {
			if ctx.Err() != nil {
				result.Interrupted = true
				break pages
			}
			if reason := skipReason(settings, c); reason != "" {
				r.logger.WithFields(logrus.Fields{"comment_id": c.CommentID, "reason": reason}).Debug("Skipping comment")
				result.add(skipped(c.CommentID, reason))
				continue
			}
			if settings.MaxDailyReplies > 0 && repliedToday >= settings.MaxDailyReplies {
				for _, rest := range comments[i:] {
					result.add(skipped(rest.CommentID, "daily reply limit reached"))
				}
				break pages
			}

			item := r.respond(context.WithoutCancel(ctx), c, settings)
			if item.Status == StatusReplied {
				repliedToday++
			}
			result.add(item)

			attempted++
			if limit > 0 && attempted >= limit {
				break pages
			}
		}

		if limit <= 0 || len(comments) < limit {
			break
		}
		cursor = &comments[len(comments)-1]
	}

	r.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"replied":   result.Replied,
		"drafted":   result.Drafted,
		"skipped":   result.Skipped,
		"errors":    result.Errors,
	}).Info("Processed pending comments")

	return result, nil
}

// respond evaluates (or reuses a draft for) one comment that passed the
// settings filters and delivers the reply.
func (r *CommentResponder) respond(ctx context.Context, c models.Comment, settings *models.AutoReplySettings) ItemResult {
	log := r.logger.WithField("comment_id", c.CommentID)

	reply := memory.AutoReply{CommentID: c.CommentID, Author: r.author}

	draft, err := r.store.GetLiveDraft(ctx, c.CommentID)
	switch {
	case err == nil:
		if draft.Confidence != nil && *draft.Confidence < settings.MinConfidence {
			return skipped(c.CommentID, "draft awaiting review")
		}
		reply.Message = draft.Message
		reply.DraftID = &draft.ID
	case errors.Is(err, memory.ErrNotFound):
		eval, err := r.evaluator.Evaluate(ctx, r.commentInput(ctx, c))
		if err != nil {
			log.WithField("error", err).Warn("Evaluation failed")
			return failed(c.CommentID, err, failures.KindEvaluation)
		}
		if eval.Response == "" {
			return skipped(c.CommentID, "model declined to respond")
		}
		if eval.Analysis != nil && eval.Analysis.Confidence < settings.MinConfidence {
			// Held for a person to review; the next run will not re-evaluate.
			held, err := r.store.CreateDraft(ctx, c.CommentID, eval.Response, eval.TokensUsed,
				eval.ProcessingTime.Seconds(), &eval.Analysis.Confidence)
			if err != nil {
				return failed(c.CommentID, err, failures.KindStore)
			}
			return ItemResult{
				ID:      c.CommentID,
				Status:  StatusDrafted,
				DraftID: held.ID,
				Message: fmt.Sprintf("confidence %.2f below %.2f", eval.Analysis.Confidence, settings.MinConfidence),
			}
		}
		reply.Message = eval.Response
		reply.Evaluation = &eval.Raw
	default:
		return failed(c.CommentID, err, failures.KindStore)
	}

	return r.deliver(ctx, reply)
}

// deliver posts the reply and records the outcome. Local state only
// reports responded once the platform returned an id.
func (r *CommentResponder) deliver(ctx context.Context, reply memory.AutoReply) ItemResult {
	log := r.logger.WithField("comment_id", reply.CommentID)

	replyID, err := r.publisher.PostReply(ctx, reply.CommentID, reply.Message)
	if err != nil {
		postErr := failures.New(failures.KindPost, "post reply", err)
		log.WithField("error", err).Warn("Posting reply failed")
		if _, rerr := r.store.RecordFailedAutoReply(ctx, reply.CommentID, reply.Message, reply.Author, err.Error()); rerr != nil {
			log.WithField("error", rerr).Error("Failed to record failed reply")
		}
		if reply.DraftID != nil {
			if derr := r.store.MarkDraftFailed(ctx, *reply.DraftID, err.Error()); derr != nil {
				log.WithField("error", derr).Error("Failed to mark draft")
			}
		}
		return failed(reply.CommentID, postErr, failures.KindPost)
	}

	reply.ReplyID = replyID
	if err := r.store.RecordAutoReply(ctx, reply); err != nil {
		// The reply is live on the platform; only the local record is missing.
		log.WithFields(logrus.Fields{"reply_id": replyID, "error": err}).Error("Failed to record posted reply")
		return failed(reply.CommentID, failures.New(failures.KindStore, "record reply", err), failures.KindStore)
	}

	return ItemResult{ID: reply.CommentID, Status: StatusReplied, ReplyID: replyID}
}

func (r *CommentResponder) commentInput(ctx context.Context, c models.Comment) thoughts.CommentInput {
	in := thoughts.CommentInput{
		CommentID:  c.CommentID,
		Message:    c.Message,
		AuthorName: c.UserName,
		Sentiment:  string(c.SentimentCategory),
	}
	if post, err := r.store.GetPost(ctx, c.PostID); err == nil {
		in.PostMessage = post.Text()
	}
	return in
}

// skipReason applies the settings filters. An empty result means the
// comment may be answered.
func skipReason(settings *models.AutoReplySettings, c models.Comment) string {
	lower := strings.ToLower(c.Message)
	for _, kw := range settings.ExcludedKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return fmt.Sprintf("contains excluded keyword %q", kw)
		}
	}

	category := c.SentimentCategory
	if category == "" {
		category = analysis.AnalyzeSentiment(c.Message).Category
	}
	switch {
	case analysis.IsQuestion(c.Message):
		if !settings.RespondToQuestions {
			return "questions are disabled"
		}
	case category == models.SentimentNegative:
		if !settings.RespondToNegative {
			return "negative comments are disabled"
		}
	case category == models.SentimentPositive:
		if !settings.RespondToCompliments {
			return "compliments are disabled"
		}
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
