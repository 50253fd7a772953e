package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

const defaultHistoryLength = 10

type MessageResponderConfig struct {
	// HistoryLength is how many earlier messages of the thread the
	// evaluator sees.
	HistoryLength int
	Logger        *logrus.Logger
}

type MessageResponder struct {
	store     *memory.Store
	messenger Messenger
	evaluator MessageEvaluator
	history   int
	logger    *logrus.Logger
}

func NewMessageResponder(store *memory.Store, messenger Messenger, evaluator MessageEvaluator, config MessageResponderConfig) *MessageResponder {
	if config.HistoryLength <= 0 {
		config.HistoryLength = defaultHistoryLength
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return &MessageResponder{
		store:     store,
		messenger: messenger,
		evaluator: evaluator,
		history:   config.HistoryLength,
		logger:    config.Logger,
	}
}

// RespondToMessage generates a response for one inbound message and, when
// send is set, delivers it to the sender. The generated text is stored
// either way. A stored response that was never delivered is reused instead
// of asking the model again.
func (r *MessageResponder) RespondToMessage(ctx context.Context, messageID string, send bool) (*models.MessageResponse, error) {
	msg, err := r.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("load message %s: %w", messageID, err)
	}
	log := r.logger.WithFields(logrus.Fields{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.MessageID,
	})

	resp, err := r.store.GetUnsentResponse(ctx, msg.MessageID)
	switch {
	case err == nil:
		log.WithField("response_id", resp.ID).Debug("Reusing undelivered response")
	case errors.Is(err, memory.ErrNotFound):
		if resp, err = r.generate(ctx, msg); err != nil {
			return nil, err
		}
	default:
		return nil, failures.New(failures.KindStore, "load unsent response", err)
	}

	if !send {
		return resp, nil
	}

	ok, err := r.messenger.SendMessage(ctx, msg.SenderID, resp.ResponseText)
	if err == nil && !ok {
		err = ErrRejected
	}
	if err != nil {
		log.WithField("error", err).Warn("Sending message response failed")
		if merr := r.store.MarkResponseFailed(ctx, resp.ID, err.Error()); merr != nil {
			log.WithField("error", merr).Error("Failed to record send error")
		}
		return resp, failures.New(failures.KindPost, "send message", err)
	}
	if err := r.store.MarkResponseSent(ctx, resp.ID); err != nil {
		return resp, failures.New(failures.KindStore, "mark response sent", err)
	}

	sentAt := time.Now().UTC()
	resp.SentAt, resp.SendError = &sentAt, nil

	log.Info("Sent message response")
	return resp, nil
}

func (r *MessageResponder) generate(ctx context.Context, msg *models.Message) (*models.MessageResponse, error) {
	history, err := r.store.ConversationHistory(ctx, msg.ConversationID, r.history+1)
	if err != nil {
		return nil, failures.New(failures.KindStore, "load history", err)
	}

	eval, err := r.evaluator.Evaluate(ctx, thoughts.MessageInput{
		MessageID: msg.MessageID,
		Sender:    msg.SenderName,
		Message:   msg.MessageText,
		History:   r.turns(history, msg.MessageID),
	})
	if err != nil {
		return nil, err
	}

	resp, err := r.store.SaveMessageResponse(ctx, msg.MessageID, eval.Response, eval.TokensUsed, eval.ProcessingTime.Seconds())
	if err != nil {
		return nil, failures.New(failures.KindStore, "save message response", err)
	}
	return resp, nil
}

// ProcessPendingMessages answers inbound messages that are the latest in
// their thread and have no sent response.
func (r *MessageResponder) ProcessPendingMessages(ctx context.Context, limit int) (*BatchResult, error) {
	pending, err := r.store.ListMessagesNeedingResponse(ctx, r.messenger.PageID(), limit)
	if err != nil {
		return nil, failures.New(failures.KindStore, "list pending messages", err)
	}

	result := &BatchResult{Items: []ItemResult{}}
	for _, m := range pending {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		if m.SenderID == "" {
			result.add(skipped(m.MessageID, "sender unknown"))
			continue
		}
		if _, err := r.RespondToMessage(context.WithoutCancel(ctx), m.MessageID, true); err != nil {
			result.add(failed(m.MessageID, err, failures.KindEvaluation))
			continue
		}
		result.add(ItemResult{ID: m.MessageID, Status: StatusReplied})
	}

	r.logger.WithFields(logrus.Fields{
		"replied": result.Replied,
		"errors":  result.Errors,
	}).Info("Processed pending messages")
	return result, nil
}

func (r *MessageResponder) turns(history []models.Message, current string) []thoughts.Turn {
	pageID := r.messenger.PageID()
	turns := make([]thoughts.Turn, 0, len(history))
	for _, m := range history {
		if m.MessageID == current {
			continue
		}
		turns = append(turns, thoughts.Turn{
			FromPage: m.SenderID == pageID,
			Sender:   m.SenderName,
			Text:     m.MessageText,
		})
	}
	if len(turns) > r.history {
		turns = turns[len(turns)-r.history:]
	}
	return turns
}
