package syncer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
)

type ConversationSummary struct {
	ConversationsFetched int
	ConversationsSaved   int
	ConversationsCreated int
	MessagesSaved        int
	MessagesCreated      int
	MessagesUpdated      int
	Skipped              int
	Failures             []failures.ItemFailure
	Interrupted          bool
}

// SyncConversationsWithMessages mirrors Messenger threads. A thread whose
// messages cannot be fetched is not written at all, so its message count
// never runs ahead of the stored messages.
func (s *Syncer) SyncConversationsWithMessages(ctx context.Context, convLimit, msgLimit int) (*ConversationSummary, error) {
	page, err := withRetry(ctx, s, "fetch conversations", func() (*facebook.Page[facebook.Conversation], error) {
		return s.source.FetchConversations(ctx, convLimit)
	})
	if err != nil {
		return nil, failures.New(failures.Classify(err, failures.KindAdapter), "fetch conversations", err)
	}

	summary := &ConversationSummary{
		ConversationsFetched: len(page.Items),
		Skipped:              page.Skipped,
	}
	total := len(page.Items)
	s.report(0, total, fmt.Sprintf("fetched %d conversations", total))

	for i, conv := range page.Items {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		if err := s.syncConversation(context.WithoutCancel(ctx), conv, msgLimit, summary); err != nil {
			s.logger.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"error":           err,
			}).Warn("Conversation sync failed")
			summary.Failures = append(summary.Failures, failures.NewItemFailure(conv.ID, err, failures.KindStore))
		}
		s.report(i+1, total, fmt.Sprintf("synced conversation %d/%d", i+1, total))
	}

	s.logger.WithFields(logrus.Fields{
		"conversations": summary.ConversationsSaved,
		"messages":      summary.MessagesSaved,
		"failures":      len(summary.Failures),
		"interrupted":   summary.Interrupted,
	}).Info("Conversation sync finished")

	return summary, nil
}

func (s *Syncer) syncConversation(ctx context.Context, conv facebook.Conversation, msgLimit int, summary *ConversationSummary) error {
	var messages []memory.MessageInput
	if msgLimit > 0 {
		page, err := withRetry(ctx, s, "fetch messages", func() (*facebook.Page[facebook.Message], error) {
			return s.source.FetchMessages(ctx, conv.ID, msgLimit)
		})
		if err != nil {
			return failures.New(failures.Classify(err, failures.KindAdapter), "fetch messages", err)
		}
		summary.Skipped += page.Skipped
		messages = make([]memory.MessageInput, 0, len(page.Items))
		for _, m := range page.Items {
			messages = append(messages, toMessageInput(m))
		}
	}

	participants := make([]models.Participant, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		participants = append(participants, models.Participant{ID: p.ID, Name: p.Name, Email: p.Email})
	}

	res, err := s.store.SaveConversationWithMessages(ctx, memory.ConversationInput{
		ConversationID: conv.ID,
		Snippet:        conv.Snippet,
		UpdatedTime:    conv.UpdatedTime.Time,
		MessageCount:   conv.MessageCount,
		Participants:   participants,
		CanReply:       conv.CanReply,
	}, messages)
	if err != nil {
		return failures.New(failures.KindStore, "save conversation", err)
	}

	summary.ConversationsSaved++
	if res.ConversationCreated {
		summary.ConversationsCreated++
	}
	summary.MessagesCreated += res.MessagesCreated
	summary.MessagesUpdated += res.MessagesUpdated
	summary.MessagesSaved += res.MessagesCreated + res.MessagesUpdated
	return nil
}

func toMessageInput(m facebook.Message) memory.MessageInput {
	in := memory.MessageInput{
		MessageID:      m.ID,
		Text:           m.Text,
		CreatedTime:    m.CreatedTime.Time,
		HasAttachments: m.HasAttachments,
	}
	if m.From != nil {
		in.SenderID = m.From.ID
		in.SenderName = m.From.Name
	}
	if len(m.To) > 0 {
		in.RecipientID = m.To[0].ID
		in.RecipientName = m.To[0].Name
	}
	return in
}
