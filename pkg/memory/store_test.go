package memory_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lisanmuaddib/pagesync/pkg/db/dbtest"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
)

func text(s string) *string {
	return &s
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *memory.Store
		t0    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		gdb, err := dbtest.Open(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		store = memory.NewStore(dbtest.QuietLogger(), gdb)
		t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	})

	savePost := func(comments ...memory.CommentInput) *memory.PostSaveResult {
		res, err := store.SavePostWithComments(ctx, memory.PostInput{
			PostID:      "p1",
			PageID:      "page1",
			Message:     text("Our new pizza menu is live"),
			CreatedTime: t0,
			UpdatedTime: t0,
		}, comments)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("SavePostWithComments", func() {
		It("is idempotent", func() {
			c1 := memory.CommentInput{CommentID: "c1", Message: "I love it!", UserName: "Ana", CreatedTime: t0}
			c2 := memory.CommentInput{CommentID: "c2", Message: "Terrible service", UserName: "Ben", CreatedTime: t0.Add(time.Minute)}

			first := savePost(c1, c2)
			Expect(first.PostCreated).To(BeTrue())
			Expect(first.CommentsCreated).To(Equal(2))

			second := savePost(c1, c2)
			Expect(second.PostCreated).To(BeFalse())
			Expect(second.CommentsCreated).To(BeZero())
			Expect(second.CommentsUpdated).To(Equal(2))

			posts, err := store.ListPosts(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))
			comments, err := store.ListCommentsForPost(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(2))
		})

		It("computes derived fields on insert", func() {
			savePost(memory.CommentInput{CommentID: "c1", Message: "Great pizza, love the crust!", CreatedTime: t0})

			c, err := store.GetComment(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SentimentCategory).To(Equal(models.SentimentPositive))
			Expect(c.SentimentScore).NotTo(BeNil())
			Expect(c.Keywords).To(ContainElement("pizza"))
			Expect(c.Responded).To(BeFalse())

			p, err := store.GetPost(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.AvgSentiment).NotTo(BeNil())
			Expect(*p.AvgSentiment).To(BeNumerically("~", *c.SentimentScore, 1e-9))
			Expect(p.TrendingTopics).To(ContainElement("pizza"))
		})

		It("keeps local state when remote text changes", func() {
			savePost(memory.CommentInput{CommentID: "c1", Message: "Great pizza!", CreatedTime: t0})
			Expect(store.RecordAutoReply(ctx, memory.AutoReply{
				CommentID: "c1", ReplyID: "r1", Message: "Thank you!", Author: "Shop",
			})).To(Succeed())
			before, err := store.GetComment(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())

			savePost(memory.CommentInput{CommentID: "c1", Message: "Great pizza! (edited)", CreatedTime: t0})

			after, err := store.GetComment(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Message).To(Equal("Great pizza! (edited)"))
			Expect(after.Responded).To(BeTrue())
			Expect(*after.AIResponse).To(Equal("Thank you!"))
			Expect(*after.SentimentScore).To(Equal(*before.SentimentScore))
			Expect(after.SentimentCategory).To(Equal(before.SentimentCategory))
		})

		It("stores posts without a message", func() {
			_, err := store.SavePostWithComments(ctx, memory.PostInput{PostID: "p2", PageID: "page1", CreatedTime: t0}, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := store.GetPost(ctx, "p2")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Message).To(BeNil())
			Expect(p.AvgSentiment).To(BeNil())
		})
	})

	Describe("replies", func() {
		BeforeEach(func() {
			savePost(memory.CommentInput{CommentID: "c1", Message: "When do you open?", CreatedTime: t0})
		})

		It("turns a failed attempt into the successful reply", func() {
			failed, err := store.RecordFailedAutoReply(ctx, "c1", "We open at 9", "Shop", "rate limited")
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.HasPrefix(failed.ReplyID, models.ErrorReplyPrefix)).To(BeTrue())

			again, err := store.RecordFailedAutoReply(ctx, "c1", "We open at 9am", "Shop", "timeout")
			Expect(err).NotTo(HaveOccurred())
			Expect(again.ID).To(Equal(failed.ID))

			c, err := store.GetComment(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Responded).To(BeFalse())

			Expect(store.RecordAutoReply(ctx, memory.AutoReply{CommentID: "c1", ReplyID: "r1", Message: "We open at 9am", Author: "Shop"})).To(Succeed())

			replies, err := store.ListReplies(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies).To(HaveLen(1))
			Expect(replies[0].ReplyID).To(Equal("r1"))
			Expect(replies[0].Posted).To(BeTrue())
			Expect(replies[0].PostError).To(BeNil())

			n, err := store.CountAutoRepliesSince(ctx, t0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("does not mark manual replies as responded", func() {
			_, err := store.RecordManualReply(ctx, "c1", "r9", "See you soon", "Owner")
			Expect(err).NotTo(HaveOccurred())

			c, err := store.GetComment(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Responded).To(BeFalse())

			n, err := store.CountAutoRepliesSince(ctx, t0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("drafts", func() {
		BeforeEach(func() {
			savePost(
				memory.CommentInput{CommentID: "c1", Message: "Nice!", CreatedTime: t0},
				memory.CommentInput{CommentID: "c2", Message: "Open late?", CreatedTime: t0.Add(time.Hour)},
			)
		})

		It("keeps at most one live draft per comment", func() {
			d, err := store.CreateDraft(ctx, "c1", "Thanks!", 20, 0.4, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = store.CreateDraft(ctx, "c1", "Thanks again!", 20, 0.4, nil)
			Expect(err).To(MatchError(memory.ErrDraftExists))

			live, err := store.GetLiveDraft(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(live.ID).To(Equal(d.ID))

			without, err := store.ListCommentsWithoutDraft(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(without).To(HaveLen(1))
			Expect(without[0].CommentID).To(Equal("c2"))
		})

		It("freezes posted drafts", func() {
			d, err := store.CreateDraft(ctx, "c1", "Thanks!", 20, 0.4, nil)
			Expect(err).NotTo(HaveOccurred())

			edited, err := store.ReplaceDraftText(ctx, d.ID, "Thank you!", 0, 0, nil, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(edited.Message).To(Equal("Thank you!"))
			Expect(edited.TokensUsed).To(Equal(20))

			Expect(store.RecordAutoReply(ctx, memory.AutoReply{CommentID: "c1", ReplyID: "r1", Message: edited.Message, DraftID: &d.ID})).To(Succeed())

			posted, err := store.GetDraft(ctx, d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(posted.Posted).To(BeTrue())
			Expect(*posted.PostedID).To(Equal("r1"))

			_, err = store.ReplaceDraftText(ctx, d.ID, "changed", 0, 0, nil, false)
			Expect(err).To(MatchError(memory.ErrDraftPosted))
			Expect(store.DeleteDraft(ctx, d.ID)).To(MatchError(memory.ErrDraftPosted))

			_, err = store.GetLiveDraft(ctx, "c1")
			Expect(memory.IsNotFound(err)).To(BeTrue())
		})

		It("deletes a comment with its drafts", func() {
			_, err := store.CreateDraft(ctx, "c1", "Thanks!", 0, 0, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.DeleteComment(ctx, "c1")).To(Succeed())
			drafts, err := store.ListDrafts(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(drafts).To(BeEmpty())
			Expect(store.DeleteComment(ctx, "c1")).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("settings", func() {
		It("creates defaults lazily and persists updates", func() {
			s, err := store.GetSettings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Enabled).To(BeFalse())
			Expect(s.MinConfidence).To(Equal(0.7))
			Expect(s.MaxDailyReplies).To(Equal(50))
			Expect(s.RespondToQuestions).To(BeTrue())

			s.Enabled = true
			s.ExcludedKeywords = []string{"refund"}
			Expect(store.UpdateSettings(ctx, s)).To(Succeed())

			again, err := store.GetSettings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Enabled).To(BeTrue())
			Expect(again.ExcludedKeywords).To(Equal([]string{"refund"}))
		})

		It("rejects an out of range confidence", func() {
			s := models.DefaultAutoReplySettings()
			s.MinConfidence = 1.5
			Expect(store.UpdateSettings(ctx, &s)).NotTo(Succeed())
		})
	})

	Describe("conversations", func() {
		It("lists the latest inbound message per repliable thread", func() {
			_, err := store.SaveConversationWithMessages(ctx, memory.ConversationInput{
				ConversationID: "t1", CanReply: true, UpdatedTime: t0,
				Participants: []models.Participant{{ID: "u1", Name: "Ana"}, {ID: "page1", Name: "Shop"}},
			}, []memory.MessageInput{
				{MessageID: "m1", SenderID: "u1", Text: "hi", CreatedTime: t0},
				{MessageID: "m2", SenderID: "page1", Text: "hello", CreatedTime: t0.Add(time.Minute)},
				{MessageID: "m3", SenderID: "u1", Text: "do you deliver?", CreatedTime: t0.Add(2 * time.Minute)},
			})
			Expect(err).NotTo(HaveOccurred())

			res, err := store.SaveConversationWithMessages(ctx, memory.ConversationInput{
				ConversationID: "t2", CanReply: true, UpdatedTime: t0,
			}, []memory.MessageInput{
				{MessageID: "m4", SenderID: "u2", Text: "thanks", CreatedTime: t0},
				{MessageID: "m5", SenderID: "page1", Text: "welcome", CreatedTime: t0.Add(time.Minute)},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.MessagesCreated).To(Equal(2))

			pending, err := store.ListMessagesNeedingResponse(ctx, "page1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].MessageID).To(Equal("m3"))

			resp, err := store.SaveMessageResponse(ctx, "m3", "Yes we do", 12, 0.3)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.MarkResponseSent(ctx, resp.ID)).To(Succeed())

			pending, err = store.ListMessagesNeedingResponse(ctx, "page1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(BeEmpty())

			history, err := store.ConversationHistory(ctx, "t1", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].MessageID).To(Equal("m2"))
			Expect(history[1].MessageID).To(Equal("m3"))

			conv, err := store.GetConversation(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(conv.Participants).To(HaveLen(2))
		})
	})
})
