package actions_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lisanmuaddib/pagesync/pkg/actions"
	"github.com/lisanmuaddib/pagesync/pkg/db/dbtest"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
)

var _ = Describe("MessageResponder", func() {
	var (
		ctx       context.Context
		store     *memory.Store
		messenger *fakeMessenger
		evaluator *fakeMessageEvaluator
		responder *actions.MessageResponder
		t0        time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		gdb, err := dbtest.Open(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		store = memory.NewStore(dbtest.QuietLogger(), gdb)
		messenger = &fakeMessenger{}
		evaluator = &fakeMessageEvaluator{}
		responder = actions.NewMessageResponder(store, messenger, evaluator, actions.MessageResponderConfig{
			Logger: dbtest.QuietLogger(),
		})
		t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		_, err = store.SaveConversationWithMessages(ctx, memory.ConversationInput{
			ConversationID: "t1",
			UpdatedTime:    t0.Add(2 * time.Minute),
			MessageCount:   3,
			CanReply:       true,
			Participants:   []models.Participant{{ID: "u1", Name: "Ana"}, {ID: "page1", Name: "Page"}},
		}, []memory.MessageInput{
			{MessageID: "m1", SenderID: "u1", SenderName: "Ana", RecipientID: "page1", Text: "Hi", CreatedTime: t0},
			{MessageID: "m2", SenderID: "page1", SenderName: "Page", RecipientID: "u1", Text: "Hello Ana", CreatedTime: t0.Add(time.Minute)},
			{MessageID: "m3", SenderID: "u1", SenderName: "Ana", RecipientID: "page1", Text: "Are you open today?", CreatedTime: t0.Add(2 * time.Minute)},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("answers the latest inbound message with the thread history", func() {
		result, err := responder.ProcessPendingMessages(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Replied).To(Equal(1))
		Expect(messenger.sent).To(Equal([]sentMessage{{recipient: "u1", text: "Thanks for writing!"}}))

		Expect(evaluator.inputs).To(HaveLen(1))
		in := evaluator.inputs[0]
		Expect(in.MessageID).To(Equal("m3"))
		Expect(in.History).To(HaveLen(2))
		Expect(in.History[0].Text).To(Equal("Hi"))
		Expect(in.History[1].FromPage).To(BeTrue())

		responses, err := store.ListMessageResponses(ctx, "m3")
		Expect(err).NotTo(HaveOccurred())
		Expect(responses).To(HaveLen(1))
		Expect(responses[0].SentAt).NotTo(BeNil())

		again, err := responder.ProcessPendingMessages(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Processed).To(BeZero())
	})

	It("stores the response without sending when asked to", func() {
		resp, err := responder.RespondToMessage(ctx, "m3", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.SentAt).To(BeNil())
		Expect(messenger.sent).To(BeEmpty())
	})

	It("records a send failure and reports it per item", func() {
		messenger.err = errors.New("outside the 24h window")

		result, err := responder.ProcessPendingMessages(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Errors).To(Equal(1))
		Expect(result.Items[0].Kind).To(Equal(failures.KindPost))

		responses, err := store.ListMessageResponses(ctx, "m3")
		Expect(err).NotTo(HaveOccurred())
		Expect(responses[0].SentAt).To(BeNil())
		Expect(responses[0].SendError).To(HaveValue(ContainSubstring("24h")))
	})
	It("retries delivery with the stored response instead of generating again", func() {
		messenger.err = errors.New("temporarily unavailable")
		_, err := responder.ProcessPendingMessages(ctx, 10)
		Expect(err).NotTo(HaveOccurred())

		messenger.err = nil
		result, err := responder.ProcessPendingMessages(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Replied).To(Equal(1))
		Expect(evaluator.inputs).To(HaveLen(1))
		Expect(messenger.sent).To(Equal([]sentMessage{{recipient: "u1", text: "Thanks for writing!"}}))

		responses, err := store.ListMessageResponses(ctx, "m3")
		Expect(err).NotTo(HaveOccurred())
		Expect(responses).To(HaveLen(1))
		Expect(responses[0].SentAt).NotTo(BeNil())
		Expect(responses[0].SendError).To(BeNil())
	})

	It("sends a previously stored draft response", func() {
		draft, err := responder.RespondToMessage(ctx, "m3", false)
		Expect(err).NotTo(HaveOccurred())

		sent, err := responder.RespondToMessage(ctx, "m3", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent.ID).To(Equal(draft.ID))
		Expect(sent.SentAt).NotTo(BeNil())
		Expect(evaluator.inputs).To(HaveLen(1))
	})
})
