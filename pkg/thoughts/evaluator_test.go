package thoughts_test

import (
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/ledger"
	"github.com/lisanmuaddib/pagesync/pkg/llm"
	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

type stubLLM struct {
	text    string
	err     error
	prompts []string
	options []llm.Options
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	s.prompts = append(s.prompts, prompt)
	s.options = append(s.options, llm.NewOptions(llm.Options{}, opts...))
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{Text: s.text, Model: "stub-model", TotalTokens: 42}, nil
}

type stubRecorder struct {
	entries []ledger.Entry
}

func (r *stubRecorder) Record(ctx context.Context, e ledger.Entry) {
	r.entries = append(r.entries, e)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var _ = Describe("CommentEvaluator", func() {
	var (
		model     *stubLLM
		recorder  *stubRecorder
		evaluator *thoughts.CommentEvaluator
		input     thoughts.CommentInput
	)

	BeforeEach(func() {
		model = &stubLLM{}
		recorder = &stubRecorder{}
		evaluator = thoughts.NewCommentEvaluator(model, recorder, thoughts.CommentEvaluatorConfig{
			SystemPrompt: "be kind",
			Logger:       quietLogger(),
		})
		input = thoughts.CommentInput{
			CommentID:   "c1",
			Message:     "When do you open?",
			AuthorName:  "Ana",
			PostMessage: "New store hours",
		}
	})

	It("parses a structured answer and records one successful entry", func() {
		model.text = "```json\n{\"category\":\"question\",\"sentiment\":\"neutral\",\"confidence\":0.9,\"should_respond\":true,\"response\":\"We open at 9.\"}\n```"

		eval, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Response).To(Equal("We open at 9."))
		Expect(eval.Analysis).NotTo(BeNil())
		Expect(eval.Analysis.Category).To(Equal(thoughts.CategoryQuestion))
		Expect(eval.Analysis.Confidence).To(BeNumerically("~", 0.9))
		Expect(eval.TokensUsed).To(Equal(42))
		Expect(eval.Raw).To(ContainSubstring(`"category":"question"`))

		Expect(recorder.entries).To(HaveLen(1))
		Expect(recorder.entries[0].Success).To(BeTrue())
		Expect(recorder.entries[0].Endpoint).To(Equal(ledger.EndpointCommentEvaluation))
		Expect(recorder.entries[0].TargetID).To(Equal("c1"))
		Expect(recorder.entries[0].TokensUsed).To(Equal(42))
	})

	It("passes the comment and generation limits to the model", func() {
		model.text = "Thanks!"

		_, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(model.prompts[0]).To(ContainSubstring("When do you open?"))
		Expect(model.prompts[0]).To(ContainSubstring("New store hours"))
		Expect(model.options[0].MaxTokens).To(Equal(150))
		Expect(model.options[0].Temperature).To(BeNumerically("~", 0.7))
		Expect(model.options[0].SystemPrompt).To(Equal("be kind"))
	})

	It("falls back to plain text after a reply marker", func() {
		model.text = "Sure, here it is.\nReply: \"We open at nine every day.\""

		eval, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Response).To(Equal("We open at nine every day."))
		Expect(eval.Analysis).To(BeNil())
		Expect(eval.Raw).To(ContainSubstring("We open at nine every day."))
	})

	It("keeps reply text intact when casing changes byte widths", func() {
		model.text = "İİİİ Response: Merhaba, evet açığız."

		eval, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Response).To(Equal("Merhaba, evet açığız."))
	})

	It("matches markers in any case", func() {
		model.text = "ȺȺ REPLY: Open at nine."

		eval, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Response).To(Equal("Open at nine."))
	})

	It("reports a parse failure when nothing follows a trailing marker", func() {
		model.text = strings.Repeat("Ⱥ", 10) + " Reply:"

		var err error
		Expect(func() {
			_, err = evaluator.Evaluate(context.Background(), input)
		}).NotTo(Panic())
		Expect(failures.Classify(err, failures.KindAdapter)).To(Equal(failures.KindParse))
	})

	It("clamps confidence into [0,1]", func() {
		model.text = `{"confidence": 3, "response": "ok"}`

		eval, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Analysis.Confidence).To(Equal(1.0))
	})

	It("accepts a declined reply without error", func() {
		model.text = `{"category":"spam","confidence":0.95,"should_respond":false,"response":""}`

		eval, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Response).To(BeEmpty())
		Expect(*eval.Analysis.ShouldRespond).To(BeFalse())
		Expect(recorder.entries[0].Success).To(BeTrue())
	})

	It("reports a parse failure for empty output", func() {
		model.text = "   "

		_, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).To(HaveOccurred())
		Expect(failures.Classify(err, failures.KindAdapter)).To(Equal(failures.KindParse))
		Expect(recorder.entries).To(HaveLen(1))
		Expect(recorder.entries[0].Success).To(BeFalse())
	})

	It("records a failed entry when the model errors", func() {
		model.err = errors.New("boom")

		_, err := evaluator.Evaluate(context.Background(), input)
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(failures.Classify(err, failures.KindAdapter)).To(Equal(failures.KindEvaluation))
		Expect(recorder.entries).To(HaveLen(1))
		Expect(recorder.entries[0].Success).To(BeFalse())
		Expect(recorder.entries[0].Err).To(MatchError("boom"))
	})

	Describe("Analyze", func() {
		It("decodes the detailed reading", func() {
			model.text = `Here you go: {"sentiment":"negative","sentiment_score":-0.6,"emotions":["anger"],"topics":["delivery"],"intent":"complain","urgency":"high","suggested_action":"apologize"}`

			out, err := evaluator.Analyze(context.Background(), "c1", "late again")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Urgency).To(Equal("high"))
			Expect(out.Topics).To(ConsistOf("delivery"))
			Expect(out.TokensUsed).To(Equal(42))
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Endpoint).To(Equal(ledger.EndpointDetailedAnalysis))
		})

		It("fails on output without JSON", func() {
			model.text = "no idea"

			_, err := evaluator.Analyze(context.Background(), "c1", "late again")
			Expect(failures.Classify(err, failures.KindAdapter)).To(Equal(failures.KindParse))
			Expect(recorder.entries[0].Success).To(BeFalse())
		})
	})
})

var _ = Describe("MessageEvaluator", func() {
	It("includes the history oldest first and records usage", func() {
		model := &stubLLM{text: "Response: Happy to help!"}
		recorder := &stubRecorder{}
		evaluator := thoughts.NewMessageEvaluator(model, recorder, thoughts.CommentEvaluatorConfig{Logger: quietLogger()})

		eval, err := evaluator.Evaluate(context.Background(), thoughts.MessageInput{
			MessageID: "m3",
			Sender:    "Ben",
			Message:   "Is it in stock?",
			History: []thoughts.Turn{
				{Sender: "Ben", Text: "Hi"},
				{FromPage: true, Text: "Hello Ben"},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(eval.Response).To(Equal("Happy to help!"))
		Expect(model.prompts[0]).To(ContainSubstring("Ben: Hi\nPage: Hello Ben"))
		Expect(model.options[0].MaxTokens).To(Equal(200))
		Expect(recorder.entries).To(HaveLen(1))
		Expect(recorder.entries[0].Endpoint).To(Equal(ledger.EndpointMessageResponse))
		Expect(recorder.entries[0].Success).To(BeTrue())
	})
})
