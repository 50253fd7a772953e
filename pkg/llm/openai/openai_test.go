package openai_test

import (
	"context"
	"errors"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	"github.com/lisanmuaddib/pagesync/pkg/llm"
	"github.com/lisanmuaddib/pagesync/pkg/llm/openai"
)

type recordingModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.resp, m.err
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

var _ = Describe("Client", func() {
	var (
		model  *recordingModel
		client *openai.Client
	)

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		model = &recordingModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
			Content: "Thanks for reaching out!",
			GenerationInfo: map[string]any{
				"PromptTokens":     40,
				"CompletionTokens": 8,
				"TotalTokens":      48,
			},
		}}}}
		config := &openai.Config{APIKey: "sk-test", Logger: logger}
		Expect(config.Validate()).To(Succeed())
		client = openai.NewClientWithModel(config, model)
	})

	It("returns text with token usage", func() {
		c, err := client.Generate(context.Background(), "Reply to: hi",
			llm.WithSystemPrompt("You manage a page"),
			llm.WithMaxTokens(150),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Text).To(Equal("Thanks for reaching out!"))
		Expect(c.TotalTokens).To(Equal(48))
		Expect(c.PromptTokens).To(Equal(40))
		Expect(c.Model).To(Equal("gpt-3.5-turbo"))

		Expect(model.messages).To(HaveLen(2))
		Expect(model.messages[0].Role).To(Equal(llms.ChatMessageTypeSystem))
		Expect(model.messages[1].Role).To(Equal(llms.ChatMessageTypeHuman))
		Expect(model.options.MaxTokens).To(Equal(150))
		Expect(model.options.Temperature).To(Equal(0.7))
	})

	It("wraps provider errors", func() {
		model.err = errors.New("429 too many requests")
		_, err := client.Generate(context.Background(), "hi")
		Expect(err).To(MatchError(ContainSubstring("429 too many requests")))
	})

	It("fails without choices", func() {
		model.resp = &llms.ContentResponse{}
		_, err := client.Generate(context.Background(), "hi")
		Expect(err).To(HaveOccurred())
	})
})
