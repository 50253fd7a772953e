package thoughts

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	langchainprompts "github.com/tmc/langchaingo/prompts"

	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/ledger"
	"github.com/lisanmuaddib/pagesync/pkg/llm"
)

const defaultMessageMaxTokens = 200

var messagePrompt = langchainprompts.NewPromptTemplate(
	`You are answering a private message sent to our page.

Conversation so far (oldest first):
{{.history}}

New message from {{.sender}}: {{.message}}

Write only the reply text.`,
	[]string{"history", "sender", "message"},
)

// Turn is one earlier message of a conversation.
type Turn struct {
	FromPage bool
	Sender   string
	Text     string
}

type MessageInput struct {
	MessageID string
	Sender    string
	Message   string
	History   []Turn
}

type MessageEvaluator struct {
	llm    llm.LLM
	usage  UsageRecorder
	config CommentEvaluatorConfig
	logger *logrus.Logger
}

func NewMessageEvaluator(model llm.LLM, usage UsageRecorder, config CommentEvaluatorConfig) *MessageEvaluator {
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMessageMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return &MessageEvaluator{llm: model, usage: usage, config: config, logger: config.Logger}
}

func (e *MessageEvaluator) Evaluate(ctx context.Context, in MessageInput) (*Evaluation, error) {
	prompt, err := messagePrompt.Format(map[string]any{
		"history": formatHistory(in.History),
		"sender":  orNone(in.Sender),
		"message": in.Message,
	})
	if err != nil {
		return nil, failures.New(failures.KindEvaluation, "format message prompt", err)
	}

	start := time.Now()
	completion, err := e.llm.Generate(ctx, prompt,
		llm.WithSystemPrompt(e.config.SystemPrompt),
		llm.WithModel(e.config.Model),
		llm.WithMaxTokens(e.config.MaxTokens),
		llm.WithTemperature(e.config.Temperature),
	)
	elapsed := time.Since(start)
	entry := ledger.Entry{
		TargetID:       in.MessageID,
		Endpoint:       ledger.EndpointMessageResponse,
		Model:          e.config.Model,
		ProcessingTime: elapsed,
	}
	if err != nil {
		entry.Err = err
		e.usage.Record(ctx, entry)
		e.logger.WithFields(logrus.Fields{
			"message_id": in.MessageID,
			"error":      err,
		}).Warn("Message evaluation failed")
		return nil, failures.New(failures.KindEvaluation, "evaluate message", err)
	}
	entry.Model = completion.Model
	entry.TokensUsed = completion.TotalTokens

	response := extractResponseText(completion.Text)
	if response == "" {
		entry.Err = ErrEmptyResponse
		e.usage.Record(ctx, entry)
		return nil, failures.New(failures.KindParse, "parse message reply", ErrEmptyResponse)
	}

	entry.Success = true
	e.usage.Record(ctx, entry)
	return &Evaluation{
		Response:       response,
		TokensUsed:     completion.TotalTokens,
		ProcessingTime: elapsed,
		Model:          completion.Model,
	}, nil
}

func formatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return "(no earlier messages)"
	}
	var b strings.Builder
	for _, t := range turns {
		who := orNone(t.Sender)
		if t.FromPage {
			who = "Page"
		}
		b.WriteString(who)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(t.Text))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
