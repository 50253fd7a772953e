package thoughts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	langchainprompts "github.com/tmc/langchaingo/prompts"

	"github.com/lisanmuaddib/pagesync/pkg/failures"
	"github.com/lisanmuaddib/pagesync/pkg/ledger"
	"github.com/lisanmuaddib/pagesync/pkg/llm"
)

// ErrEmptyResponse means the model answered but no reply could be read.
var ErrEmptyResponse = errors.New("model returned no usable response")

const (
	defaultCommentMaxTokens  = 150
	defaultAnalysisMaxTokens = 300
	defaultTemperature       = 0.7
)

var commentPrompt = langchainprompts.NewPromptTemplate(
	`A person commented on one of our posts.

Post: {{.post}}
Commenter: {{.author}}
Comment: {{.comment}}
Local sentiment estimate: {{.sentiment}}

Decide whether the page should answer and write the answer.
Return only a JSON object with these keys:
  "category": one of "question", "complaint", "compliment", "feedback", "spam", "other"
  "sentiment": one of "positive", "negative", "neutral"
  "confidence": number between 0 and 1, how sure you are the reply is appropriate
  "should_respond": true or false
  "response": the reply text, empty when should_respond is false`,
	[]string{"post", "author", "comment", "sentiment"},
)

var analysisPrompt = langchainprompts.NewPromptTemplate(
	`Analyse this comment left on our page.

Comment: {{.comment}}

Return only a JSON object with keys "sentiment" (positive|negative|neutral),
"sentiment_score" (-1 to 1), "emotions" (list), "topics" (list),
"intent" (short phrase), "urgency" (low|medium|high) and
"suggested_action" (short phrase).`,
	[]string{"comment"},
)

type CommentInput struct {
	CommentID   string
	Message     string
	AuthorName  string
	PostMessage string
	Sentiment   string
}

type CommentEvaluatorConfig struct {
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float64
	Logger       *logrus.Logger
}

// CommentEvaluator asks the LLM for a reply to a comment. Every call,
// successful or not, leaves exactly one usage entry.
type CommentEvaluator struct {
	llm    llm.LLM
	usage  UsageRecorder
	config CommentEvaluatorConfig
	logger *logrus.Logger
}

func NewCommentEvaluator(model llm.LLM, usage UsageRecorder, config CommentEvaluatorConfig) *CommentEvaluator {
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultCommentMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return &CommentEvaluator{
		llm:    model,
		usage:  usage,
		config: config,
		logger: config.Logger,
	}
}

func (e *CommentEvaluator) Evaluate(ctx context.Context, in CommentInput) (*Evaluation, error) {
	prompt, err := commentPrompt.Format(map[string]any{
		"post":      orNone(in.PostMessage),
		"author":    orNone(in.AuthorName),
		"comment":   in.Message,
		"sentiment": orNone(in.Sentiment),
	})
	if err != nil {
		return nil, failures.New(failures.KindEvaluation, "format comment prompt", err)
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
		TargetID:       in.CommentID,
		Endpoint:       ledger.EndpointCommentEvaluation,
		Model:          e.config.Model,
		ProcessingTime: elapsed,
	}

	if err != nil {
		entry.Err = err
		e.usage.Record(ctx, entry)
		e.logger.WithFields(logrus.Fields{
			"comment_id": in.CommentID,
			"error":      err,
		}).Warn("Comment evaluation failed")
		return nil, failures.New(failures.KindEvaluation, "evaluate comment", err)
	}

	entry.Model = completion.Model
	entry.TokensUsed = completion.TotalTokens

	response, analysis, raw := parseCommentOutput(completion.Text)
	declined := analysis != nil && analysis.ShouldRespond != nil && !*analysis.ShouldRespond
	if response == "" && !declined {
		entry.Err = ErrEmptyResponse
		e.usage.Record(ctx, entry)
		return nil, failures.New(failures.KindParse, "parse comment evaluation", ErrEmptyResponse)
	}

	entry.Success = true
	e.usage.Record(ctx, entry)

	if raw == "" {
		payload, _ := json.Marshal(map[string]string{"response": response})
		raw = string(payload)
	}

	e.logger.WithFields(logrus.Fields{
		"comment_id": in.CommentID,
		"tokens":     completion.TotalTokens,
		"structured": analysis != nil,
	}).Debug("Evaluated comment")

	return &Evaluation{
		Response:       response,
		Analysis:       analysis,
		TokensUsed:     completion.TotalTokens,
		ProcessingTime: elapsed,
		Model:          completion.Model,
		Raw:            raw,
	}, nil
}

// Analyze returns a detailed reading of a comment without drafting a reply.
func (e *CommentEvaluator) Analyze(ctx context.Context, commentID, message string) (*DetailedAnalysis, error) {
	prompt, err := analysisPrompt.Format(map[string]any{"comment": message})
	if err != nil {
		return nil, failures.New(failures.KindEvaluation, "format analysis prompt", err)
	}

	start := time.Now()
	completion, err := e.llm.Generate(ctx, prompt,
		llm.WithSystemPrompt(e.config.SystemPrompt),
		llm.WithModel(e.config.Model),
		llm.WithMaxTokens(defaultAnalysisMaxTokens),
		llm.WithTemperature(0.2),
	)
	entry := ledger.Entry{
		TargetID:       commentID,
		Endpoint:       ledger.EndpointDetailedAnalysis,
		Model:          e.config.Model,
		ProcessingTime: time.Since(start),
	}
	if err != nil {
		entry.Err = err
		e.usage.Record(ctx, entry)
		return nil, failures.New(failures.KindEvaluation, "analyze comment", err)
	}
	entry.Model = completion.Model
	entry.TokensUsed = completion.TotalTokens

	var out DetailedAnalysis
	raw, ok := extractJSONObject(completion.Text)
	if !ok {
		entry.Err = ErrEmptyResponse
		e.usage.Record(ctx, entry)
		return nil, failures.New(failures.KindParse, "parse analysis", ErrEmptyResponse)
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		entry.Err = err
		e.usage.Record(ctx, entry)
		return nil, failures.New(failures.KindParse, "parse analysis", err)
	}

	entry.Success = true
	e.usage.Record(ctx, entry)
	out.TokensUsed = completion.TotalTokens
	return &out, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
