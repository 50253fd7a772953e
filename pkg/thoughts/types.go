package thoughts

import (
	"context"
	"time"

	"github.com/lisanmuaddib/pagesync/pkg/ledger"
)

// UsageRecorder receives one entry per LLM call.
type UsageRecorder interface {
	Record(ctx context.Context, e ledger.Entry)
}

// CommentCategory is the evaluator's reading of what a comment is.
type CommentCategory string

const (
	CategoryQuestion   CommentCategory = "question"
	CategoryComplaint  CommentCategory = "complaint"
	CategoryCompliment CommentCategory = "compliment"
	CategoryFeedback   CommentCategory = "feedback"
	CategorySpam       CommentCategory = "spam"
	CategoryOther      CommentCategory = "other"
)

// Analysis is the structured part of an evaluation. It is absent when the
// model answered with plain text only.
type Analysis struct {
	Category      CommentCategory `json:"category"`
	Sentiment     string          `json:"sentiment"`
	Confidence    float64         `json:"confidence"`
	ShouldRespond *bool           `json:"should_respond,omitempty"`
}

// Evaluation is the outcome of one evaluator call.
type Evaluation struct {
	Response       string
	Analysis       *Analysis
	TokensUsed     int
	ProcessingTime time.Duration
	Model          string
	// Raw is the JSON payload stored with the comment once a reply is posted.
	Raw string
}

// DetailedAnalysis is the richer, reply-free reading of a comment.
type DetailedAnalysis struct {
	Sentiment       string   `json:"sentiment"`
	SentimentScore  float64  `json:"sentiment_score"`
	Emotions        []string `json:"emotions"`
	Topics          []string `json:"topics"`
	Intent          string   `json:"intent"`
	Urgency         string   `json:"urgency"`
	SuggestedAction string   `json:"suggested_action"`
	TokensUsed      int      `json:"-"`
}
