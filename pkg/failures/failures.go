// Package failures classifies per-item outcomes of sync and responder
// batches so callers can tell a rate limit from a bad payload.
package failures

import (
	"context"
	"errors"
	"fmt"

	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
)

type Kind string

const (
	KindAdapter    Kind = "adapter_error"
	KindRateLimit  Kind = "rate_limited"
	KindParse      Kind = "parse_error"
	KindEvaluation Kind = "evaluation_error"
	KindPost       Kind = "post_error"
	KindStore      Kind = "store_error"
	KindCanceled   Kind = "canceled"
)

// Error attaches a Kind to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Classify picks the kind for err. Explicit *Error wrappers win; adapter
// errors map by their own kind; anything else gets fallback.
func Classify(err error, fallback Kind) Kind {
	if err == nil {
		return ""
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	switch facebook.KindOf(err) {
	case facebook.KindRateLimited:
		return KindRateLimit
	case facebook.KindMalformedResponse:
		return KindParse
	case "":
		return fallback
	}
	return KindAdapter
}

// ItemFailure is the per-item record surfaced in batch summaries.
type ItemFailure struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func NewItemFailure(id string, err error, fallback Kind) ItemFailure {
	return ItemFailure{ID: id, Kind: Classify(err, fallback), Message: err.Error()}
}
