package actions

import (
	"github.com/lisanmuaddib/pagesync/pkg/failures"
)

type ItemStatus string

const (
	StatusReplied ItemStatus = "replied"
	StatusDrafted ItemStatus = "drafted"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// ItemResult is the outcome for one comment or message of a batch.
type ItemResult struct {
	ID      string        `json:"id"`
	Status  ItemStatus    `json:"status"`
	Kind    failures.Kind `json:"kind,omitempty"`
	Message string        `json:"message,omitempty"`
	ReplyID string        `json:"reply_id,omitempty"`
	DraftID uint          `json:"draft_id,omitempty"`
}

// BatchResult summarizes a responder run. Partial failure is reported
// here, never as an error.
type BatchResult struct {
	Processed   int          `json:"processed"`
	Replied     int          `json:"replied"`
	Drafted     int          `json:"drafted"`
	Skipped     int          `json:"skipped"`
	Errors      int          `json:"errors"`
	Interrupted bool         `json:"interrupted,omitempty"`
	Items       []ItemResult `json:"items"`
}

func (r *BatchResult) add(item ItemResult) {
	r.Processed++
	switch item.Status {
	case StatusReplied:
		r.Replied++
	case StatusDrafted:
		r.Drafted++
	case StatusSkipped:
		r.Skipped++
	case StatusError:
		r.Errors++
	}
	r.Items = append(r.Items, item)
}

func failed(id string, err error, fallback failures.Kind) ItemResult {
	f := failures.NewItemFailure(id, err, fallback)
	return ItemResult{ID: id, Status: StatusError, Kind: f.Kind, Message: f.Message}
}

func skipped(id, reason string) ItemResult {
	return ItemResult{ID: id, Status: StatusSkipped, Message: reason}
}
