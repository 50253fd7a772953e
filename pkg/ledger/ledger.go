// Package ledger keeps an append-only record of LLM calls for cost and
// reliability reporting.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

const DefaultCostPer1KTokens = 0.002

// Endpoint names the kind of LLM call being recorded.
const (
	EndpointCommentEvaluation = "comment_evaluation"
	EndpointDetailedAnalysis  = "detailed_analysis"
	EndpointMessageResponse   = "message_response"
)

type Entry struct {
	TargetID       string
	Endpoint       string
	Model          string
	TokensUsed     int
	ProcessingTime time.Duration
	Success        bool
	Err            error
}

type Stats struct {
	TotalCalls        int64   `json:"total_calls"`
	Successes         int64   `json:"successes"`
	Failures          int64   `json:"failures"`
	TotalTokens       int64   `json:"total_tokens"`
	EstimatedCost     float64 `json:"estimated_cost"`
	AvgProcessingTime float64 `json:"avg_processing_time"`
}

type Ledger struct {
	logger    *logrus.Logger
	db        *gorm.DB
	costPer1K float64
	now       func() time.Time
}

func New(logger *logrus.Logger, db *gorm.DB, costPer1K float64) *Ledger {
	if costPer1K <= 0 {
		costPer1K = DefaultCostPer1KTokens
	}
	return &Ledger{
		logger:    logger,
		db:        db,
		costPer1K: costPer1K,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one entry. A failed write is logged and swallowed so the
// caller's outcome never depends on bookkeeping. The write outlives a
// cancelled caller context.
func (l *Ledger) Record(ctx context.Context, e Entry) {
	row := models.UsageLog{
		Endpoint:       e.Endpoint,
		Model:          e.Model,
		TokensUsed:     e.TokensUsed,
		ProcessingTime: e.ProcessingTime.Seconds(),
		Success:        e.Success,
		CreatedAt:      l.now(),
	}
	if e.TargetID != "" {
		row.TargetID = &e.TargetID
	}
	if e.Err != nil {
		msg := e.Err.Error()
		row.ErrorMessage = &msg
	}

	if err := l.db.WithContext(context.WithoutCancel(ctx)).Create(&row).Error; err != nil {
		l.logger.WithFields(logrus.Fields{
			"endpoint":  e.Endpoint,
			"target_id": e.TargetID,
			"error":     err,
		}).Error("Failed to record LLM usage")
		return
	}

	l.logger.WithFields(logrus.Fields{
		"endpoint":  e.Endpoint,
		"target_id": e.TargetID,
		"tokens":    e.TokensUsed,
		"success":   e.Success,
	}).Debug("Recorded LLM usage")
}

func (l *Ledger) Stats(ctx context.Context) (*Stats, error) {
	var agg struct {
		TotalCalls  int64
		Successes   *int64
		TotalTokens *int64
		AvgTime     *float64
	}
	if err := l.db.WithContext(ctx).Model(&models.UsageLog{}).
		Select(`COUNT(*) AS total_calls,
			SUM(CASE WHEN success THEN 1 ELSE 0 END) AS successes,
			SUM(tokens_used) AS total_tokens,
			AVG(processing_time) AS avg_time`).
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	stats := &Stats{TotalCalls: agg.TotalCalls}
	if agg.Successes != nil {
		stats.Successes = *agg.Successes
	}
	if agg.TotalTokens != nil {
		stats.TotalTokens = *agg.TotalTokens
	}
	if agg.AvgTime != nil {
		stats.AvgProcessingTime = *agg.AvgTime
	}
	stats.Failures = stats.TotalCalls - stats.Successes
	stats.EstimatedCost = float64(stats.TotalTokens) / 1000 * l.costPer1K
	return stats, nil
}

// Recent returns the newest entries first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]models.UsageLog, error) {
	var rows []models.UsageLog
	q := l.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	return rows, nil
}
