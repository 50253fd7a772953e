package db

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogrusLogger routes GORM logging through logrus. Queries are traced
// at debug level; ErrRecordNotFound is not treated as a failure since the
// store uses First for existence checks.
type GormLogrusLogger struct {
	logger        *logrus.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogrusLogger(baseLogger *logrus.Logger) *GormLogrusLogger {
	return &GormLogrusLogger{
		logger:        baseLogger,
		level:         logger.Info,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *GormLogrusLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogrusLogger) entry(ctx context.Context, kind string) *logrus.Entry {
	return l.logger.WithContext(ctx).WithFields(logrus.Fields{
		"source": "gorm",
		"type":   kind,
	})
}

func (l *GormLogrusLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.entry(ctx, "query_info").Debugf(msg, args...)
	}
}

func (l *GormLogrusLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.entry(ctx, "query_warn").Warnf(msg, args...)
	}
}

func (l *GormLogrusLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.entry(ctx, "query_error").Errorf(msg, args...)
	}
}

func (l *GormLogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	e := l.entry(ctx, "query_trace").WithFields(logrus.Fields{
		"rows":     rows,
		"sql":      sql,
		"duration": elapsed.String(),
	})

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		e.WithError(err).Error("database query failed")
	case elapsed > l.slowThreshold:
		e.Warn("slow query detected")
	default:
		e.Trace("database query executed")
	}
}
