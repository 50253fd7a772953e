package agent

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

type gocronLogger struct {
	logger *logrus.Logger
}

// NewGocronLogger routes scheduler logs through logrus. gocron passes
// key/value pairs which become fields.
func NewGocronLogger(logger *logrus.Logger) gocron.Logger {
	return &gocronLogger{logger: logger}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.entry(args).Debug(msg)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.entry(args).Info(msg)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.entry(args).Warn(msg)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.entry(args).Error(msg)
}

func (l *gocronLogger) entry(args []any) *logrus.Entry {
	fields := logrus.Fields{"component": "scheduler"}
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			fields["extra"] = args[i]
			break
		}
		fields[key] = args[i+1]
	}
	return l.logger.WithFields(fields)
}
