package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// LOG_FORMAT=json switches to plain logrus JSON output for log shippers.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	Configure(logger, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	return logger
}

// Configure applies a level and format to an existing logger. Unknown
// levels fall back to info.
func Configure(logger *logrus.Logger, level, format string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "plain":
		f := NewColoredJSONFormatter()
		f.DisableColors = true
		logger.SetFormatter(f)
	default:
		logger.SetFormatter(NewColoredJSONFormatter())
	}
}
