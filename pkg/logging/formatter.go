package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Entity id fields are printed first and highlighted so a single post or
// comment can be followed through a sync or responder run.
var fieldPriority = map[string]int{
	"time":            1,
	"level":           2,
	"msg":             3,
	"post_id":         4,
	"comment_id":      5,
	"draft_id":        6,
	"conversation_id": 7,
	"message_id":      8,
	"endpoint":        9,
	"error":           10,
}

type ColoredJSONFormatter struct {
	TimestampFormat string
	SortingFunc     func([]string) []string
	DisableColors   bool
}

func NewColoredJSONFormatter() *ColoredJSONFormatter {
	return &ColoredJSONFormatter{
		TimestampFormat: time.RFC3339,
		SortingFunc:     SortByPriority,
	}
}

func (f *ColoredJSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	if f.SortingFunc != nil {
		keys = f.SortingFunc(keys)
	} else {
		sort.Strings(keys)
	}

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	paint := func(c *color.Color, format string, args ...interface{}) string {
		if f.DisableColors {
			return fmt.Sprintf(format, args...)
		}
		return c.Sprintf(format, args...)
	}

	levelColor := levelColor(entry.Level)
	b.WriteString(paint(color.New(color.FgYellow), "%s", entry.Time.Format(f.TimestampFormat)))
	b.WriteByte(' ')
	b.WriteString(paint(levelColor, "%-7s", strings.ToUpper(entry.Level.String())))
	b.WriteByte(' ')
	b.WriteString(paint(levelColor, "%s", entry.Message))

	for _, k := range keys {
		keyColor := color.New(color.FgCyan)
		if fieldPriority[k] > 3 {
			keyColor = color.New(color.FgGreen)
		}
		b.WriteByte(' ')
		b.WriteString(paint(keyColor, "%s=", k))
		b.WriteString(paint(color.New(color.FgWhite), "%s", formatValue(entry.Data[k])))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case error:
		return fmt.Sprintf("%q", v.Error())
	case time.Duration:
		return v.String()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

func levelColor(level logrus.Level) *color.Color {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return color.New(color.FgBlue)
	case logrus.InfoLevel:
		return color.New(color.FgGreen)
	case logrus.WarnLevel:
		return color.New(color.FgYellow)
	case logrus.ErrorLevel:
		return color.New(color.FgRed)
	case logrus.FatalLevel, logrus.PanicLevel:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// SortByPriority orders entity ids ahead of the remaining fields, which
// are sorted alphabetically.
func SortByPriority(keys []string) []string {
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := fieldPriority[keys[i]], fieldPriority[keys[j]]
		switch {
		case pi != 0 && pj != 0:
			return pi < pj
		case pi != 0:
			return true
		case pj != 0:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}
