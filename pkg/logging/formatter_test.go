package logging_test

import (
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/logging"
)

var _ = Describe("ColoredJSONFormatter", func() {
	var formatter *logging.ColoredJSONFormatter

	BeforeEach(func() {
		formatter = logging.NewColoredJSONFormatter()
		formatter.DisableColors = true
	})

	It("puts entity ids before other fields", func() {
		entry := logrus.NewEntry(logrus.New())
		entry.Time = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		entry.Level = logrus.InfoLevel
		entry.Message = "comment synced"
		entry.Data = logrus.Fields{
			"zeta":       1,
			"comment_id": "c1",
			"post_id":    "p1",
			"error":      errors.New("boom"),
		}

		out, err := formatter.Format(entry)
		Expect(err).NotTo(HaveOccurred())

		line := string(out)
		Expect(line).To(HavePrefix("2024-03-01T12:00:00Z INFO    comment synced"))
		Expect(strings.Index(line, "post_id=")).To(BeNumerically("<", strings.Index(line, "comment_id=")))
		Expect(strings.Index(line, "comment_id=")).To(BeNumerically("<", strings.Index(line, "error=")))
		Expect(strings.Index(line, "error=")).To(BeNumerically("<", strings.Index(line, "zeta=")))
		Expect(line).To(ContainSubstring(`error="boom"`))
		Expect(line).To(HaveSuffix("\n"))
	})

	It("sorts unknown keys alphabetically", func() {
		Expect(logging.SortByPriority([]string{"b", "a", "post_id"})).To(Equal([]string{"post_id", "a", "b"}))
	})
})

var _ = Describe("Configure", func() {
	It("falls back to info on an unknown level", func() {
		logger := logrus.New()
		logging.Configure(logger, "chatty", "")
		Expect(logger.GetLevel()).To(Equal(logrus.InfoLevel))
	})

	It("switches to the JSON formatter", func() {
		logger := logrus.New()
		logging.Configure(logger, "debug", "json")
		Expect(logger.GetLevel()).To(Equal(logrus.DebugLevel))
		Expect(logger.Formatter).To(BeAssignableToTypeOf(&logrus.JSONFormatter{}))
	})
})
