package facebook_test

import (
	"io"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
)

var _ = Describe("FacebookConfig", func() {
	var logger *logrus.Logger

	BeforeEach(func() {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
		for _, key := range []string{"FACEBOOK_PAGE_ID", "FACEBOOK_PAGE_ACCESS_TOKEN", "FACEBOOK_REQUEST_DELAY", "FACEBOOK_API_BASE_URL"} {
			original, had := os.LookupEnv(key)
			DeferCleanup(func() {
				if had {
					os.Setenv(key, original)
				} else {
					os.Unsetenv(key)
				}
			})
			os.Unsetenv(key)
		}
	})

	It("requires page credentials", func() {
		_, err := facebook.NewFacebookConfig(logger)
		Expect(err).To(MatchError(ContainSubstring("FACEBOOK_PAGE_ID")))
	})

	It("reads the request delay in seconds or as a duration", func() {
		os.Setenv("FACEBOOK_PAGE_ID", "page1")
		os.Setenv("FACEBOOK_PAGE_ACCESS_TOKEN", "token")

		os.Setenv("FACEBOOK_REQUEST_DELAY", "0.5")
		cfg, err := facebook.NewFacebookConfig(logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.RequestDelay).To(Equal(500 * time.Millisecond))

		os.Setenv("FACEBOOK_REQUEST_DELAY", "2s")
		cfg, err = facebook.NewFacebookConfig(logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.RequestDelay).To(Equal(2 * time.Second))
		Expect(cfg.Endpoint("/page1/posts")).To(Equal("https://graph.facebook.com/v19.0/page1/posts"))
	})
})
