package main

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("command helpers", func() {
	It("parses draft ids", func() {
		id, err := parseID("42")
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(uint(42)))

		_, err = parseID("draft-1")
		Expect(err).To(MatchError(ContainSubstring("invalid id")))
	})

	It("drops blank keywords", func() {
		Expect(normalizeKeywords([]string{" refund ", "", "spam"})).To(Equal([]string{"refund", "spam"}))
	})

	It("shortens long text to one line", func() {
		Expect(oneLine("a\nb")).To(Equal("a b"))
		long := oneLine(strings.Repeat("x", 100))
		Expect(long).To(HaveLen(80))
		Expect(long).To(HaveSuffix("..."))

		accented := oneLine(strings.Repeat("ë", 100))
		Expect(utf8.ValidString(accented)).To(BeTrue())
		Expect([]rune(accented)).To(HaveLen(80))
		Expect(oneLine("çaj i ngrohtë")).To(Equal("çaj i ngrohtë"))
	})

	It("registers every subcommand", func() {
		names := map[string]bool{}
		for _, c := range rootCmd.Commands() {
			names[c.Name()] = true
		}
		for _, want := range []string{
			"sync", "sync-messages", "pending", "process", "batch-generate",
			"generate-draft", "post-draft", "stats", "verify", "serve", "settings",
		} {
			Expect(names).To(HaveKey(want))
		}
	})
})
