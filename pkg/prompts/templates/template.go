package prompts

import (
	"fmt"
	"strings"
)

// SystemPromptConfig describes the persona the page answers with.
type SystemPromptConfig struct {
	PageName string
	Language string
	// Sections are rendered in Order; sections missing from Order are skipped.
	Sections map[string]string
	Order    []string
	// Extra is appended verbatim, e.g. an operator supplied reply template.
	Extra string
}

// NewSystemPrompt renders numbered persona sections into a system prompt.
func NewSystemPrompt(config SystemPromptConfig) string {
	var b strings.Builder

	name := config.PageName
	if name == "" {
		name = "this Facebook Page"
	}
	b.WriteString(fmt.Sprintf("You manage the public conversations of %s. Your guidelines are:\n\n", name))

	n := 1
	for _, section := range config.Order {
		content, ok := config.Sections[section]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("%d. %s:\n%s\n\n", n, section, content))
		n++
	}

	if config.Language != "" {
		b.WriteString(fmt.Sprintf("Always answer in %s unless the person writes in another language, then answer in theirs.\n", config.Language))
	}
	if config.Extra != "" {
		b.WriteString("\nAdditional instructions from the page owner:\n")
		b.WriteString(config.Extra)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
