package thoughts

import (
	"encoding/json"
	"regexp"
	"strings"
)

// responseMarker matches labels models put in front of the reply when they
// ignore the requested format. Matching runs on the original text so byte
// offsets stay valid for any casing.
var responseMarker = regexp.MustCompile(`(?i)(response|reply|përgjigj[ae]):`)

// extractJSONObject returns the outermost {...} block of text, tolerating
// markdown fences and chatter around it.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// extractResponseText pulls the reply out of free-form model output.
func extractResponseText(text string) string {
	text = strings.TrimSpace(text)

	if matches := responseMarker.FindAllStringIndex(text, -1); len(matches) > 0 {
		text = strings.TrimSpace(text[matches[len(matches)-1][1]:])
	}

	return strings.Trim(text, "\"“”' \n")
}

type commentPayload struct {
	Analysis
	Response string `json:"response"`
}

// parseCommentOutput reads either the JSON shape or plain text. A JSON
// answer may carry an empty response when the model declines to reply.
func parseCommentOutput(text string) (string, *Analysis, string) {
	if raw, ok := extractJSONObject(text); ok {
		var p commentPayload
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			a := p.Analysis
			a.Confidence = min(max(a.Confidence, 0), 1)
			return strings.TrimSpace(p.Response), &a, raw
		}
	}
	return extractResponseText(text), nil, ""
}
