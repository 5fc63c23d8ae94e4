package frontend

import (
	"regexp"
	"strings"
)

// Kind is the scan surface chosen for free text.
type Kind string

// Text kinds.
const (
	KindURL   Kind = "url"
	KindEmail Kind = "email"
)

// urlPrefix matches a scheme, "www." or a host-like prefix.
var urlPrefix = regexp.MustCompile(`^(http|www\.|[a-zA-Z0-9-]+\.[a-zA-Z]{2,})`)

// Classify decides whether pasted text is a URL or email content. Rules
// are checked in order: URL pattern, email markers, then length. detected
// is false when only the length fallback applied.
func Classify(text string) (kind Kind, detected bool) {
	text = strings.TrimSpace(text)

	if urlPrefix.MatchString(text) && !strings.Contains(text, "\n") && len(text) < 256 {
		return KindURL, true
	}
	if strings.Contains(text, "Subject:") || strings.Contains(text, "From:") ||
		(strings.Contains(text, "@") && len(text) > 20 && strings.Contains(text, " ")) {
		return KindEmail, true
	}
	if len(text) < 150 {
		return KindURL, false
	}
	return KindEmail, false
}
