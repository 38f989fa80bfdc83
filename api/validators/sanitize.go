package validators

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips every HTML element from free text and trims it. Entities
// escaped by the policy are decoded again since values are stored as plain text.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

func SanitizeString(input string, maxLen int) string {
	trimmed := SanitizeText(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
