package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripHTML reduces rich text to its plain-text content. Length rules on
// abstracts apply to this value, not the raw markup.
func StripHTML(s string) string {
	stripped := strictPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
