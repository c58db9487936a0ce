package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy strips all markup from user-supplied text
	StrictPolicy *bluemonday.Policy
	// ReplyPolicy keeps the light formatting the assistant may emit
	ReplyPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	// The model is prompted to answer in plain text, but replies
	// occasionally carry simple inline markup. Allow just that.
	ReplyPolicy = bluemonday.NewPolicy()
	ReplyPolicy.AllowElements("p", "br", "strong", "em", "ul", "ol", "li")
}

// SanitizeReply sanitizes an assistant reply before it is returned to
// the dashboard
func SanitizeReply(reply string) string {
	return strings.TrimSpace(ReplyPolicy.Sanitize(reply))
}

// SanitizeStrict removes all HTML from user-generated content
func SanitizeStrict(s string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(s))
}
