package httpclient

import "strings"

// MaxSnippet bounds how much of a response body is quoted in error messages.
const MaxSnippet = 512

// Snippet returns the trimmed body, cut to MaxSnippet bytes with a trailing "...".
func Snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > MaxSnippet {
		return s[:MaxSnippet] + "..."
	}
	return s
}
