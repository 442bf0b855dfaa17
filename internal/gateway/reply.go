package gateway

import (
	"regexp"
	"strings"
)

// Reasoning markup some providers leak into completion text. Closed blocks
// are removed wholesale; an unclosed opening tag drops everything after it.
var (
	reasoningBlock = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)
	reasoningTail  = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*$`)
)

// CleanReply strips model reasoning markup and surrounding whitespace from
// raw completion text. Idempotent: CleanReply(CleanReply(x)) == CleanReply(x).
func CleanReply(s string) string {
	s = reasoningBlock.ReplaceAllString(s, "")
	s = reasoningTail.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
