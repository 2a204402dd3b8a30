package ai

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxReplyRunes keeps a reply inside two Discord messages.
const maxReplyRunes = 2800

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

func isGarbageResponse(s string) bool {
	l := strings.ToLower(s)

	if strings.Contains(l, "<html") {
		return true
	}
	// short refusal bodies from proxies; a long reply may say this in character
	if utf8.RuneCountInString(l) < 64 && strings.Contains(l, "not allowed") {
		return true
	}
	return strings.TrimSpace(s) == ""
}

// truncate shortens a response body for logs, cutting on rune boundaries.
func truncate(b []byte) string {
	r := []rune(string(b))
	if len(r) > 200 {
		return string(r[:200]) + "..."
	}
	return string(b)
}

func cleanReply(reply string) string {
	reply = strings.TrimSpace(thinkBlock.ReplaceAllString(reply, ""))

	if utf8.RuneCountInString(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"}, {"«", "»"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close)
				reply = strings.TrimSpace(reply)
				break
			}
		}
	}

	if r := []rune(reply); len(r) > maxReplyRunes {
		reply = string(r[:maxReplyRunes]) + "\n\n[truncated]"
	}
	return reply
}
