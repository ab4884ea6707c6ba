package msgutils

import (
	"strings"
)

// ExtractMentions returns every @name in msg, without the '@'.
func ExtractMentions(msg string) []string {
	var mentions []string
	for _, word := range strings.Fields(msg) {
		if name := mentionName(word); name != "" {
			mentions = append(mentions, name)
		}
	}
	return mentions
}

// LeadingMention splits "@coder write a script" into "coder" and "write a script".
func LeadingMention(msg string) (name, rest string, ok bool) {
	msg = strings.TrimSpace(msg)
	first, rest, _ := strings.Cut(msg, " ")
	if name = mentionName(first); name == "" {
		return "", msg, false
	}
	return name, strings.TrimSpace(rest), true
}

func mentionName(word string) string {
	if !strings.HasPrefix(word, "@") {
		return ""
	}
	return strings.TrimRight(word[1:], ",.:;!?")
}
