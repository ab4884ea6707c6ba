package parser

import (
	"regexp"
	"strings"
)

var (
	answerLabelRe  = regexp.MustCompile(`(?is)\b(?:final[ \t]+answer|answer)[ \t]*:\s*(.*)`)
	protocolLineRe = regexp.MustCompile(`(?i)^[ \t]*(?:thought|think|tool|tool[ \t]+name|action|function)[ \t]*:`)
	inputLineRe    = regexp.MustCompile(`(?i)^[ \t]*(?:action[ \t]+input|input|arguments|args)[ \t]*:`)
	trailingStopRe = regexp.MustCompile(`(?i)\s*\bSTOP\s*$`)
)

// CleanResponse turns a response that never reached a final answer into
// something presentable: the text after an answer label if there is one,
// otherwise the response with protocol lines removed. Short leftovers fall
// back to the original text.
func CleanResponse(text string) string {
	normalized := Normalize(text)
	if m := answerLabelRe.FindStringSubmatch(normalized); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}

	var kept []string
	for _, line := range strings.Split(normalized, "\n") {
		if inputLineRe.MatchString(line) {
			break
		}
		if protocolLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	clean := strings.TrimSpace(trailingStopRe.ReplaceAllString(strings.Join(kept, "\n"), ""))
	if len([]rune(clean)) > 5 {
		return clean
	}
	return strings.TrimSpace(text)
}
