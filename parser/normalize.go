package parser

import (
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`(?m)^[ \t]*(?:#+[ \t]*)+`)
	boldRe    = regexp.MustCompile(`\*{2,}`)
)

// Normalize strips markdown decoration that models like to wrap protocol
// keywords in: heading markers, bold markers and inline code backticks.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = headingRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "`", "")
}
