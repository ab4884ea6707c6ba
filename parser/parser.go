package parser

import (
	"regexp"
	"strings"

	"github.com/habiliai/agentloop/internal/stringslices"
)

var (
	finalAnswerRe = regexp.MustCompile(`(?i)\bfinal[ \t]+answer[ \t]*:`)
	answerRe      = regexp.MustCompile(`(?im)^[ \t]*answer[ \t]*:`)

	delegateRe = regexp.MustCompile(`(?i)\bdelegate(?:[ \t]+to)?[ \t]*:\s*([\w\-]+)`)
	taskRe     = regexp.MustCompile(`(?is)\btask[ \t]*:\s*(.*?)(?:\n[ \t]*\n|$)`)

	// Alternate action labels, in priority order.
	toolLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btool[ \t]*:[ \t]*\[?["']?([\w.\-]+)`),
		regexp.MustCompile(`(?i)\baction[ \t]*:[ \t]*\[?["']?([\w.\-]+)`),
		regexp.MustCompile(`(?i)\btool[ \t]+name[ \t]*:[ \t]*\[?["']?([\w.\-]+)`),
		regexp.MustCompile(`(?i)\bfunction[ \t]*:[ \t]*\[?["']?([\w.\-]+)`),
	}
	inputLabelRe = regexp.MustCompile(`(?i)\b(?:action[ \t]+input|input|arguments|args)[ \t]*:`)
	thoughtRe    = regexp.MustCompile(`(?is)\b(?:thought|think)[ \t]*:\s*(.*)`)
)

// Parse decodes a raw model response against the active grammar. Checks run in
// a fixed order: final answer, delegation, tool call. Anything else is
// Unparseable.
func Parse(raw string, g Grammar) Intent {
	text := Normalize(raw)

	if answer, ok := parseFinalAnswer(text); ok {
		return FinalAnswer{Text: answer}
	}

	if len(g.Roles) > 0 {
		if d, ok := parseDelegate(text, g.Roles); ok {
			return d
		}
	}

	if call, ok := parseToolCall(text, g.Tools); ok {
		return call
	}

	return Unparseable{Raw: raw}
}

func parseFinalAnswer(text string) (string, bool) {
	loc := finalAnswerRe.FindStringIndex(text)
	if alt := answerRe.FindStringIndex(text); alt != nil && (loc == nil || alt[0] < loc[0]) {
		loc = alt
	}
	if loc == nil {
		return "", false
	}

	answer := strings.TrimSpace(text[loc[1]:])
	return answer, answer != ""
}

func parseDelegate(text string, roles []string) (Delegate, bool) {
	dm := delegateRe.FindStringSubmatch(text)
	if dm == nil {
		return Delegate{}, false
	}
	tm := taskRe.FindStringSubmatch(text)
	if tm == nil {
		return Delegate{}, false
	}
	task := strings.TrimSpace(tm[1])
	if task == "" {
		return Delegate{}, false
	}

	role := dm[1]
	if i := stringslices.IndexIgnoreCase(roles, role); i >= 0 {
		role = roles[i]
	}

	return Delegate{Role: role, Task: task}, true
}

func parseToolCall(text string, tools []ToolSignature) (ToolCall, bool) {
	var (
		name     string
		labelPos = -1
		resolved *ToolSignature
	)
	for _, re := range toolLabelRes {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		word := text[m[2]:m[3]]
		if labelPos < 0 {
			name, labelPos = word, m[0]
		}
		if sig, ok := ResolveTool(word, tools); ok {
			name, labelPos, resolved = sig.Name, m[0], &sig
			break
		}
	}
	if labelPos < 0 {
		return ToolCall{}, false
	}

	var params []string
	if resolved != nil {
		params = resolved.Params
	}

	return ToolCall{
		Name:    name,
		Args:    parseArgs(text, labelPos, params),
		Thought: parseThought(text[:labelPos]),
	}, true
}

// ResolveTool maps a bare tool word to a registered signature: exact name
// first, then the first name containing the word, then the first name the
// word contains. Comparisons ignore case and follow registration order.
func ResolveTool(word string, tools []ToolSignature) (ToolSignature, bool) {
	word = strings.TrimSpace(word)
	if word == "" {
		return ToolSignature{}, false
	}
	for _, t := range tools {
		if t.Name == word {
			return t, true
		}
	}
	lower := strings.ToLower(word)
	for _, t := range tools {
		if strings.EqualFold(t.Name, word) {
			return t, true
		}
	}
	for _, t := range tools {
		if strings.Contains(strings.ToLower(t.Name), lower) {
			return t, true
		}
	}
	for _, t := range tools {
		if strings.Contains(lower, strings.ToLower(t.Name)) {
			return t, true
		}
	}

	return ToolSignature{}, false
}

func parseThought(prefix string) string {
	m := thoughtRe.FindStringSubmatch(prefix)
	if m == nil {
		return strings.TrimSpace(prefix)
	}
	return strings.TrimSpace(m[1])
}
