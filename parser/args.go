package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonObjectStartRe = regexp.MustCompile(`\{\s*["'][^"'\n]+["']\s*:`)

// parseArgs extracts the argument object of a tool call. It tries, in order:
// the brace block after an input label, the same block with single quotes
// swapped for double quotes, the first {"key": ...} block anywhere, and
// finally name: "value" fragments for each known parameter.
func parseArgs(text string, from int, params []string) map[string]any {
	if loc := inputLabelRe.FindStringIndex(text[from:]); loc != nil {
		if args, ok := decodeBlockAt(text, from+loc[1]); ok {
			return args
		}
	}

	if loc := jsonObjectStartRe.FindStringIndex(text); loc != nil {
		if args, ok := decodeBlockAt(text, loc[0]); ok {
			return args
		}
	}

	return scanParams(text, params)
}

func decodeBlockAt(text string, from int) (map[string]any, bool) {
	start := strings.IndexByte(text[from:], '{')
	if start < 0 {
		return nil, false
	}
	block := balancedBlock(text[from+start:])

	return decodeObject(block)
}

func decodeObject(block string) (map[string]any, bool) {
	var args map[string]any
	if err := json.Unmarshal([]byte(block), &args); err == nil && args != nil {
		return args, true
	}

	args = nil
	swapped := strings.ReplaceAll(block, "'", `"`)
	if err := json.Unmarshal([]byte(swapped), &args); err == nil && args != nil {
		return args, true
	}

	return nil, false
}

// balancedBlock returns the prefix of s (which starts with '{') up to the
// matching closing brace, ignoring braces inside quoted strings. A block cut
// off by a stop sequence is closed with the missing braces.
func balancedBlock(s string) string {
	var (
		depth   int
		quote   rune
		escaped bool
	)
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return strings.TrimRight(s, " \t\n") + strings.Repeat("}", max(depth, 0))
}

func scanParams(text string, params []string) map[string]any {
	args := map[string]any{}
	for _, p := range params {
		re, err := regexp.Compile(`["']?` + regexp.QuoteMeta(p) + `["']?\s*[:=]\s*["']([^"'\n]+)["']`)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil {
			args[p] = m[1]
		}
	}
	return args
}
