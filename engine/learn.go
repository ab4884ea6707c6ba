package engine

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const NoFilesFact = "Don't create files unless user explicitly asks"

var nameRe = regexp.MustCompile(`(?i)\b(?:call (?:you|yourself)|your name is|name you)\s+(\w+)`)

type learnedFact struct {
	text     string
	priority int
}

// LearnFromMessage stores the standing instructions a user message carries:
// a name for the assistant, or a request not to create files.
func LearnFromMessage(ctx context.Context, logger *slog.Logger, m Memory, text string) {
	var facts []learnedFact
	if match := nameRe.FindStringSubmatch(text); match != nil {
		facts = append(facts, learnedFact{"User calls me " + strings.ToUpper(match[1]), 9})
	}

	lower := strings.ToLower(text)
	if (strings.Contains(lower, "don't") || strings.Contains(lower, "dont")) && strings.Contains(lower, "file") {
		facts = append(facts, learnedFact{NoFilesFact, 8})
	}

	for _, f := range facts {
		if err := m.Learn(ctx, f.text, f.priority); err != nil {
			logger.Warn("failed to learn from message", "fact", f.text, "error", err)
			continue
		}
		logger.Debug("learned from message", "fact", f.text)
	}
}
