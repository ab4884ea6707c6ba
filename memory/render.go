package memory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/habiliai/agentloop/internal/sliceutils"
	"github.com/samber/lo"
)

const (
	contextFacts    = 5
	contextLessons  = 3
	contextSessions = 2
)

// RenderContext builds the memory block for a prompt within tokenBudget
// tokens. Segments go in priority order (identity, facts, lessons, recent
// sessions); a segment that would overflow is skipped whole.
func (s *Store) RenderContext(tokenBudget int) string {
	limit := tokenBudget * CharsPerToken
	if limit <= 0 {
		return ""
	}

	s.mtx.Lock()
	segments := []string{s.identity.Line()}

	if facts := s.topFacts(contextFacts); len(facts) > 0 {
		segments = append(segments, "Known: "+strings.Join(lo.Map(facts, func(f Fact, _ int) string {
			return f.Text
		}), "; "))
	}

	if lessons := s.lessons(contextLessons); len(lessons) > 0 {
		segments = append(segments, "Avoid: "+strings.Join(lo.Map(lessons, func(p ErrorPattern, _ int) string {
			return fmt.Sprintf("%s (%dx)", p.Key(), p.Count)
		}), "; "))
	}

	if recent := sliceutils.Last(s.history.Sessions, contextSessions); len(recent) > 0 {
		segments = append(segments, "Recent: "+strings.Join(lo.Map(recent, func(r SessionRecord, _ int) string {
			return r.Summary
		}), " → "))
	}
	s.mtx.Unlock()

	var (
		sb   strings.Builder
		used int
	)
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		n := utf8.RuneCountInString(seg)
		if used > 0 {
			n++
		}
		if used+n > limit {
			continue
		}
		if used > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(seg)
		used += n
	}
	return sb.String()
}
