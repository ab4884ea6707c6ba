package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/habiliai/agentloop/internal/stringutils"
)

const (
	signatureLen  = 40
	errorEntryLen = 100
)

// Signature reduces an error text to the prefix patterns are keyed on.
func Signature(errText string) string {
	errText = strings.TrimSpace(errText)
	errText = strings.TrimSpace(strings.TrimPrefix(errText, "✗"))
	return stringutils.Head(errText, signatureLen)
}

// LogError appends to the bounded error log and bumps the pattern counter
// for tool plus the error's signature.
func (s *Store) LogError(ctx context.Context, tool, errText, request string) error {
	sig := Signature(errText)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	found := false
	for i := range s.errs.Patterns {
		p := &s.errs.Patterns[i]
		if p.Tool == tool && p.Signature == sig {
			p.Count++
			found = true
			break
		}
	}
	if !found {
		s.errs.Patterns = append(s.errs.Patterns, ErrorPattern{Tool: tool, Signature: sig, Count: 1})
	}

	s.errs.Log = append(s.errs.Log, ErrorEntry{
		Tool:    tool,
		Error:   stringutils.Head(strings.TrimSpace(errText), errorEntryLen),
		Request: stringutils.Head(strings.TrimSpace(request), errorEntryLen),
		Time:    s.now(),
	})
	if limit := s.conf.ErrorLogLimit; limit > 0 && len(s.errs.Log) > limit {
		s.errs.Log = append([]ErrorEntry(nil), s.errs.Log[len(s.errs.Log)-limit:]...)
	}

	return s.backend.Save(ctx, docErrors, &s.errs)
}

// Lessons returns the n most frequent error patterns.
func (s *Store) Lessons(n int) []ErrorPattern {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.lessons(n)
}

func (s *Store) lessons(n int) []ErrorPattern {
	patterns := append([]ErrorPattern(nil), s.errs.Patterns...)
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	if n >= 0 && len(patterns) > n {
		patterns = patterns[:n]
	}
	return patterns
}

func (s *Store) ErrorLog() []ErrorEntry {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([]ErrorEntry(nil), s.errs.Log...)
}
