package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/internal/sliceutils"
	"github.com/habiliai/agentloop/internal/stringutils"
	"github.com/samber/lo"
)

const (
	transcriptTextLen = 200
	summaryTextLen    = 60
	summaryMessages   = 3
)

// LogMessage adds a message to the open session transcript, opening one if needed.
func (s *Store) LogMessage(role entity.Role, content string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	if s.session == nil {
		s.session = &openSession{startedAt: now}
	}
	s.session.messages = append(s.session.messages, TranscriptEntry{
		Role: string(role),
		Text: stringutils.Head(content, transcriptTextLen),
		Time: now,
	})
}

// SaveSession closes the open session, appends its record to the bounded
// history and stores the transcript as session_<id>. It returns nil when
// nothing was logged.
func (s *Store) SaveSession(ctx context.Context) (*SessionRecord, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.session == nil || len(s.session.messages) == 0 {
		return nil, nil
	}
	sess := s.session
	s.session = nil

	record := SessionRecord{
		ID:           uuid.NewString(),
		StartedAt:    sess.startedAt,
		EndedAt:      s.now(),
		MessageCount: len(sess.messages),
		Summary:      summarize(sess.messages),
	}

	if err := s.backend.Save(ctx, "session_"+record.ID, &transcriptDoc{ID: record.ID, Messages: sess.messages}); err != nil {
		return nil, err
	}

	s.history.Sessions = append(s.history.Sessions, record)
	if limit := s.conf.SessionLimit; limit > 0 {
		s.history.Sessions = sliceutils.Last(s.history.Sessions, limit)
	}
	if err := s.backend.Save(ctx, docHistory, &s.history); err != nil {
		return nil, err
	}

	return &record, nil
}

func summarize(messages []TranscriptEntry) string {
	asked := lo.FilterMap(messages, func(m TranscriptEntry, _ int) (string, bool) {
		text := strings.Join(strings.Fields(m.Text), " ")
		return stringutils.Head(text, summaryTextLen), m.Role == string(entity.RoleUser) && text != ""
	})
	if len(asked) == 0 {
		return "session"
	}
	if len(asked) > summaryMessages {
		asked = asked[:summaryMessages]
	}
	return "User asked: " + strings.Join(asked, " | ")
}

// Sessions returns the n most recent session records, oldest first.
func (s *Store) Sessions(n int) []SessionRecord {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([]SessionRecord(nil), sliceutils.Last(s.history.Sessions, n)...)
}

// Transcript loads a saved session transcript.
func (s *Store) Transcript(ctx context.Context, id string) ([]TranscriptEntry, error) {
	var doc transcriptDoc
	if err := s.load(ctx, "session_"+id, &doc); err != nil {
		return nil, err
	}
	return doc.Messages, nil
}
