package memory

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
)

// Store is the single writer of persisted memory. Every mutation is written
// through to the backend before the call returns.
type Store struct {
	logger  *slog.Logger
	conf    *config.MemoryConfig
	backend Backend
	now     func() time.Time

	mtx      sync.Mutex
	identity Identity
	facts    factsDoc
	errs     errorsDoc
	history  historyDoc
	session  *openSession
}

type openSession struct {
	startedAt time.Time
	messages  []TranscriptEntry
}

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open builds the backend named in conf and loads the store from it.
func Open(ctx context.Context, logger *slog.Logger, conf *config.MemoryConfig, opts ...Option) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch conf.Backend {
	case config.MemoryBackendFile:
		backend, err = NewFileBackend(conf.Dir)
	case config.MemoryBackendSqlite:
		backend, err = NewSqliteBackend(ctx, conf.SqlitePath)
	default:
		err = errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", conf.Backend)
	}
	if err != nil {
		return nil, err
	}

	return NewStore(ctx, logger, conf, backend, opts...)
}

func NewStore(ctx context.Context, logger *slog.Logger, conf *config.MemoryConfig, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		logger:  logger,
		conf:    conf,
		backend: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for name, doc := range map[string]document{
		docUser:    &s.identity,
		docFacts:   &s.facts,
		docErrors:  &s.errs,
		docHistory: &s.history,
	} {
		if err := s.load(ctx, name, doc); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// load fills doc from the backend. Absent documents stay at their zero
// default; undecodable or structurally invalid ones are reset to it.
func (s *Store) load(ctx context.Context, name string, doc document) error {
	found, err := s.backend.Load(ctx, name, doc)
	if err == nil && found {
		err = doc.validate()
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, errors.ErrInvalidDocument) {
		return err
	}

	s.logger.Warn("memory document invalid, using default", "document", name, "error", err)
	resetDocument(doc)
	return nil
}

func resetDocument(doc document) {
	switch d := doc.(type) {
	case *Identity:
		*d = Identity{}
	case *factsDoc:
		*d = factsDoc{}
	case *errorsDoc:
		*d = errorsDoc{}
	case *historyDoc:
		*d = historyDoc{}
	case *transcriptDoc:
		*d = transcriptDoc{}
	}
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) Identity() Identity {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := s.identity
	id.Notes = append([]string(nil), id.Notes...)
	return id
}

func (s *Store) SetIdentity(ctx context.Context, name, desktop string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.identity.Name = strings.TrimSpace(name)
	s.identity.Desktop = strings.TrimSpace(desktop)
	return s.backend.Save(ctx, docUser, &s.identity)
}

// score is the log-dampened rank used for both eviction and retrieval.
func score(f Fact) float64 {
	return float64(f.Priority) * math.Log2(float64(f.AccessCount)+1)
}

func rank(facts []Fact) {
	sort.SliceStable(facts, func(i, j int) bool {
		si, sj := score(facts[i]), score(facts[j])
		if si != sj {
			return si > sj
		}
		return facts[i].LastAccessedAt.After(facts[j].LastAccessedAt)
	})
}

// Learn records text. Relearning a known fact (case-insensitive) raises its
// priority by one and counts an access instead of adding a duplicate.
func (s *Store) Learn(ctx context.Context, text string, priority int) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "empty fact")
	}
	priority = min(max(priority, 0), MaxPriority)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	found := false
	for i := range s.facts.Facts {
		f := &s.facts.Facts[i]
		if strings.EqualFold(f.Text, text) {
			f.Priority = min(f.Priority+1, MaxPriority)
			f.AccessCount++
			f.LastAccessedAt = now
			found = true
			break
		}
	}
	if !found {
		s.facts.Facts = append(s.facts.Facts, Fact{
			Text:           text,
			Priority:       priority,
			CreatedAt:      now,
			LastAccessedAt: now,
			AccessCount:    1,
		})
	}

	if capacity := s.conf.FactCapacity; capacity > 0 && len(s.facts.Facts) > capacity {
		rank(s.facts.Facts)
		evicted := s.facts.Facts[capacity:]
		s.facts.Facts = s.facts.Facts[:capacity]
		s.logger.Debug("facts evicted", "count", len(evicted))
	}

	return s.backend.Save(ctx, docFacts, &s.facts)
}

// Forget removes every fact containing keyword, case-insensitively, and
// returns how many were removed.
func (s *Store) Forget(ctx context.Context, keyword string) (int, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return 0, nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	kept := s.facts.Facts[:0]
	for _, f := range s.facts.Facts {
		if !strings.Contains(strings.ToLower(f.Text), keyword) {
			kept = append(kept, f)
		}
	}
	removed := len(s.facts.Facts) - len(kept)
	s.facts.Facts = kept
	if removed == 0 {
		return 0, nil
	}

	return removed, s.backend.Save(ctx, docFacts, &s.facts)
}

func (s *Store) Facts() []Fact {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([]Fact(nil), s.facts.Facts...)
}

// TopFacts returns at most n facts, best score first.
func (s *Store) TopFacts(n int) []Fact {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.topFacts(n)
}

func (s *Store) topFacts(n int) []Fact {
	if n <= 0 {
		return nil
	}
	facts := append([]Fact(nil), s.facts.Facts...)
	rank(facts)
	if len(facts) > n {
		facts = facts[:n]
	}
	return facts
}
