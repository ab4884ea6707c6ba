package memory_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/internal/mytesting"
	"github.com/habiliai/agentloop/memory"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	mytesting.Suite

	conf  *config.MemoryConfig
	clock time.Time
	store *memory.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.conf = config.NewMemoryConfig()
	s.conf.Dir = s.Path("memory")
	s.conf.SqlitePath = s.Path("memory", "memory.db")
	s.clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.store = s.open()
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
	s.Suite.TearDownTest()
}

func (s *StoreTestSuite) open() *memory.Store {
	store, err := memory.Open(s, s.Logger, s.conf, memory.WithClock(func() time.Time {
		s.clock = s.clock.Add(time.Second)
		return s.clock
	}))
	s.Require().NoError(err)
	return store
}

func (s *StoreTestSuite) reopen() {
	s.Require().NoError(s.store.Close())
	s.store = s.open()
}

func TestFileStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestSqliteStore(t *testing.T) {
	suite.Run(t, &sqliteStoreTestSuite{})
}

type sqliteStoreTestSuite struct {
	StoreTestSuite
}

func (s *sqliteStoreTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.conf = config.NewMemoryConfig()
	s.conf.Backend = config.MemoryBackendSqlite
	s.conf.SqlitePath = s.Path("memory", "memory.db")
	s.clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.store = s.open()
}

func (s *StoreTestSuite) TestLearnDeduplicatesCaseInsensitively() {
	s.Require().NoError(s.store.Learn(s, "X", 5))
	s.Require().NoError(s.store.Learn(s, "x", 5))

	facts := s.store.Facts()
	s.Require().Len(facts, 1)
	s.Equal("X", facts[0].Text)
	s.Equal(6, facts[0].Priority)
	s.Equal(2, facts[0].AccessCount)
	s.True(facts[0].LastAccessedAt.After(facts[0].CreatedAt))
}

func (s *StoreTestSuite) TestLearnCapsPriority() {
	s.Require().NoError(s.store.Learn(s, "loud", 42))
	s.Require().NoError(s.store.Learn(s, "LOUD", 1))

	facts := s.store.Facts()
	s.Require().Len(facts, 1)
	s.Equal(memory.MaxPriority, facts[0].Priority)

	s.Error(s.store.Learn(s, "   ", 5))
}

func (s *StoreTestSuite) TestLearnEvictsLowestScore() {
	s.conf.FactCapacity = 3

	s.Require().NoError(s.store.Learn(s, "a", 9))
	s.Require().NoError(s.store.Learn(s, "b", 2))
	s.Require().NoError(s.store.Learn(s, "c", 5))
	s.Require().NoError(s.store.Learn(s, "d", 4))

	texts := []string{}
	for _, f := range s.store.Facts() {
		texts = append(texts, f.Text)
	}
	s.ElementsMatch([]string{"a", "c", "d"}, texts)
}

func (s *StoreTestSuite) TestTopFacts() {
	s.Require().NoError(s.store.Learn(s, "low", 2))
	s.Require().NoError(s.store.Learn(s, "high", 8))
	s.Require().NoError(s.store.Learn(s, "mid", 4))
	s.Require().NoError(s.store.Learn(s, "mid", 4))
	s.Require().NoError(s.store.Learn(s, "tie", 2))

	top := s.store.TopFacts(10)
	s.Require().Len(top, 4)
	s.Equal([]string{"high", "mid", "tie", "low"}, []string{top[0].Text, top[1].Text, top[2].Text, top[3].Text})

	s.Len(s.store.TopFacts(2), 2)
	s.Empty(s.store.TopFacts(0))
}

func (s *StoreTestSuite) TestForget() {
	s.Require().NoError(s.store.Learn(s, "User likes tea", 5))
	s.Require().NoError(s.store.Learn(s, "User likes green TEA", 5))
	s.Require().NoError(s.store.Learn(s, "User lives in Seoul", 5))

	n, err := s.store.Forget(s, "tea")
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Len(s.store.Facts(), 1)

	n, err = s.store.Forget(s, "nothing")
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *StoreTestSuite) TestLogErrorAggregatesPatterns() {
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.LogError(s, "run_command", fmt.Sprintf("✗ exit status 1: sh: 1: frobnicate: not found (attempt %d)", i), "open the thing"))
	}
	s.Require().NoError(s.store.LogError(s, "read_file", "File not found: /tmp/x", ""))

	lessons := s.store.Lessons(3)
	s.Require().Len(lessons, 2)
	s.Equal("run_command", lessons[0].Tool)
	s.Equal(5, lessons[0].Count)
	s.Equal("exit status 1: sh: 1: frobnicate: not fo", lessons[0].Signature)
	s.Equal(1, lessons[1].Count)

	ctx := s.store.RenderContext(200)
	avoid := ctx[strings.Index(ctx, "Avoid: "):]
	s.Less(strings.Index(avoid, "run_command"), strings.Index(avoid, "read_file"))
	s.Contains(avoid, "(5x)")

	s.Len(s.store.ErrorLog(), 6)
}

func (s *StoreTestSuite) TestErrorLogIsBounded() {
	s.conf.ErrorLogLimit = 3
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.LogError(s, "wait", fmt.Sprintf("err %d", i), ""))
	}

	log := s.store.ErrorLog()
	s.Require().Len(log, 3)
	s.Equal("err 2", log[0].Error)
	s.Len(s.store.Lessons(-1), 5)
}

func (s *StoreTestSuite) TestRenderContextRespectsBudget() {
	s.Require().NoError(s.store.SetIdentity(s, "ada", "/home/ada/Desktop"))
	for i := 0; i < 8; i++ {
		s.Require().NoError(s.store.Learn(s, fmt.Sprintf("fact number %d is quite a long sentence", i), i))
	}
	s.Require().NoError(s.store.LogError(s, "run_command", "exit status 127", ""))
	s.store.LogMessage(entity.RoleUser, "hello there")
	_, err := s.store.SaveSession(s)
	s.Require().NoError(err)

	full := s.store.RenderContext(1000)
	s.True(strings.HasPrefix(full, "User: ada, Desktop: /home/ada/Desktop\nKnown: "), full)
	s.Contains(full, "\nAvoid: run_command:exit status 127 (1x)")
	s.Contains(full, "\nRecent: User asked: hello there")

	for _, budget := range []int{0, 5, 10, 20, 40, 80} {
		out := s.store.RenderContext(budget)
		s.LessOrEqual(utf8.RuneCountInString(out), budget*memory.CharsPerToken, "budget %d", budget)
	}

	// The facts segment is too large for 20 tokens and is skipped, not clipped.
	small := s.store.RenderContext(20)
	s.NotContains(small, "Known:")
	s.Contains(small, "User: ada")
}

func (s *StoreTestSuite) TestSaveSession() {
	rec, err := s.store.SaveSession(s)
	s.Require().NoError(err)
	s.Nil(rec)

	s.store.LogMessage(entity.RoleUser, "  open   my downloads folder  ")
	s.store.LogMessage(entity.RoleAssistant, strings.Repeat("x", 500))
	s.store.LogMessage(entity.RoleUser, strings.Repeat("y", 100))
	s.store.LogMessage(entity.RoleUser, "third")
	s.store.LogMessage(entity.RoleUser, "fourth is not summarized")

	rec, err = s.store.SaveSession(s)
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.NotEmpty(rec.ID)
	s.Equal(5, rec.MessageCount)
	s.Equal("User asked: open my downloads folder | "+strings.Repeat("y", 60)+" | third", rec.Summary)

	transcript, err := s.store.Transcript(s, rec.ID)
	s.Require().NoError(err)
	s.Require().Len(transcript, 5)
	s.Len(transcript[1].Text, 200)

	s.reopen()
	sessions := s.store.Sessions(10)
	s.Require().Len(sessions, 1)
	s.Equal(rec.ID, sessions[0].ID)
}

func (s *StoreTestSuite) TestSessionHistoryIsBounded() {
	s.conf.SessionLimit = 2
	for i := 0; i < 4; i++ {
		s.store.LogMessage(entity.RoleUser, fmt.Sprintf("q%d", i))
		_, err := s.store.SaveSession(s)
		s.Require().NoError(err)
	}

	sessions := s.store.Sessions(10)
	s.Require().Len(sessions, 2)
	s.Equal("User asked: q2", sessions[0].Summary)
	s.Equal("User asked: q3", sessions[1].Summary)
}

func (s *StoreTestSuite) TestPersistsAcrossReopen() {
	s.Require().NoError(s.store.SetIdentity(s, "ada", ""))
	s.Require().NoError(s.store.Learn(s, "User prefers Go", 7))
	s.Require().NoError(s.store.LogError(s, "run_command", "boom", ""))

	s.reopen()

	s.Equal("ada", s.store.Identity().Name)
	s.Require().Len(s.store.Facts(), 1)
	s.Equal("User prefers Go", s.store.Facts()[0].Text)
	s.Len(s.store.Lessons(5), 1)
}

func TestInvalidDocumentsFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	writes := map[string]string{
		"facts.json":   `{"facts":[{"text":"ok","priority":99,"access_count":1}]}`,
		"errors.json":  `not json`,
		"history.json": `{"sessions":[{"id":"s1","summary":"kept"}]}`,
	}
	for name, body := range writes {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	conf := config.NewMemoryConfig()
	conf.Dir = dir
	suite.Run(t, &invalidDocSuite{conf: conf})
}

type invalidDocSuite struct {
	mytesting.Suite
	conf *config.MemoryConfig
}

func (s *invalidDocSuite) TestLoad() {
	store, err := memory.Open(s, s.Logger, s.conf)
	s.Require().NoError(err)
	defer store.Close()

	s.Empty(store.Facts())
	s.Empty(store.Lessons(5))
	s.Require().Len(store.Sessions(5), 1)
	s.Equal("kept", store.Sessions(5)[0].Summary)
}
