package memory

import (
	"strings"
	"time"

	"github.com/habiliai/agentloop/errors"
)

const (
	MaxPriority   = 10
	CharsPerToken = 4

	docUser    = "user"
	docFacts   = "facts"
	docErrors  = "errors"
	docHistory = "history"
)

type (
	Fact struct {
		Text           string    `json:"text"`
		Priority       int       `json:"priority"`
		CreatedAt      time.Time `json:"created_at"`
		LastAccessedAt time.Time `json:"last_accessed_at"`
		AccessCount    int       `json:"access_count"`
	}

	ErrorPattern struct {
		Tool      string `json:"tool"`
		Signature string `json:"signature"`
		Count     int    `json:"count"`
	}

	ErrorEntry struct {
		Tool    string    `json:"tool"`
		Error   string    `json:"error"`
		Request string    `json:"request,omitempty"`
		Time    time.Time `json:"time"`
	}

	SessionRecord struct {
		ID           string    `json:"id"`
		StartedAt    time.Time `json:"started_at"`
		EndedAt      time.Time `json:"ended_at"`
		MessageCount int       `json:"message_count"`
		Summary      string    `json:"summary"`
	}

	TranscriptEntry struct {
		Role string    `json:"role"`
		Text string    `json:"text"`
		Time time.Time `json:"time"`
	}

	Identity struct {
		Name    string   `json:"name"`
		Desktop string   `json:"desktop,omitempty"`
		Notes   []string `json:"notes,omitempty"`
	}
)

// Key identifies the pattern in the aggregated counter.
func (p ErrorPattern) Key() string {
	return p.Tool + ":" + p.Signature
}

// Line renders the identity for the prompt; empty when no name is known.
func (i Identity) Line() string {
	if i.Name == "" {
		return ""
	}
	line := "User: " + i.Name
	if i.Desktop != "" {
		line += ", Desktop: " + i.Desktop
	}
	return line
}

// document is implemented by every persisted shape. A document failing
// validate is replaced by its default on load.
type document interface {
	validate() error
}

type (
	factsDoc struct {
		Facts []Fact `json:"facts"`
	}
	errorsDoc struct {
		Log      []ErrorEntry   `json:"log"`
		Patterns []ErrorPattern `json:"patterns"`
	}
	historyDoc struct {
		Sessions []SessionRecord `json:"sessions"`
	}
	transcriptDoc struct {
		ID       string            `json:"id"`
		Messages []TranscriptEntry `json:"messages"`
	}
)

func (d *Identity) validate() error {
	return nil
}

func (d *factsDoc) validate() error {
	for _, f := range d.Facts {
		if strings.TrimSpace(f.Text) == "" {
			return errors.Wrapf(errors.ErrInvalidDocument, "fact without text")
		}
		if f.Priority < 0 || f.Priority > MaxPriority {
			return errors.Wrapf(errors.ErrInvalidDocument, "fact %q has priority %d", f.Text, f.Priority)
		}
		if f.AccessCount < 0 {
			return errors.Wrapf(errors.ErrInvalidDocument, "fact %q has negative access count", f.Text)
		}
	}
	return nil
}

func (d *errorsDoc) validate() error {
	for _, p := range d.Patterns {
		if p.Tool == "" || p.Count < 1 {
			return errors.Wrapf(errors.ErrInvalidDocument, "bad error pattern %q", p.Key())
		}
	}
	return nil
}

func (d *historyDoc) validate() error {
	for _, s := range d.Sessions {
		if s.ID == "" {
			return errors.Wrapf(errors.ErrInvalidDocument, "session without id")
		}
	}
	return nil
}

func (d *transcriptDoc) validate() error {
	if d.ID == "" {
		return errors.Wrapf(errors.ErrInvalidDocument, "transcript without id")
	}
	return nil
}
