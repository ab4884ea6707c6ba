package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/conversation"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
)

type (
	// Client is an opaque completion backend: messages in, generated text out.
	Client interface {
		Complete(ctx context.Context, req Request) (string, error)
	}

	Request struct {
		Messages    []entity.Message
		Temperature float64
		MaxTokens   int
		Stop        []string

		// Prefill is sent as the start of the assistant reply and is
		// re-attached to the returned text.
		Prefill string
	}
)

type Class int

const (
	// ClassMalformed means the backend rejected or choked on the request.
	// A smaller request may succeed.
	ClassMalformed Class = iota
	ClassUnavailable
	ClassTimeout
)

func (c Class) String() string {
	switch c {
	case ClassMalformed:
		return "malformed"
	case ClassUnavailable:
		return "unavailable"
	case ClassTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Error is every failure a Client returns. It matches
// errors.ErrBackendTransient for ClassMalformed and errors.ErrBackendFatal
// otherwise.
type Error struct {
	Class      Class
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion backend %s (HTTP %d): %v", e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion backend %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() []error {
	sentinel := errors.ErrBackendFatal
	if e.Transient() {
		sentinel = errors.ErrBackendTransient
	}
	return []error{sentinel, e.Err}
}

func (e *Error) Transient() bool {
	return e.Class == ClassMalformed
}

// classifyStatus maps an HTTP status from the backend onto an error class.
func classifyStatus(status int) Class {
	switch status {
	case 400, 413, 422, 500:
		return ClassMalformed
	default:
		return ClassUnavailable
	}
}

// classifyTransport handles failures that never produced an HTTP status:
// deadlines are timeouts, everything else (connection refused, reset, DNS)
// means the backend is unavailable.
func classifyTransport(ctx context.Context, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Class: ClassTimeout, Err: err}
	}
	return &Error{Class: ClassUnavailable, Err: err}
}

// prepare repairs the role sequence and attaches the prefill.
func prepare(req Request) []entity.Message {
	msgs := conversation.RepairRoles(req.Messages)
	if req.Prefill != "" {
		msgs = append(msgs, entity.AssistantMessage(req.Prefill))
	}
	return msgs
}

func finish(req Request, text string) string {
	if req.Prefill == "" {
		return text
	}
	if strings.HasPrefix(text, req.Prefill) {
		return text
	}
	return req.Prefill + text
}

// NewClient builds the client for conf.Provider.
func NewClient(logger *slog.Logger, conf *config.ModelConfig) (Client, error) {
	switch conf.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(logger, conf), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(logger, conf), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown provider %q", conf.Provider)
	}
}
