package conversation

import (
	"sync"

	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/internal/stringutils"
)

// TrimPolicy bounds a message sequence. Zero values disable the corresponding bound.
type TrimPolicy struct {
	MaxMessages int `json:"maxMessages" mapstructure:"max_messages"`
	MaxChars    int `json:"maxChars" mapstructure:"max_chars"`
}

type History struct {
	mu       sync.Mutex
	policy   TrimPolicy
	messages []entity.Message
}

func NewHistory(policy TrimPolicy) *History {
	return &History{
		policy: policy,
	}
}

func (h *History) Policy() TrimPolicy {
	return h.policy
}

func (h *History) Append(msgs ...entity.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msgs...)
}

// Trim applies the history policy in place.
func (h *History) Trim() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = Trim(h.messages, h.policy)
}

// Reset replaces the whole history with msgs.
func (h *History) Reset(msgs ...entity.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append([]entity.Message(nil), msgs...)
}

func (h *History) Messages() []entity.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]entity.Message(nil), h.messages...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.messages)
}

// Trim keeps the most recent policy.MaxMessages messages, drops assistant
// messages at the head and caps each message at policy.MaxChars characters.
func Trim(msgs []entity.Message, policy TrimPolicy) []entity.Message {
	if policy.MaxMessages > 0 && len(msgs) > policy.MaxMessages {
		msgs = msgs[len(msgs)-policy.MaxMessages:]
	}
	for len(msgs) > 0 && msgs[0].Role == entity.RoleAssistant {
		msgs = msgs[1:]
	}

	out := make([]entity.Message, 0, len(msgs))
	for _, msg := range msgs {
		if policy.MaxChars > 0 {
			msg.Content = stringutils.Truncate(msg.Content, policy.MaxChars, "...")
		}
		out = append(out, msg)
	}

	return out
}
