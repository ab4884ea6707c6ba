package conversation

import (
	"strings"

	"github.com/habiliai/agentloop/entity"
)

const (
	PlaceholderUserStart    = "Hello."
	PlaceholderUserContinue = "Continue."
)

// RepairRoles rewrites msgs into the shape chat templates accept: at most one
// leading system message, strict user/assistant alternation starting with user,
// and no trailing assistant message. Applying it twice yields the same result.
func RepairRoles(msgs []entity.Message) []entity.Message {
	var (
		system  *entity.Message
		systems []string
		body    []entity.Message
	)
	for _, msg := range msgs {
		if msg.Role == entity.RoleSystem {
			if strings.TrimSpace(msg.Content) == "" {
				continue
			}
			if system == nil {
				system = &msg
			}
			systems = append(systems, msg.Content)
			continue
		}
		if n := len(body); n > 0 && body[n-1].Role == msg.Role {
			body[n-1].Content = joinContent(body[n-1].Content, msg.Content)
			continue
		}
		body = append(body, msg)
	}

	if len(body) == 0 || body[0].Role != entity.RoleUser {
		body = append([]entity.Message{entity.UserMessage(PlaceholderUserStart)}, body...)
	}
	if body[len(body)-1].Role == entity.RoleAssistant {
		body = append(body, entity.UserMessage(PlaceholderUserContinue))
	}

	out := make([]entity.Message, 0, len(body)+1)
	if system != nil {
		merged := *system
		merged.Content = strings.Join(systems, "\n\n")
		out = append(out, merged)
	}

	return append(out, body...)
}

func joinContent(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n\n" + b
	}
}
