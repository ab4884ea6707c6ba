package conversation_test

import (
	"strings"
	"testing"

	"github.com/habiliai/agentloop/conversation"
	"github.com/habiliai/agentloop/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrim(t *testing.T) {
	policy := conversation.TrimPolicy{MaxMessages: 4, MaxChars: 400}

	t.Run("keeps the most recent messages", func(t *testing.T) {
		var msgs []entity.Message
		for i := 0; i < 6; i++ {
			msgs = append(msgs, entity.UserMessage(strings.Repeat("u", i+1)), entity.AssistantMessage("a"))
		}

		trimmed := conversation.Trim(msgs, policy)
		require.Len(t, trimmed, 4)
		assert.Equal(t, entity.RoleUser, trimmed[0].Role)
		assert.Equal(t, "uuuuu", trimmed[0].Content)
	})

	t.Run("drops assistant messages at the head", func(t *testing.T) {
		msgs := []entity.Message{
			entity.UserMessage("1"),
			entity.AssistantMessage("2"),
			entity.UserMessage("3"),
			entity.AssistantMessage("4"),
			entity.UserMessage("5"),
		}

		trimmed := conversation.Trim(msgs, policy)
		require.Len(t, trimmed, 3)
		assert.Equal(t, "3", trimmed[0].Content)
	})

	t.Run("caps long messages", func(t *testing.T) {
		trimmed := conversation.Trim([]entity.Message{entity.UserMessage(strings.Repeat("x", 500))}, policy)
		require.Len(t, trimmed, 1)
		assert.Equal(t, strings.Repeat("x", 400)+"...", trimmed[0].Content)
	})

	t.Run("zero policy keeps everything", func(t *testing.T) {
		msgs := []entity.Message{entity.UserMessage("a"), entity.AssistantMessage(strings.Repeat("b", 1000))}
		assert.Equal(t, msgs, conversation.Trim(msgs, conversation.TrimPolicy{}))
	})
}

func TestHistory(t *testing.T) {
	h := conversation.NewHistory(conversation.TrimPolicy{MaxMessages: 2})
	h.Append(entity.UserMessage("one"), entity.AssistantMessage("two"), entity.UserMessage("three"))
	require.Equal(t, 3, h.Len())

	h.Trim()
	msgs := h.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "three", msgs[0].Content)

	msgs[0].Content = "mutated"
	assert.Equal(t, "three", h.Messages()[0].Content)

	h.Reset(entity.UserMessage("only"))
	assert.Equal(t, 1, h.Len())
}
