package engine_test

import (
	"testing"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/engine"
	"github.com/habiliai/agentloop/memory"
	"github.com/habiliai/agentloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var promptTools = []tool.Schema{
	{
		Name:        "read_file",
		Description: "Read a text file.",
		Params:      []tool.Param{{Name: "file_path", Type: "string", Required: true}},
	},
}

func TestSinglePrompt(t *testing.T) {
	text, err := engine.SinglePrompt.Render(engine.PromptValues{
		Name:      "yagu",
		Now:       time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		Workspace: "/home/me",
		Tools:     promptTools,
		Memory:    "Known: likes tea",
		Knowledge: "KNOWLEDGE (from your files):\n[a.md] tea facts",
	})
	require.NoError(t, err)

	assert.Contains(t, text, "You are yagu")
	assert.Contains(t, text, "Today: 2024-03-04 Monday")
	assert.Contains(t, text, "TOOLS (1):")
	assert.Contains(t, text, promptTools[0].CapabilityLine())
	assert.Contains(t, text, "MEMORY:\nKnown: likes tea")
	assert.Contains(t, text, "[a.md] tea facts")
	assert.Contains(t, text, "wrong answer.\n4. Use the KNOWLEDGE section below; it is verified.\n\nTOOL FORMAT:")
}

func TestSinglePromptWithoutMemory(t *testing.T) {
	text, err := engine.SinglePrompt.Render(engine.PromptValues{Name: "yagu", Tools: promptTools})
	require.NoError(t, err)

	assert.NotContains(t, text, "MEMORY:")
	assert.NotContains(t, text, "KNOWLEDGE")
	assert.Contains(t, text, "wrong answer.\n\nTOOL FORMAT:")
}

func TestCoordinatorPrompt(t *testing.T) {
	roles := config.NewTeamConfig().Roles
	roles[0].Description = ""

	text, err := engine.CoordinatorPrompt.Render(engine.PromptValues{
		Name:    "yagu",
		Tools:   promptTools,
		Workers: roles,
	})
	require.NoError(t, err)

	assert.Contains(t, text, "- researcher: web_search, fetch_url, read_feed")
	assert.Contains(t, text, "- coder: write/edit code")
	assert.Contains(t, text, "Delegate: worker_name")
}

func TestWorkerPrompt(t *testing.T) {
	text, err := engine.WorkerPrompt.Render(engine.PromptValues{
		Role:      "coder",
		Tools:     promptTools,
		Identity:  memory.Identity{Name: "sam", Desktop: "/home/sam/Desktop"},
		Workspace: "/work",
	})
	require.NoError(t, err)

	assert.Contains(t, text, "You are a coder worker")
	assert.Contains(t, text, "- Desktop: /home/sam/Desktop")
	assert.Contains(t, text, "- Workspace: /work")
}

func TestParsePrompt(t *testing.T) {
	p, err := engine.ParsePrompt("custom", "Hi {{ .Name | upper }} with {{ len .Tools }} tools")
	require.NoError(t, err)

	text, err := p.Render(engine.PromptValues{Name: "yagu", Tools: promptTools})
	require.NoError(t, err)
	assert.Equal(t, "Hi YAGU with 1 tools", text)

	_, err = engine.ParsePrompt("broken", "{{ .Name ")
	assert.Error(t, err)
}
