package tool_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/habiliai/agentloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadCustomTools(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "greet.yaml"), `
name: greet
description: Say hello to someone
params:
  - name: who
    type: string
    description: Person to greet
    required: true
  - name: times
    type: integer
command: echo Hello {{ .who | squote }}{{ if .times }} x{{ .times }}{{ end }}
timeout: 5s
`)
	writeFile(t, filepath.Join(dir, "broken.yml"), "name: [unterminated\n")
	writeFile(t, filepath.Join(dir, "nocommand.yaml"), "name: nocmd\ndescription: no command\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "name: ignored")

	conf := config.NewToolConfig()
	conf.Workspace = t.TempDir()
	conf.CustomToolsDir = dir
	r := tool.NewRegistry(mylog.Discard(), conf)
	defer r.Close()

	assert.Equal(t, 1, r.LoadCustomTools(dir))

	greet, ok := r.Lookup("greet")
	require.True(t, ok)
	assert.Equal(t, "- greet(who, times?): Say hello to someone", greet.CapabilityLine())
	assert.Equal(t, "5s", greet.Timeout.String())

	obs := r.Dispatch(t.Context(), "greet", map[string]any{"who": "Ada Lovelace"})
	require.True(t, obs.OK, obs.Text)
	assert.Equal(t, "✓ Hello Ada Lovelace", obs.Text)

	obs = r.Dispatch(t.Context(), "greet", map[string]any{"WHO": "Bob", "times": 2})
	assert.Equal(t, "✓ Hello Bob x2", obs.Text)

	obs = r.Dispatch(t.Context(), "greet", map[string]any{})
	assert.Equal(t, "✗ Missing required parameter who for greet", obs.Text)
}

func TestLoadCustomToolsMissingDir(t *testing.T) {
	r := tool.NewRegistry(mylog.Discard(), config.NewToolConfig())
	assert.Equal(t, 0, r.LoadCustomTools(filepath.Join(t.TempDir(), "absent")))
	assert.Equal(t, 0, r.LoadCustomTools(""))
}

func TestCustomDescriptorValidation(t *testing.T) {
	cases := map[string]tool.CustomDescriptor{
		"no name":      {Description: "d", Command: "echo"},
		"no command":   {Name: "x", Description: "d"},
		"bad timeout":  {Name: "x", Description: "d", Command: "echo", Timeout: "soon"},
		"bad template": {Name: "x", Description: "d", Command: "echo {{ .a "},
		"bad type":     {Name: "x", Description: "d", Command: "echo", Params: []tool.Param{{Name: "a", Type: "date"}}},
	}
	for name, desc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := desc.Tool()
			assert.Error(t, err)
		})
	}
}
