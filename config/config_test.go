package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, conf.Model.Provider)
	assert.Equal(t, 4, conf.Single.MaxRounds)
	assert.Equal(t, 12, conf.Coordinator.MaxRounds)
	assert.Equal(t, 5, conf.Worker.MaxRounds)
	assert.Equal(t, 50, conf.Memory.FactCapacity)
	assert.Len(t, conf.Team.Roles, 3)
	assert.Equal(t, "http://127.0.0.1:8080/health", conf.Model.GetHealthURL())
}

func TestLoadFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "agentloop.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
model:
  base_url: http://gpu-box:8080/v1
  model: qwen
single:
  max_rounds: 6
  call_timeout: 90s
`), 0o644))
	t.Setenv("AGENTLOOP_MODEL_MODEL", "llama")
	t.Setenv("AGENTLOOP_MEMORY_FACT_CAPACITY", "20")

	conf, err := config.Load(file)
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:8080/v1", conf.Model.BaseURL)
	assert.Equal(t, "llama", conf.Model.Model)
	assert.Equal(t, 6, conf.Single.MaxRounds)
	assert.Equal(t, 90*time.Second, conf.Single.CallTimeout)
	assert.Equal(t, 0.4, conf.Single.Temperature)
	assert.Equal(t, 20, conf.Memory.FactCapacity)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AGENTLOOP_MODEL_PROVIDER", "carrier-pigeon")

	_, err := config.Load("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestLoadTeamFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid roles", func(t *testing.T) {
		file := filepath.Join(dir, "roles.yaml")
		require.NoError(t, os.WriteFile(file, []byte(`
roles:
  - name: writer
    description: writes prose
    tools: [create_file, read_file]
`), 0o644))

		team, err := config.LoadTeamFromFile(file)
		require.NoError(t, err)
		require.Len(t, team.Roles, 1)
		assert.Equal(t, "writer", team.Roles[0].Name)
		assert.Equal(t, []string{"create_file", "read_file"}, team.Roles[0].Tools)
	})

	t.Run("role without tools", func(t *testing.T) {
		file := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(file, []byte("roles:\n  - name: idle\n"), 0o644))

		_, err := config.LoadTeamFromFile(file)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	})
}
