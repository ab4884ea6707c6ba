package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/engine"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/habiliai/agentloop/llm"
	"github.com/habiliai/agentloop/llm/llmtest"
	"github.com/habiliai/agentloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTeamRegistry(t *testing.T) (*tool.Registry, string) {
	t.Helper()
	workspace := t.TempDir()
	conf := config.NewToolConfig()
	conf.Workspace = workspace
	registry := tool.NewRegistry(mylog.Discard(), conf)
	require.NoError(t, registry.RegisterBuiltins(nil))
	t.Cleanup(registry.Close)
	return registry, workspace
}

func newTeam(client llm.Client, registry *tool.Registry) *engine.Team {
	return engine.NewTeam(mylog.Discard(), client, registry, config.NewTeamConfig().Roles, config.NewWorkerLoopConfig())
}

func TestDelegateToUnknownRole(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	registry, _ := newTeamRegistry(t)
	client := llmtest.Replies(
		"Thought: needs a pilot\nDelegate: pilot\nTask: fly to the moon",
		"Final Answer: nobody can fly",
	)
	team := newTeam(client, registry)
	coordinator := engine.NewCoordinator(mylog.Discard(), client, registry.View("coordinator"), team, config.NewCoordinatorLoopConfig())

	reply, err := coordinator.Send(t.Context(), "fly me to the moon")
	require.NoError(t, err)
	assert.Equal(t, "nobody can fly", reply.Text)
	assert.Equal(t, 2, reply.Rounds)

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	obs := reqs[1].Messages[len(reqs[1].Messages)-1].Content
	assert.True(t, strings.HasPrefix(obs, "Worker Result (pilot): No worker named 'pilot'. Use: researcher, coder, file_manager"), obs)
	assert.Contains(t, obs, "Continue delegating or give Final Answer.")

	history := coordinator.History()
	require.Len(t, history, 4)
	assert.Equal(t, entity.RoleUser, history[0].Role)
	assert.Contains(t, history[1].Content, "Delegate: pilot")
	assert.Equal(t, "Worker Result (pilot): No worker named 'pilot'. Use: researcher, coder, file_manager", history[2].Content)
	assert.Equal(t, "nobody can fly", history[3].Content)
}

func TestDelegateRunsWorker(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	registry, workspace := newTeamRegistry(t)
	client := llmtest.Replies(
		"Thought: a file job\nDelegate: File_Manager\nTask: create hello.txt containing hey",
		"Thought: write it\nAction: create_file\nAction Input: {\"file_path\": \"hello.txt\", \"content\": \"hey\"}",
		"Thought: completed\nFinal Answer: created hello.txt",
		"Final Answer: all done",
	)
	var events []engine.Event
	team := engine.NewTeam(mylog.Discard(), client, registry, config.NewTeamConfig().Roles, config.NewWorkerLoopConfig(),
		engine.WithTeamWorkspace(workspace),
		engine.WithTeamObserver(func(e engine.Event) { events = append(events, e) }),
	)
	coordinator := engine.NewCoordinator(mylog.Discard(), client, registry.View("coordinator"), team, config.NewCoordinatorLoopConfig())

	reply, err := coordinator.Send(t.Context(), "make me a hello file")
	require.NoError(t, err)
	assert.Equal(t, "all done", reply.Text)

	data, err := os.ReadFile(filepath.Join(workspace, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hey", string(data))

	reqs := client.Requests()
	require.Len(t, reqs, 4)

	assert.Contains(t, reqs[0].Messages[0].Content, "- file_manager: create/read/delete/move files")

	worker := reqs[1].Messages
	require.Len(t, worker, 2)
	assert.Contains(t, worker[0].Content, "You are a file_manager worker")
	assert.Contains(t, worker[0].Content, "- download_file(")
	assert.NotContains(t, worker[0].Content, "- web_search(")
	assert.Equal(t, "create hello.txt containing hey", worker[1].Content)
	assert.Equal(t, config.WorkerStop, reqs[1].Stop)

	last := reqs[3].Messages[len(reqs[3].Messages)-1].Content
	assert.True(t, strings.HasPrefix(last, "Worker Result (file_manager): created hello.txt"), last)

	require.NotEmpty(t, events)
	assert.Equal(t, "file_manager", events[0].Actor)
}

func TestWorkerToolScope(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	registry, workspace := newTeamRegistry(t)
	client := llmtest.Replies(
		"Action: create_file\nAction Input: {\"file_path\": \"x.txt\", \"content\": \"x\"}",
		"Final Answer: not allowed",
	)
	team := newTeam(client, registry)

	result := team.Delegate(t.Context(), "researcher", "write x.txt")
	assert.Equal(t, "not allowed", result)

	obs := client.Requests()[1].Messages
	assert.Contains(t, obs[len(obs)-1].Content, "Tool 'create_file' not available for researcher")
	assert.NoFileExists(t, filepath.Join(workspace, "x.txt"))
}

func TestWorkerBackendFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	registry, _ := newTeamRegistry(t)
	client := llmtest.NewScriptedClient(llmtest.Step{Err: llmtest.Fatal()})
	team := newTeam(client, registry)

	result := team.Delegate(t.Context(), "coder", "compile it")
	assert.True(t, strings.HasPrefix(result, "Worker error: "), result)
}

type blockingClient struct {
	started chan struct{}
}

func (c *blockingClient) Complete(ctx context.Context, _ llm.Request) (string, error) {
	close(c.started)
	<-ctx.Done()
	return "", ctx.Err()
}

func TestDelegateCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	registry, _ := newTeamRegistry(t)
	client := &blockingClient{started: make(chan struct{})}
	team := newTeam(client, registry)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		<-client.started
		cancel()
	}()

	done := make(chan string, 1)
	go func() {
		done <- team.Delegate(ctx, "coder", "spin forever")
	}()

	select {
	case result := <-done:
		assert.True(t, strings.HasPrefix(result, "Worker "), result)
	case <-time.After(5 * time.Second):
		t.Fatal("delegate did not return after cancel")
	}
}

func TestTeamSharesGate(t *testing.T) {
	registry, _ := newTeamRegistry(t)
	team := newTeam(llmtest.Replies(), registry)
	coordinator := engine.NewCoordinator(mylog.Discard(), llmtest.Replies(), registry.View("coordinator"), team, config.NewCoordinatorLoopConfig())

	assert.Same(t, team.Gate(), coordinator.Gate())
	assert.Equal(t, []string{"researcher", "coder", "file_manager"}, team.RoleNames())
}
