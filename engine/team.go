package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/internal/stringslices"
	"github.com/habiliai/agentloop/llm"
	"github.com/habiliai/agentloop/tool"
	"github.com/mokiat/gog"
)

// Team maps role names to worker loops. Each delegation builds a fresh
// worker with its own history and a tool view limited to the role.
type Team struct {
	logger    *slog.Logger
	client    llm.Client
	registry  *tool.Registry
	conf      *config.LoopConfig
	roles     []entity.WorkerRole
	gate      *Gate
	observer  Observer
	workspace string
}

type TeamOption func(*Team)

func WithTeamObserver(o Observer) TeamOption {
	return func(t *Team) {
		t.observer = o
	}
}

func WithTeamGate(g *Gate) TeamOption {
	return func(t *Team) {
		t.gate = g
	}
}

func WithTeamWorkspace(dir string) TeamOption {
	return func(t *Team) {
		t.workspace = dir
	}
}

func NewTeam(logger *slog.Logger, client llm.Client, registry *tool.Registry, roles []entity.WorkerRole, conf *config.LoopConfig, opts ...TeamOption) *Team {
	t := &Team{
		logger:   logger,
		client:   client,
		registry: registry,
		conf:     conf,
		roles:    append([]entity.WorkerRole(nil), roles...),
		gate:     NewGate(),
		observer: func(Event) {},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Delegator = (*Team)(nil)

func (t *Team) Gate() *Gate {
	return t.gate
}

func (t *Team) Roles() []entity.WorkerRole {
	return append([]entity.WorkerRole(nil), t.roles...)
}

func (t *Team) RoleNames() []string {
	return gog.Map(t.roles, func(r entity.WorkerRole) string {
		return r.Name
	})
}

func (t *Team) role(name string) (entity.WorkerRole, bool) {
	if i := stringslices.IndexIgnoreCase(t.RoleNames(), name); i >= 0 {
		return t.roles[i], true
	}
	return entity.WorkerRole{}, false
}

// NewWorker builds the loop for one delegation to role.
func (t *Team) NewWorker(role entity.WorkerRole, runID string) *Loop {
	return NewLoop(
		t.logger.With("run", runID),
		t.client,
		t.registry.View(role.Name, role.Tools...),
		t.conf,
		WithPrompt(WorkerPrompt),
		WithLabel(role.Name),
		WithGate(t.gate),
		WithObserver(t.observer),
		WithWorkspace(t.workspace),
		withExhaustedText(WorkerExhaustedText),
	)
}

// Delegate runs task on a fresh worker on its own goroutine. Only the
// worker's final text comes back.
func (t *Team) Delegate(ctx context.Context, role, task string) string {
	r, ok := t.role(role)
	if !ok {
		return fmt.Sprintf("No worker named '%s'. Use: %s", role, strings.Join(t.RoleNames(), ", "))
	}

	runID := uuid.NewString()
	worker := t.NewWorker(r, runID)
	t.logger.Info("delegating", "worker", r.Name, "run", runID, "task", task)

	done := make(chan string, 1)
	go func() {
		reply, err := worker.Send(ctx, task)
		if err != nil {
			done <- "Worker error: " + err.Error()
			return
		}
		done <- reply.Text
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return "Worker cancelled: " + ctx.Err().Error()
	}
}
