package agentloop

import (
	"context"
	"log/slog"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/engine"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/habiliai/agentloop/knowledge"
	"github.com/habiliai/agentloop/llm"
	"github.com/habiliai/agentloop/memory"
	"github.com/habiliai/agentloop/tool"
)

type (
	// Runtime wires a completion backend, the tool registry, the memory
	// store and knowledge index into a single-tier agent and a
	// coordinator/worker team sharing one pause gate.
	Runtime struct {
		conf      *config.Config
		logger    *slog.Logger
		client    llm.Client
		registry  *tool.Registry
		store     *memory.Store
		ownsStore bool
		knowledge *knowledge.Index
		gate      *engine.Gate
		observer  engine.Observer
		agent     *engine.Loop
		team      *engine.Team
		leader    *engine.Loop

		waitReady  bool
		extensions bool
		identity   *memory.Identity
	}
	Option func(*Runtime)
)

func WithConfig(conf *config.Config) Option {
	return func(r *Runtime) {
		r.conf = conf
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

func WithModelConfig(conf config.ModelConfig) Option {
	return func(r *Runtime) {
		r.conf.Model = conf
	}
}

// WithClient replaces the backend built from the model config.
func WithClient(client llm.Client) Option {
	return func(r *Runtime) {
		r.client = client
	}
}

// WithMemoryStore uses an already opened store. The runtime will not close it.
func WithMemoryStore(store *memory.Store) Option {
	return func(r *Runtime) {
		r.store = store
	}
}

func WithObserver(o engine.Observer) Option {
	return func(r *Runtime) {
		r.observer = o
	}
}

// WithIdentity records who the user is and where their desktop lives.
func WithIdentity(name, desktop string) Option {
	return func(r *Runtime) {
		r.identity = &memory.Identity{Name: name, Desktop: desktop}
	}
}

// WithWaitReady blocks NewRuntime until the backend health endpoint answers.
func WithWaitReady(wait bool) Option {
	return func(r *Runtime) {
		r.waitReady = wait
	}
}

// WithExtensions toggles loading custom tool descriptors and MCP servers.
func WithExtensions(load bool) Option {
	return func(r *Runtime) {
		r.extensions = load
	}
}

func NewRuntime(ctx context.Context, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		conf:       config.NewConfig(),
		extensions: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.conf.Validate(); err != nil {
		return nil, err
	}

	if r.logger == nil {
		r.logger = mylog.NewLogger(r.conf.Log.LogLevel, r.conf.Log.LogHandler)
	}
	if r.observer == nil {
		r.observer = func(engine.Event) {}
	}

	var err error
	if r.client == nil {
		if r.client, err = llm.NewClient(r.logger, &r.conf.Model); err != nil {
			return nil, err
		}
		if r.waitReady {
			if err := llm.WaitReady(ctx, r.logger, &r.conf.Model); err != nil {
				return nil, err
			}
		}
	}

	if r.store == nil {
		if r.store, err = memory.Open(ctx, r.logger, &r.conf.Memory); err != nil {
			return nil, errors.Wrapf(err, "failed to open memory store")
		}
		r.ownsStore = true
	}
	if r.identity != nil {
		if err := r.store.SetIdentity(ctx, r.identity.Name, r.identity.Desktop); err != nil {
			r.Close(ctx)
			return nil, errors.Wrapf(err, "failed to save identity")
		}
	}

	r.registry = tool.NewRegistry(r.logger, &r.conf.Tool)
	if err := r.registry.RegisterBuiltins(r.store); err != nil {
		r.Close(ctx)
		return nil, errors.Wrapf(err, "failed to register built-in tools")
	}
	if r.extensions {
		r.registry.LoadExtensions(ctx)
	}

	if r.knowledge, err = knowledge.Load(r.logger, &r.conf.Knowledge); err != nil {
		r.Close(ctx)
		return nil, err
	}

	r.gate = engine.NewGate()
	workspace := r.conf.Tool.Workspace

	r.agent = engine.NewLoop(r.logger, r.client, r.registry.View("agent"), &r.conf.Single,
		engine.WithMemory(r.store),
		engine.WithKnowledge(r.knowledge),
		engine.WithGate(r.gate),
		engine.WithObserver(r.observer),
		engine.WithWorkspace(workspace),
		engine.WithSelfLearning(true),
	)

	r.team = engine.NewTeam(r.logger, r.client, r.registry, r.conf.Team.Roles, &r.conf.Worker,
		engine.WithTeamGate(r.gate),
		engine.WithTeamObserver(r.observer),
		engine.WithTeamWorkspace(workspace),
	)
	r.leader = engine.NewCoordinator(r.logger, r.client, r.registry.View("coordinator"), r.team, &r.conf.Coordinator,
		engine.WithMemory(r.store),
		engine.WithObserver(r.observer),
		engine.WithWorkspace(workspace),
	)

	r.logger.Debug("runtime ready",
		"provider", r.conf.Model.Provider,
		"tools", len(r.registry.Names()),
		"roles", len(r.conf.Team.Roles),
		"knowledge_chunks", r.knowledge.Len(),
	)
	return r, nil
}

// Ask runs one turn on the single-tier agent.
func (r *Runtime) Ask(ctx context.Context, text string) (*engine.Reply, error) {
	return r.agent.Send(ctx, text)
}

// Delegate runs one turn on the coordinator, which may hand subtasks to workers.
func (r *Runtime) Delegate(ctx context.Context, text string) (*engine.Reply, error) {
	return r.leader.Send(ctx, text)
}

// NewChat clears both conversations and closes the current memory session.
func (r *Runtime) NewChat(ctx context.Context) error {
	r.agent.Reset()
	r.leader.Reset()
	_, err := r.store.SaveSession(ctx)
	return err
}

func (r *Runtime) Agent() *engine.Loop {
	return r.agent
}

func (r *Runtime) Coordinator() *engine.Loop {
	return r.leader
}

func (r *Runtime) Team() *engine.Team {
	return r.team
}

func (r *Runtime) Registry() *tool.Registry {
	return r.registry
}

func (r *Runtime) Memory() *memory.Store {
	return r.store
}

func (r *Runtime) Knowledge() *knowledge.Index {
	return r.knowledge
}

func (r *Runtime) Gate() *engine.Gate {
	return r.gate
}

func (r *Runtime) Config() *config.Config {
	return r.conf
}

// Close saves the open session, stops extension processes and closes the
// memory store if the runtime opened it.
func (r *Runtime) Close(ctx context.Context) {
	if r.store != nil {
		if _, err := r.store.SaveSession(ctx); err != nil {
			r.logger.Warn("failed to save session", "error", err)
		}
	}
	if r.registry != nil {
		r.registry.Close()
	}
	if r.ownsStore && r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Warn("failed to close memory store", "error", err)
		}
	}
}
