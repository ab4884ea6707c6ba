package tool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/stringutils"
	"github.com/invopop/jsonschema"
)

// Registry owns every tool known to the process. Callers never dispatch
// through it directly with an unchecked name; they dispatch through a View.
type Registry struct {
	logger *slog.Logger
	conf   *config.ToolConfig

	mtx     sync.RWMutex
	tools   map[string]Tool
	order   []string
	closers []io.Closer
}

func NewRegistry(logger *slog.Logger, conf *config.ToolConfig) *Registry {
	if conf == nil {
		conf = config.NewToolConfig()
	}
	return &Registry{
		logger: logger,
		conf:   conf,
		tools:  make(map[string]Tool),
	}
}

func (r *Registry) Config() *config.ToolConfig {
	return r.conf
}

// Register adds t. Schemas are immutable once registered: a second tool with
// the same name is rejected.
func (r *Registry) Register(t Tool) error {
	if err := t.Schema.Validate(); err != nil {
		return err
	}
	if t.Handler == nil {
		return errors.Wrapf(errors.ErrInvalidParams, "tool %s has no handler", t.Name)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.tools[t.Name]; ok {
		return errors.Errorf("tool %s already registered", t.Name)
	}
	t.Params = append([]Param(nil), t.Params...)
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)

	return nil
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return append([]string(nil), r.order...)
}

func (r *Registry) Schemas() []Schema {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	schemas := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema)
	}
	return schemas
}

// View returns the subset of tools named by names, in registration order.
// Unknown names are dropped with a warning. No names means every tool.
func (r *Registry) View(label string, names ...string) *View {
	if len(names) == 0 {
		return newView(r, label, r.Names())
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := r.Lookup(name); !ok {
			r.logger.Warn("tool not registered, dropping from view", "tool", name, "view", label)
			continue
		}
		wanted[name] = struct{}{}
	}

	allowed := make([]string, 0, len(wanted))
	for _, name := range r.Names() {
		if _, ok := wanted[name]; ok {
			allowed = append(allowed, name)
		}
	}
	return newView(r, label, allowed)
}

// Dispatch invokes name with every registered tool in scope.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) Observation {
	return r.View("").Dispatch(ctx, name, args)
}

type ExportedTool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

func (r *Registry) Export() []ExportedTool {
	schemas := r.Schemas()
	exported := make([]ExportedTool, 0, len(schemas))
	for _, s := range schemas {
		exported = append(exported, ExportedTool{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.JSONSchema(),
		})
	}
	return exported
}

func (r *Registry) addCloser(c io.Closer) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.closers = append(r.closers, c)
}

func (r *Registry) Close() {
	r.mtx.Lock()
	closers := r.closers
	r.closers = nil
	r.mtx.Unlock()

	for _, c := range closers {
		if err := c.Close(); err != nil {
			r.logger.Warn("failed to close tool extension", "error", err)
		}
	}
}

type outcome struct {
	result Result
	err    error
}

func (r *Registry) invoke(ctx context.Context, t Tool, args map[string]any) Observation {
	args, err := t.Schema.ExtractArgs(args)
	if err != nil {
		return Failed(err.Error())
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = r.conf.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tctx := &Context{
		Context:   ctx,
		schema:    t.Schema,
		workspace: r.conf.Workspace,
		logger:    r.logger.With("tool", t.Name),
	}

	started := time.Now()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: errors.Errorf("panic: %v", p)}
			}
		}()
		res, err := t.Handler(tctx, args)
		done <- outcome{result: res, err: err}
	}()

	var obs Observation
	select {
	case o := <-done:
		if o.err != nil {
			obs = Failed(fmt.Sprintf("%s failed: %v", t.Name, o.err))
		} else {
			obs = Succeeded(stringutils.SanitizeUnicodeString(o.result.Text), o.result.Payload)
		}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			obs = Failed(fmt.Sprintf("%s timed out after %s", t.Name, timeout))
		} else {
			obs = Failed(fmt.Sprintf("%s cancelled", t.Name))
		}
	}

	if r.conf.OutputLimit > 0 {
		obs.Text = stringutils.Truncate(obs.Text, r.conf.OutputLimit, truncatedMarker)
	}

	r.logger.Debug("tool dispatched", "tool", t.Name, "ok", obs.OK, "elapsed", time.Since(started))
	return obs
}
