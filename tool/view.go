package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/habiliai/agentloop/parser"
)

// View is a scoped subset of a registry. Membership is checked before any
// handler runs; an out-of-scope call never reaches the tool.
type View struct {
	registry *Registry
	label    string
	allowed  []string
	set      map[string]struct{}
}

func newView(r *Registry, label string, allowed []string) *View {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	return &View{
		registry: r,
		label:    label,
		allowed:  allowed,
		set:      set,
	}
}

func (v *View) Label() string {
	return v.label
}

func (v *View) Names() []string {
	return append([]string(nil), v.allowed...)
}

func (v *View) Allows(name string) bool {
	_, ok := v.set[name]
	return ok
}

func (v *View) Schemas() []Schema {
	schemas := make([]Schema, 0, len(v.allowed))
	for _, name := range v.allowed {
		if t, ok := v.registry.Lookup(name); ok {
			schemas = append(schemas, t.Schema)
		}
	}
	return schemas
}

func (v *View) Signatures() []parser.ToolSignature {
	schemas := v.Schemas()
	sigs := make([]parser.ToolSignature, 0, len(schemas))
	for _, s := range schemas {
		sigs = append(sigs, s.Signature())
	}
	return sigs
}

// Describe renders one capability line per tool.
func (v *View) Describe() string {
	schemas := v.Schemas()
	lines := make([]string, 0, len(schemas))
	for _, s := range schemas {
		lines = append(lines, s.CapabilityLine())
	}
	return strings.Join(lines, "\n")
}

func (v *View) Dispatch(ctx context.Context, name string, args map[string]any) Observation {
	t, ok := v.registry.Lookup(name)
	if !ok || !v.Allows(name) {
		v.registry.logger.Warn("tool call out of scope", "tool", name, "view", v.label)
		return v.notAvailable(name)
	}

	return v.registry.invoke(ctx, t, args)
}

func (v *View) notAvailable(name string) Observation {
	scope := ""
	if v.label != "" {
		scope = " for " + v.label
	}
	obs := Failed(fmt.Sprintf("Tool '%s' not available%s. Use: %s", name, scope, strings.Join(v.allowed, ", ")))
	obs.OutOfScope = true
	return obs
}
