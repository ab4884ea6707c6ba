package tool

import (
	"context"
)

// RegisterBuiltins registers the built-in tools. facts may be nil, in which
// case the memory tools are left out.
func (r *Registry) RegisterBuiltins(facts FactStore) error {
	var tools []Tool
	tools = append(tools, fileTools(r.conf)...)
	tools = append(tools, commandTools(r.conf)...)
	tools = append(tools, webTools(r.conf)...)
	tools = append(tools, feedTools()...)
	tools = append(tools, clipboardTools()...)
	if facts != nil {
		tools = append(tools, memoryTools(facts)...)
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// LoadExtensions merges custom descriptors and configured MCP servers.
// Failures are logged and never abort startup.
func (r *Registry) LoadExtensions(ctx context.Context) {
	if n := r.LoadCustomTools(r.conf.CustomToolsDir); n > 0 {
		r.logger.Info("custom tools loaded", "count", n, "dir", r.conf.CustomToolsDir)
	}

	for name, server := range r.conf.MCPServers {
		if _, err := r.ConnectMCPServer(ctx, name, server); err != nil {
			r.logger.Warn("skipping MCP server", "server", name, "error", err)
		}
	}
}
