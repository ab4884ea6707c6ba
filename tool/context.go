package tool

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Context is handed to tool handlers. It carries the dispatch deadline plus
// the workspace relative paths resolve against.
type Context struct {
	context.Context

	schema    Schema
	workspace string
	logger    *slog.Logger
}

func (c *Context) Schema() Schema {
	return c.schema
}

func (c *Context) Logger() *slog.Logger {
	return c.logger
}

func (c *Context) Workspace() string {
	return c.workspace
}

// ResolvePath expands a leading ~ and makes relative paths relative to the workspace.
func (c *Context) ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.workspace, p)
}
