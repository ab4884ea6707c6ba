package cmd

import (
	"context"
	"io"

	"github.com/habiliai/agentloop/engine"
)

func watchPause(context.Context, *engine.Gate, io.Writer) (stop func()) {
	return func() {}
}
