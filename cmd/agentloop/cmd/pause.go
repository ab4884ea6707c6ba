//go:build !windows

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/habiliai/agentloop/engine"
)

// watchPause toggles the gate on SIGUSR1 until ctx ends or stop is called.
func watchPause(ctx context.Context, gate *engine.Gate, out io.Writer) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				if gate.Toggle() {
					fmt.Fprintln(out, "[paused, send SIGUSR1 again to resume]")
				} else {
					fmt.Fprintln(out, "[resumed]")
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
	}
}
