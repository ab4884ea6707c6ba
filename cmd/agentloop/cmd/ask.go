package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/habiliai/agentloop"
	"github.com/habiliai/agentloop/engine"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message...>",
		Short: "Run one turn on the single agent and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOnce(cmd, strings.Join(args, " "), (*agentloop.Runtime).Ask)
		},
	}
}

func newTeamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "team <task...>",
		Short: "Run one turn on the coordinator, delegating to workers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOnce(cmd, strings.Join(args, " "), (*agentloop.Runtime).Delegate)
		},
	}
}

type sendFunc func(rt *agentloop.Runtime, ctx context.Context, text string) (*engine.Reply, error)

func (a *app) runOnce(cmd *cobra.Command, text string, send sendFunc) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rt, err := a.openRuntime(ctx, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	stop := watchPause(ctx, rt.Gate(), cmd.ErrOrStderr())
	defer stop()

	reply, err := send(rt, ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply.Text)
	return nil
}
