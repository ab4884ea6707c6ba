package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/habiliai/agentloop"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/msgutils"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /new           start a new conversation (saves the session)
  /team <task>   hand one task to the coordinator
  @role <task>   run one task on a worker directly
  /memory        show the memory context
  /help          show this help
  /exit          quit`

func newChatCmd(a *app) *cobra.Command {
	var team bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat with the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := a.openRuntime(ctx, out, true)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			stop := watchPause(ctx, rt.Gate(), out)
			defer stop()

			send := (*agentloop.Runtime).Ask
			if team {
				send = (*agentloop.Runtime).Delegate
			}
			return chat(ctx, rt, cmd.InOrStdin(), out, send)
		},
	}

	cmd.Flags().BoolVar(&team, "team", false, "Route every message through the coordinator")

	return cmd
}

func chat(ctx context.Context, rt *agentloop.Runtime, in io.Reader, out io.Writer, send sendFunc) error {
	fmt.Fprintln(out, "agentloop ready. /help for commands.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			command, rest, _ := strings.Cut(line, " ")
			switch strings.ToLower(command) {
			case "/exit", "/quit":
				return nil
			case "/help":
				fmt.Fprintln(out, chatHelp)
			case "/new":
				if err := rt.NewChat(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Started a new conversation.")
			case "/memory":
				memCtx := rt.Memory().RenderContext(rt.Config().Single.MemoryBudget)
				if memCtx == "" {
					memCtx = "(empty)"
				}
				fmt.Fprintln(out, memCtx)
			case "/team":
				if err := reply(ctx, out, rt, strings.TrimSpace(rest), (*agentloop.Runtime).Delegate); err != nil {
					return err
				}
			default:
				fmt.Fprintf(out, "Unknown command %s. /help for commands.\n", command)
			}
			continue
		}

		if role, task, ok := msgutils.LeadingMention(line); ok && task != "" {
			fmt.Fprintln(out, rt.Team().Delegate(ctx, role, task))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		if err := reply(ctx, out, rt, line, send); err != nil {
			return err
		}
	}
}

// reply prints the answer. A backend failure ends the turn but not the chat.
func reply(ctx context.Context, out io.Writer, rt *agentloop.Runtime, text string, send sendFunc) error {
	if text == "" {
		return nil
	}
	r, err := send(rt, ctx, text)
	switch {
	case err == nil:
		fmt.Fprintln(out, r.Text)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, errors.ErrBackendFatal):
		fmt.Fprintf(out, "Backend error: %v\n", err)
	default:
		return err
	}
	return nil
}
