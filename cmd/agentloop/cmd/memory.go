package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/habiliai/agentloop/memory"
	"github.com/spf13/cobra"
)

func newMemoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and edit the agent's memory",
	}

	withStore := func(run func(cmd *cobra.Command, args []string, store *memory.Store, conf *config.Config) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			conf, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := mylog.NewLogger(conf.Log.LogLevel, conf.Log.LogHandler)
			store, err := memory.Open(cmd.Context(), logger, &conf.Memory)
			if err != nil {
				return err
			}
			defer store.Close()
			return run(cmd, args, store, conf)
		}
	}

	factsCmd := &cobra.Command{
		Use:   "facts",
		Short: "List facts, highest score first",
		RunE: withStore(func(cmd *cobra.Command, _ []string, store *memory.Store, _ *config.Config) error {
			facts := store.Facts()
			if len(facts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No facts.")
				return nil
			}
			for _, f := range facts {
				fmt.Fprintf(cmd.OutOrStdout(), "[p%d x%d] %s\n", f.Priority, f.AccessCount, f.Text)
			}
			return nil
		}),
	}

	var priority int
	learnCmd := &cobra.Command{
		Use:   "learn <fact...>",
		Short: "Save a fact",
		Args:  cobra.MinimumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *memory.Store, _ *config.Config) error {
			text := strings.Join(args, " ")
			if err := store.Learn(cmd.Context(), text, priority); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Remembered: %s\n", text)
			return nil
		}),
	}
	learnCmd.Flags().IntVarP(&priority, "priority", "p", 7, "Importance from 0 to 10")

	forgetCmd := &cobra.Command{
		Use:   "forget <keyword>",
		Short: "Forget every fact containing keyword",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *memory.Store, _ *config.Config) error {
			n, err := store.Forget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d fact(s)\n", n)
			return nil
		}),
	}

	var budget int
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Print the memory context the agent sees",
		RunE: withStore(func(cmd *cobra.Command, _ []string, store *memory.Store, conf *config.Config) error {
			if budget <= 0 {
				budget = conf.Single.MemoryBudget
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.RenderContext(budget))
			return nil
		}),
	}
	contextCmd.Flags().IntVarP(&budget, "budget", "b", 0, "Token budget (default from config)")

	var showLog bool
	errorsCmd := &cobra.Command{
		Use:   "errors",
		Short: "List recurring error patterns",
		RunE: withStore(func(cmd *cobra.Command, _ []string, store *memory.Store, _ *config.Config) error {
			out := cmd.OutOrStdout()
			if showLog {
				for _, e := range store.ErrorLog() {
					fmt.Fprintf(out, "%s %s: %s\n", e.Time.Format(time.DateTime), e.Tool, e.Error)
				}
				return nil
			}
			for _, p := range store.Lessons(-1) {
				fmt.Fprintf(out, "%dx %s\n", p.Count, p.Key())
			}
			return nil
		}),
	}
	errorsCmd.Flags().BoolVar(&showLog, "log", false, "Print the raw error log instead")

	var limit int
	sessionsCmd := &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List saved sessions, or print one transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *memory.Store, _ *config.Config) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				entries, err := store.Transcript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "%s: %s\n", e.Role, e.Text)
				}
				return nil
			}
			for _, rec := range store.Sessions(limit) {
				fmt.Fprintf(out, "%s  %s  (%d messages) %s\n", rec.ID, rec.StartedAt.Format(time.DateTime), rec.MessageCount, rec.Summary)
			}
			return nil
		}),
	}
	sessionsCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions")

	cmd.AddCommand(factsCmd, learnCmd, forgetCmd, contextCmd, errorsCmd, sessionsCmd)

	return cmd
}
