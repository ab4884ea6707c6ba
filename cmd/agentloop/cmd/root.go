package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/habiliai/agentloop"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type flags struct {
	configFile string
	rolesFile  string
	workspace  string
	logLevel   string
	logHandler string
	noWait     bool
}

type app struct {
	flags
	extra []agentloop.Option
}

// NewRootCmd builds the agentloop command tree. opts are appended to the
// runtime options every subcommand starts from.
func NewRootCmd(opts ...agentloop.Option) *cobra.Command {
	a := &app{extra: opts}
	cmd := &cobra.Command{
		Use:           "agentloop",
		Short:         "Local tool-using agent with persistent memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&a.configFile, "config", "c", "", "Config file (yaml, json or toml)")
	f.StringVar(&a.rolesFile, "roles", "", "Worker roles file (yaml)")
	f.StringVarP(&a.workspace, "workspace", "w", "", "Directory relative tool paths resolve against")
	f.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&a.logHandler, "log-handler", "", "Log handler (default or json)")
	f.BoolVar(&a.noWait, "no-wait", false, "Do not wait for the backend health endpoint")

	cmd.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newTeamCmd(a),
		newToolsCmd(a),
		newMemoryCmd(a),
	)

	return cmd
}

func (a *app) loadConfig() (*config.Config, error) {
	conf, err := config.Load(a.configFile)
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		conf.Log.LogLevel = a.logLevel
	}
	if a.logHandler != "" {
		conf.Log.LogHandler = a.logHandler
	}
	if a.workspace != "" {
		conf.Tool.Workspace = a.workspace
	}
	if a.rolesFile != "" {
		team, err := config.LoadTeamFromFile(a.rolesFile)
		if err != nil {
			return nil, err
		}
		conf.Team = team
	}
	return conf, nil
}

func (a *app) openRuntime(ctx context.Context, out io.Writer, waitReady bool) (*agentloop.Runtime, error) {
	conf, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	opts := []agentloop.Option{
		agentloop.WithConfig(conf),
		agentloop.WithLogger(mylog.NewLogger(conf.Log.LogLevel, conf.Log.LogHandler)),
		agentloop.WithWaitReady(waitReady && !a.noWait),
		agentloop.WithObserver(printEvents(out)),
	}
	if name, desktop, ok := currentUser(); ok {
		opts = append(opts, agentloop.WithIdentity(name, desktop))
	}

	rt, err := agentloop.NewRuntime(ctx, append(opts, a.extra...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start runtime")
	}
	return rt, nil
}

func currentUser() (name, desktop string, ok bool) {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "", "", false
	}
	return u.Username, filepath.Join(u.HomeDir, "Desktop"), true
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}
