package tool

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
)

type (
	RunCommandInput struct {
		Command string `json:"command"`
		Cwd     string `json:"cwd,omitempty"`
	}
	PythonExecInput struct {
		Code string `json:"code"`
	}
	WaitInput struct {
		Seconds float64 `json:"seconds"`
	}
)

func commandTools(conf *config.ToolConfig) []Tool {
	return []Tool{
		NewTool(Schema{
			Name:        "run_command",
			Description: "Run a shell command and return its output.",
			Params: []Param{
				{Name: "command", Type: TypeString, Description: "Command line to run", Required: true, Aliases: []string{"cmd"}},
				{Name: "cwd", Type: TypeString, Description: "Working directory"},
			},
			Timeout: conf.CommandTimeout,
		}, func(ctx *Context, in RunCommandInput) (string, error) {
			if len(conf.Shell) == 0 {
				return "", errors.Wrapf(errors.ErrInvalidConfig, "no shell configured")
			}
			dir := ctx.Workspace()
			if in.Cwd != "" {
				dir = ctx.ResolvePath(in.Cwd)
			}
			args := append(append([]string(nil), conf.Shell[1:]...), in.Command)
			return runProcess(ctx, dir, conf.Shell[0], args...)
		}),
		NewTool(Schema{
			Name:        "python_exec",
			Description: "Execute Python code and return what it prints.",
			Params: []Param{
				{Name: "code", Type: TypeString, Description: "Python source", Required: true, Aliases: []string{"script", "python", "source"}},
			},
			Timeout: conf.CommandTimeout,
		}, func(ctx *Context, in PythonExecInput) (string, error) {
			if strings.TrimSpace(in.Code) == "" {
				return "", errors.New("No code provided. Use key 'code' with your Python code.")
			}
			out, err := runProcess(ctx, ctx.Workspace(), conf.PythonBin, "-c", in.Code)
			if err == nil && out == "(no output)" {
				out = "(executed, no output)"
			}
			return out, err
		}),
		NewTool(Schema{
			Name:        "wait",
			Description: "Wait for a number of seconds.",
			Params: []Param{
				{Name: "seconds", Type: TypeNumber, Description: "Seconds to wait", Required: true},
			},
		}, func(ctx *Context, in WaitInput) (string, error) {
			d := time.Duration(in.Seconds * float64(time.Second))
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			return "Waited " + d.String(), nil
		}),
	}
}

func runProcess(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	out := strings.TrimSpace(string(output))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if out == "" {
			return "", errors.WithStack(err)
		}
		return "", errors.Errorf("%v: %s", err, out)
	}
	if out == "" {
		return "(no output)", nil
	}
	return out, nil
}
