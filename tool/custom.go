package tool

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/goccy/go-yaml"
	"github.com/google/shlex"
	"github.com/habiliai/agentloop/errors"
)

// CustomDescriptor is the on-disk form of a user defined tool:
//
//	name: greet
//	description: Say hello
//	params:
//	  - name: who
//	    type: string
//	    required: true
//	command: echo Hello {{ .who | squote }}
//	timeout: 10s
type CustomDescriptor struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Params      []Param `yaml:"params"`
	Command     string  `yaml:"command"`
	Timeout     string  `yaml:"timeout,omitempty"`
}

func (d *CustomDescriptor) Tool() (Tool, error) {
	if d.Name == "" || d.Description == "" || strings.TrimSpace(d.Command) == "" {
		return Tool{}, errors.Wrapf(errors.ErrInvalidConfig, "descriptor needs name, description and command")
	}

	params := make([]Param, 0, len(d.Params))
	for _, p := range d.Params {
		if p.Type == "" {
			p.Type = TypeString
		}
		params = append(params, p)
	}

	var timeout time.Duration
	if d.Timeout != "" {
		var err error
		if timeout, err = time.ParseDuration(d.Timeout); err != nil {
			return Tool{}, errors.Wrapf(errors.ErrInvalidConfig, "bad timeout %q", d.Timeout)
		}
	}

	tmpl, err := template.New(d.Name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(d.Command)
	if err != nil {
		return Tool{}, errors.Wrapf(errors.ErrInvalidConfig, "bad command template: %v", err)
	}

	schema := Schema{Name: d.Name, Description: d.Description, Params: params, Timeout: timeout}
	if err := schema.Validate(); err != nil {
		return Tool{}, err
	}

	return Tool{
		Schema: schema,
		Handler: func(ctx *Context, args map[string]any) (Result, error) {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, args); err != nil {
				return Result{}, errors.Wrapf(err, "failed to render command")
			}
			argv, err := shlex.Split(buf.String())
			if err != nil {
				return Result{}, errors.Wrapf(err, "failed to split command")
			}
			if len(argv) == 0 {
				return Result{}, errors.New("command rendered empty")
			}
			out, err := runProcess(ctx, ctx.Workspace(), argv[0], argv[1:]...)
			return Result{Text: out}, err
		},
	}, nil
}

// LoadCustomTools reads every *.yaml / *.yml descriptor in dir. Malformed
// descriptors are skipped with a warning. A missing dir yields nothing.
func (r *Registry) LoadCustomTools(dir string) int {
	if dir == "" {
		return 0
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		t, err := loadDescriptor(file)
		if err == nil {
			err = r.Register(t)
		}
		if err != nil {
			r.logger.Warn("skipping custom tool", "file", file, "error", err)
			continue
		}
		loaded++
	}
	return loaded
}

func loadDescriptor(file string) (Tool, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Tool{}, errors.WithStack(err)
	}

	var desc CustomDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Tool{}, errors.Wrapf(errors.ErrInvalidConfig, "malformed descriptor: %v", err)
	}
	return desc.Tool()
}
