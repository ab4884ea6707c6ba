package engine

import (
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/memory"
	"github.com/habiliai/agentloop/tool"
)

var (
	//go:embed data/instructions/single.md.tmpl
	singleInst string
	//go:embed data/instructions/coordinator.md.tmpl
	coordinatorInst string
	//go:embed data/instructions/worker.md.tmpl
	workerInst string

	SinglePrompt      = mustPrompt("single", singleInst)
	CoordinatorPrompt = mustPrompt("coordinator", coordinatorInst)
	WorkerPrompt      = mustPrompt("worker", workerInst)
)

type (
	// Prompt renders the system message of one kind of loop.
	Prompt struct {
		tmpl *template.Template
	}

	PromptValues struct {
		Name      string
		Now       time.Time
		Identity  memory.Identity
		Workspace string

		// Role is set for workers only.
		Role    string
		Tools   []tool.Schema
		Workers []entity.WorkerRole

		Memory    string
		Knowledge string
	}
)

func mustPrompt(name, text string) *Prompt {
	return &Prompt{
		tmpl: template.Must(template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)),
	}
}

// ParsePrompt builds a prompt from a user supplied template. The template
// sees PromptValues and the sprig function set.
func ParsePrompt(name, text string) (*Prompt, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse prompt template %s", name)
	}
	return &Prompt{tmpl: tmpl}, nil
}

func (p *Prompt) Render(values PromptValues) (string, error) {
	var buf strings.Builder
	if err := p.tmpl.Execute(&buf, values); err != nil {
		return "", errors.Wrapf(err, "failed to render prompt %s", p.tmpl.Name())
	}
	return strings.TrimSpace(buf.String()), nil
}
