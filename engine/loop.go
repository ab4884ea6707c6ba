package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/conversation"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/stringutils"
	"github.com/habiliai/agentloop/knowledge"
	"github.com/habiliai/agentloop/llm"
	"github.com/habiliai/agentloop/memory"
	"github.com/habiliai/agentloop/parser"
	"github.com/habiliai/agentloop/tool"
)

const (
	ExhaustedText       = "Couldn't complete that. Try /new."
	WorkerExhaustedText = "Worker reached max rounds without a final answer."

	CorrectionText = "Your reply did not follow the format. Reply with exactly one of:\n" +
		"Action: tool_name\nAction Input: {\"key\": \"value\"}\n" +
		"or\nFinal Answer: your response"

	toolNudge     = "Continue or give Final Answer."
	delegateNudge = "Continue delegating or give Final Answer."

	backendErrorTool = "llm"
)

type Status int

const (
	// StatusAnswered means the model produced a final answer.
	StatusAnswered Status = iota
	// StatusVerbatim means the model ignored the protocol twice and its raw
	// text is returned as is.
	StatusVerbatim
	// StatusExhausted means the round budget ran out.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusVerbatim:
		return "verbatim"
	case StatusExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type (
	Reply struct {
		Text   string
		Rounds int
		Status Status
	}

	// Memory is the part of the memory store a loop reads from and reports to.
	Memory interface {
		Identity() memory.Identity
		RenderContext(tokenBudget int) string
		Learn(ctx context.Context, text string, priority int) error
		LogError(ctx context.Context, tool, errText, request string) error
		LogMessage(role entity.Role, content string)
	}

	// Delegator runs a task on a worker bound to role and returns its final
	// text. An unknown role yields a text naming the valid ones.
	Delegator interface {
		Roles() []entity.WorkerRole
		Delegate(ctx context.Context, role, task string) string
	}

	// Loop is one actor: a bounded model → parse → dispatch cycle over a
	// durable conversation. Send calls are serialized.
	Loop struct {
		logger    *slog.Logger
		client    llm.Client
		tools     *tool.View
		conf      *config.LoopConfig
		prompt    *Prompt
		label     string
		name      string
		workspace string
		exhausted string
		memory    Memory
		knowledge *knowledge.Index
		gate      *Gate
		delegator Delegator
		observer  Observer
		now       func() time.Time
		learn     bool

		mtx     sync.Mutex
		history *conversation.History
	}

	LoopOption func(*Loop)
)

var _ Memory = (*memory.Store)(nil)

func WithMemory(m Memory) LoopOption {
	return func(l *Loop) {
		l.memory = m
	}
}

func WithKnowledge(idx *knowledge.Index) LoopOption {
	return func(l *Loop) {
		l.knowledge = idx
	}
}

func WithGate(g *Gate) LoopOption {
	return func(l *Loop) {
		l.gate = g
	}
}

func WithObserver(o Observer) LoopOption {
	return func(l *Loop) {
		l.observer = o
	}
}

func WithPrompt(p *Prompt) LoopOption {
	return func(l *Loop) {
		l.prompt = p
	}
}

// WithLabel names the actor in logs, events and scope errors.
func WithLabel(label string) LoopOption {
	return func(l *Loop) {
		l.label = label
	}
}

// WithName sets the assistant name used in prompts.
func WithName(name string) LoopOption {
	return func(l *Loop) {
		l.name = name
	}
}

func WithWorkspace(dir string) LoopOption {
	return func(l *Loop) {
		l.workspace = dir
	}
}

func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		l.now = now
	}
}

func WithDelegator(d Delegator) LoopOption {
	return func(l *Loop) {
		l.delegator = d
	}
}

// WithSelfLearning turns on fact extraction from user messages. It needs WithMemory.
func WithSelfLearning(on bool) LoopOption {
	return func(l *Loop) {
		l.learn = on
	}
}

func withExhaustedText(text string) LoopOption {
	return func(l *Loop) {
		l.exhausted = text
	}
}

func NewLoop(logger *slog.Logger, client llm.Client, tools *tool.View, conf *config.LoopConfig, opts ...LoopOption) *Loop {
	l := &Loop{
		logger:    logger,
		client:    client,
		tools:     tools,
		conf:      conf,
		prompt:    SinglePrompt,
		label:     "agent",
		name:      "agentloop",
		exhausted: ExhaustedText,
		gate:      NewGate(),
		observer:  func(Event) {},
		now:       time.Now,
		history:   conversation.NewHistory(conversation.TrimPolicy(conf.DurableHistory)),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("actor", l.label)
	return l
}

// NewCoordinator builds a loop that may also delegate to team's workers.
// It shares the team's gate so a pause stops workers too.
func NewCoordinator(logger *slog.Logger, client llm.Client, tools *tool.View, team *Team, conf *config.LoopConfig, opts ...LoopOption) *Loop {
	base := []LoopOption{
		WithPrompt(CoordinatorPrompt),
		WithLabel("coordinator"),
		WithDelegator(team),
		WithGate(team.Gate()),
	}
	return NewLoop(logger, client, tools, conf, append(base, opts...)...)
}

func (l *Loop) Label() string {
	return l.label
}

func (l *Loop) Gate() *Gate {
	return l.gate
}

func (l *Loop) History() []entity.Message {
	return l.history.Messages()
}

// Reset forgets the durable conversation.
func (l *Loop) Reset() {
	l.history.Reset()
}

// SystemPrompt renders the system message as the next turn about query would see it.
func (l *Loop) SystemPrompt(query string) (string, error) {
	values := PromptValues{
		Name:      l.name,
		Now:       l.now(),
		Workspace: l.workspace,
		Role:      l.label,
		Tools:     l.tools.Schemas(),
	}
	if l.delegator != nil {
		values.Workers = l.delegator.Roles()
	}
	if l.memory != nil {
		values.Identity = l.memory.Identity()
		values.Memory = l.memory.RenderContext(l.conf.MemoryBudget)
	}
	if l.knowledge != nil && query != "" {
		values.Knowledge = l.knowledge.Context(query)
	}
	return l.prompt.Render(values)
}

func (l *Loop) grammar() parser.Grammar {
	g := parser.Grammar{Tools: l.tools.Signatures()}
	if l.delegator != nil {
		for _, r := range l.delegator.Roles() {
			g.Roles = append(g.Roles, r.Name)
		}
	}
	return g
}

// Send runs one user turn to completion. The only error it returns for a
// backend failure matches errors.ErrBackendFatal; context cancellation is
// returned as is.
func (l *Loop) Send(ctx context.Context, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "empty message")
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.memory != nil {
		if l.learn {
			LearnFromMessage(ctx, l.logger, l.memory, text)
		}
		l.memory.LogMessage(entity.RoleUser, text)
	}

	system, err := l.SystemPrompt(text)
	if err != nil {
		return nil, err
	}

	l.history.Append(entity.UserMessage(text))
	l.history.Trim()

	t := &turn{
		Loop:    l,
		request: text,
		system:  system,
		grammar: l.grammar(),
		live:    conversation.Trim(l.history.Messages(), conversation.TrimPolicy(l.conf.LiveHistory)),
	}
	reply, err := t.run(ctx)
	if err != nil {
		return nil, err
	}

	l.history.Append(entity.AssistantMessage(reply.Text))
	l.history.Trim()
	if l.memory != nil {
		l.memory.LogMessage(entity.RoleAssistant, reply.Text)
	}

	l.logger.Debug("turn finished", "rounds", reply.Rounds, "status", reply.Status)
	return reply, nil
}

// turn is the state of one Send: the live message sequence grows with every
// round and is dropped at the end.
type turn struct {
	*Loop

	request string
	system  string
	grammar parser.Grammar
	live    []entity.Message
}

func (t *turn) run(ctx context.Context) (*Reply, error) {
	var (
		last      string
		corrected bool
		retried   bool
	)
	for round := 1; round <= t.conf.MaxRounds; round++ {
		if err := t.gate.Wait(ctx); err != nil {
			return nil, errors.WithStack(err)
		}

		resp, err := t.complete(ctx)
		if err != nil && ctx.Err() == nil && errors.Is(err, errors.ErrBackendTransient) && !retried {
			retried = true
			t.logger.Warn("backend rejected the request, retrying with the user message only", "round", round, "error", err)
			t.observer(Event{Kind: EventRetry, Actor: t.label, Text: err.Error()})
			t.live = []entity.Message{entity.UserMessage(t.request)}
			resp, err = t.complete(ctx)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.WithStack(ctx.Err())
			}
			return nil, t.fail(ctx, err)
		}
		last = resp

		switch intent := parser.Parse(resp, t.grammar).(type) {
		case parser.FinalAnswer:
			return &Reply{Text: intent.Text, Rounds: round, Status: StatusAnswered}, nil

		case parser.ToolCall:
			obs := t.dispatch(ctx, intent)
			if err := t.gate.Wait(ctx); err != nil {
				return nil, errors.WithStack(err)
			}
			t.observe(resp, "Observation: "+obs.Text, toolNudge)

		case parser.Delegate:
			t.observer(Event{Kind: EventDelegate, Actor: t.label, Name: intent.Role, Text: stringutils.Head(intent.Task, 60)})
			result := t.delegator.Delegate(ctx, intent.Role, intent.Task)
			t.observer(Event{Kind: EventWorkerResult, Actor: t.label, Name: intent.Role, Text: stringutils.Head(result, 80)})
			t.observe(resp, fmt.Sprintf("Worker Result (%s): %s", intent.Role, result), delegateNudge)

		case parser.Unparseable:
			if corrected || round == t.conf.MaxRounds {
				return &Reply{Text: strings.TrimSpace(intent.Raw), Rounds: round, Status: StatusVerbatim}, nil
			}
			corrected = true
			t.logger.Debug("unparseable reply, asking for the protocol", "round", round)
			t.observer(Event{Kind: EventCorrection, Actor: t.label})
			t.live = append(t.live, entity.AssistantMessage(resp), entity.UserMessage(CorrectionText))
		}
	}

	return &Reply{Text: t.bestEffort(last), Rounds: t.conf.MaxRounds, Status: StatusExhausted}, nil
}

func (t *turn) complete(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.conf.CallTimeout)
	defer cancel()

	msgs := append([]entity.Message{entity.SystemMessage(t.system)}, t.live...)
	return t.client.Complete(ctx, llm.Request{
		Messages:    msgs,
		Temperature: t.conf.Temperature,
		MaxTokens:   t.conf.MaxTokens,
		Stop:        t.conf.Stop,
	})
}

// fail records a backend failure and converts it into the turn's error.
func (t *turn) fail(ctx context.Context, err error) error {
	t.logger.Error("completion failed", "error", err)
	if t.memory != nil {
		if logErr := t.memory.LogError(ctx, backendErrorTool, err.Error(), t.request); logErr != nil {
			t.logger.Warn("failed to record backend error", "error", logErr)
		}
	}
	if errors.Is(err, errors.ErrBackendFatal) {
		return errors.Wrapf(err, "%s turn failed", t.label)
	}
	return fmt.Errorf("%w: %s turn failed: %w", errors.ErrBackendFatal, t.label, err)
}

func (t *turn) dispatch(ctx context.Context, call parser.ToolCall) tool.Observation {
	if call.Thought != "" {
		t.logger.Debug("thought", "text", stringutils.Head(call.Thought, 100))
		t.observer(Event{Kind: EventThought, Actor: t.label, Text: stringutils.Head(call.Thought, 100)})
	}
	t.observer(Event{Kind: EventToolCall, Actor: t.label, Name: call.Name, Text: argsPreview(call.Args)})

	obs := t.tools.Dispatch(ctx, call.Name, call.Args)

	firstLine, _, _ := strings.Cut(obs.Text, "\n")
	t.observer(Event{Kind: EventObservation, Actor: t.label, Name: call.Name, Text: stringutils.Head(firstLine, 80), OK: obs.OK})
	if !obs.OK && !obs.OutOfScope && t.memory != nil {
		if err := t.memory.LogError(ctx, call.Name, obs.Text, t.request); err != nil {
			t.logger.Warn("failed to record tool error", "tool", call.Name, "error", err)
		}
	}
	return obs
}

// observe appends a round to the live context, with a nudge for the model,
// and to the durable history without it.
func (t *turn) observe(resp, observation, nudge string) {
	t.live = append(t.live,
		entity.AssistantMessage(resp),
		entity.UserMessage(observation+"\n\n"+nudge),
	)
	t.live = conversation.Trim(t.live, conversation.TrimPolicy(t.conf.LiveHistory))

	t.history.Append(entity.AssistantMessage(resp), entity.UserMessage(observation))
	t.history.Trim()
}

// bestEffort makes the last response presentable. Protocol-only text yields
// the exhaustion notice.
func (t *turn) bestEffort(last string) string {
	clean := parser.CleanResponse(last)
	switch parser.Parse(clean, t.grammar).(type) {
	case parser.ToolCall, parser.Delegate:
		return t.exhausted
	}
	if clean == "" {
		return t.exhausted
	}
	return clean
}

var previewKeys = []string{"file_path", "command", "query", "code", "url", "target", "text", "dir_path", "path"}

func argsPreview(args map[string]any) string {
	for _, k := range previewKeys {
		if v, ok := args[k]; ok {
			return stringutils.Head(fmt.Sprint(v), 55)
		}
	}
	return ""
}
