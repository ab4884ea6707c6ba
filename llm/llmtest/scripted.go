// Package llmtest provides completion clients for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/llm"
)

// Step is one scripted backend answer: Text, or Err when set.
type Step struct {
	Text string
	Err  error
}

// ScriptedClient replays its steps in order and records every request.
// Running past the end of the script is a test failure reported as an error.
type ScriptedClient struct {
	mtx      sync.Mutex
	steps    []Step
	requests []llm.Request
}

var _ llm.Client = (*ScriptedClient)(nil)

func NewScriptedClient(steps ...Step) *ScriptedClient {
	return &ScriptedClient{steps: steps}
}

// Replies is shorthand for a script of plain text answers.
func Replies(texts ...string) *ScriptedClient {
	steps := make([]Step, 0, len(texts))
	for _, t := range texts {
		steps = append(steps, Step{Text: t})
	}
	return NewScriptedClient(steps...)
}

func (c *ScriptedClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	req.Messages = append([]entity.Message(nil), req.Messages...)
	c.requests = append(c.requests, req)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(c.steps) == 0 {
		return "", errors.Errorf("script exhausted after %d calls", len(c.requests)-1)
	}
	step := c.steps[0]
	c.steps = c.steps[1:]
	if step.Err != nil {
		return "", step.Err
	}
	return req.Prefill + step.Text, nil
}

func (c *ScriptedClient) Requests() []llm.Request {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return append([]llm.Request(nil), c.requests...)
}

// Remaining reports how many scripted steps were not consumed.
func (c *ScriptedClient) Remaining() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return len(c.steps)
}

// Transient and Fatal build backend errors of the matching class.
func Transient() error {
	return &llm.Error{Class: llm.ClassMalformed, StatusCode: 400, Err: errors.New("context too long")}
}

func Fatal() error {
	return &llm.Error{Class: llm.ClassUnavailable, Err: errors.New("connection refused")}
}
