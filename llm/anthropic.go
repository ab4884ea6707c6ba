package llm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
)

type AnthropicClient struct {
	logger *slog.Logger
	model  string
	client *anthropic.Client
}

var _ Client = (*AnthropicClient)(nil)

func NewAnthropicClient(logger *slog.Logger, conf *config.ModelConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(conf.APIKey),
		option.WithMaxRetries(0),
	}
	// The local llama.cpp default means "not configured" for this provider.
	if conf.BaseURL != "" && conf.BaseURL != config.DefaultBaseURL {
		opts = append(opts, option.WithBaseURL(conf.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicClient{
		logger: logger,
		model:  conf.Model,
		client: &client,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
	}
	for _, m := range prepare(req) {
		switch m.Role {
		case entity.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case entity.RoleAssistant:
			// The API rejects trailing whitespace in a final assistant turn.
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(strings.TrimRight(m.Content, " \t\n"))))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if len(req.Stop) > 0 {
		params.StopSequences = stopSequences(req.Stop)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &Error{Class: classifyStatus(apiErr.StatusCode), StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", classifyTransport(ctx, err)
	}

	var sb strings.Builder
	for _, content := range resp.Content {
		switch block := content.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(block.Text)
		}
	}

	c.logger.Debug("completion finished",
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return finish(req, sb.String()), nil
}

// stopSequences drops entries the Messages API refuses (whitespace only).
func stopSequences(stop []string) []string {
	out := make([]string, 0, len(stop))
	for _, s := range stop {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
