package llm

import (
	"context"
	"log/slog"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient talks to any OpenAI compatible /v1/chat/completions endpoint,
// llama.cpp's server included.
type OpenAIClient struct {
	logger *slog.Logger
	model  string
	create func(ctx context.Context, params goopenai.ChatCompletionNewParams, opts ...option.RequestOption) (*goopenai.ChatCompletion, error)
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(logger *slog.Logger, conf *config.ModelConfig) *OpenAIClient {
	client := goopenai.NewClient(
		option.WithBaseURL(conf.BaseURL),
		option.WithAPIKey(conf.APIKey),
		option.WithMaxRetries(0),
	)

	return &OpenAIClient{
		logger: logger,
		model:  conf.Model,
		create: client.Chat.Completions.New,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	params := goopenai.ChatCompletionNewParams{
		Model:    goopenai.String(c.model),
		Messages: goopenai.F(convertOpenAIMessages(prepare(req))),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = goopenai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = goopenai.Float(req.Temperature)
	}
	if len(req.Stop) > 0 {
		params.Stop = goopenai.F[goopenai.ChatCompletionNewParamsStopUnion](goopenai.ChatCompletionNewParamsStopArray(req.Stop))
	}

	res, err := c.create(ctx, params)
	if err != nil {
		var apiErr *goopenai.Error
		if errors.As(err, &apiErr) {
			return "", &Error{Class: classifyStatus(apiErr.StatusCode), StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", classifyTransport(ctx, err)
	}
	if len(res.Choices) == 0 {
		return "", &Error{Class: ClassMalformed, Err: errors.New("response has no choices")}
	}

	c.logger.Debug("completion finished",
		"finish_reason", res.Choices[0].FinishReason,
		"prompt_tokens", res.Usage.PromptTokens,
		"completion_tokens", res.Usage.CompletionTokens,
	)
	return finish(req, res.Choices[0].Message.Content), nil
}

func convertOpenAIMessages(msgs []entity.Message) []goopenai.ChatCompletionMessageParamUnion {
	out := make([]goopenai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case entity.RoleSystem:
			out = append(out, goopenai.SystemMessage(m.Content))
		case entity.RoleAssistant:
			out = append(out, goopenai.AssistantMessage(m.Content))
		default:
			out = append(out, goopenai.UserMessage(m.Content))
		}
	}
	return out
}
