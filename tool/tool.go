package tool

import (
	"github.com/habiliai/agentloop/errors"
	"github.com/mitchellh/mapstructure"
)

type (
	Result struct {
		Text    string
		Payload []byte
	}

	Handler func(ctx *Context, args map[string]any) (Result, error)

	Tool struct {
		Schema
		Handler Handler
	}
)

// NewTool builds a tool whose handler receives its arguments decoded into In.
// Decoding is weakly typed ("3" fills an int field) and keyed by json tags.
func NewTool[In any](schema Schema, fn func(ctx *Context, in In) (string, error)) Tool {
	return Tool{
		Schema: schema,
		Handler: func(ctx *Context, args map[string]any) (Result, error) {
			var in In
			if err := decodeArgs(args, &in); err != nil {
				return Result{}, err
			}
			text, err := fn(ctx, in)
			return Result{Text: text}, err
		},
	}
}

func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create decoder")
	}
	if err := decoder.Decode(args); err != nil {
		return errors.Wrapf(errors.ErrInvalidParams, "bad arguments: %v", err)
	}
	return nil
}
