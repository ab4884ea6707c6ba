package tool_test

import (
	"testing"

	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moveSchema = tool.Schema{
	Name:        "move_file",
	Description: "Move a file.",
	Params: []tool.Param{
		{Name: "source", Type: tool.TypeString, Required: true, Aliases: []string{"src"}},
		{Name: "destination", Type: tool.TypeString, Required: true, Aliases: []string{"dest", "to"}},
		{Name: "overwrite", Type: tool.TypeBoolean},
	},
}

func TestSchemaExtractArgs(t *testing.T) {
	args, err := moveSchema.ExtractArgs(map[string]any{"SRC": "a", "Destination": "b", "extra": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "a", "destination": "b", "extra": 1}, args)

	_, err = moveSchema.ExtractArgs(map[string]any{"to": "b"})
	var missing *tool.MissingParamsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"source"}, missing.Params)
	assert.ErrorIs(t, err, errors.ErrInvalidParams)

	_, err = moveSchema.ExtractArgs(map[string]any{"source": nil, "destination": "b"})
	assert.ErrorContains(t, err, "Missing required parameter source for move_file")
}

func TestSchemaRendering(t *testing.T) {
	assert.Equal(t, "- move_file(source, destination, overwrite?): Move a file.", moveSchema.CapabilityLine())
	assert.Equal(t, []string{"source", "destination", "overwrite"}, moveSchema.Signature().Params)

	js := moveSchema.JSONSchema()
	assert.Equal(t, []string{"source", "destination"}, js.Required)
	prop, ok := js.Properties.Get("overwrite")
	require.True(t, ok)
	assert.Equal(t, "boolean", prop.Type)
}

func TestNewToolDecodesWeakly(t *testing.T) {
	type in struct {
		Count   int    `json:"count"`
		Verbose bool   `json:"verbose"`
		Name    string `json:"name"`
	}

	var got in
	tl := tool.NewTool(tool.Schema{Name: "probe"}, func(ctx *tool.Context, v in) (string, error) {
		got = v
		return "ok", nil
	})

	res, err := tl.Handler(nil, map[string]any{"count": "3", "verbose": "true", "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, in{Count: 3, Verbose: true, Name: "x"}, got)

	_, err = tl.Handler(nil, map[string]any{"count": "three"})
	assert.ErrorIs(t, err, errors.ErrInvalidParams)
}

func TestObservationSentinels(t *testing.T) {
	assert.Equal(t, "✓ done", tool.Succeeded("  done ", nil).Text)
	assert.True(t, tool.Succeeded("✓ Created", nil).OK)
	assert.Equal(t, "✓ Created", tool.Succeeded("✓ Created", nil).Text)

	obs := tool.Succeeded("✗ looked fine but was not", nil)
	assert.False(t, obs.OK)

	assert.Equal(t, "✗ nope", tool.Failed("nope").Text)
	assert.Equal(t, "✗ nope", tool.Failed("✗ nope").Text)
}
