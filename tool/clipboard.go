package tool

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/habiliai/agentloop/errors"
)

type ClipboardSetInput struct {
	Text string `json:"text"`
}

func clipboardTools() []Tool {
	return []Tool{
		NewTool(Schema{
			Name:        "clipboard_get",
			Description: "Read the text currently on the clipboard.",
		}, func(ctx *Context, _ struct{}) (string, error) {
			if clipboard.Unsupported {
				return "", errors.New("clipboard not supported on this host")
			}
			text, err := clipboard.ReadAll()
			if err != nil {
				return "", errors.Wrapf(err, "failed to read clipboard")
			}
			if text == "" {
				return "(clipboard empty)", nil
			}
			return text, nil
		}),
		NewTool(Schema{
			Name:        "clipboard_set",
			Description: "Put text on the clipboard.",
			Params: []Param{
				{Name: "text", Type: TypeString, Description: "Text to copy", Required: true, Aliases: []string{"content"}},
			},
		}, func(ctx *Context, in ClipboardSetInput) (string, error) {
			if clipboard.Unsupported {
				return "", errors.New("clipboard not supported on this host")
			}
			if err := clipboard.WriteAll(in.Text); err != nil {
				return "", errors.Wrapf(err, "failed to write clipboard")
			}
			return fmt.Sprintf("Copied %d characters", len([]rune(in.Text))), nil
		}),
	}
}
