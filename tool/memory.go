package tool

import (
	"context"
	"fmt"
)

const defaultFactPriority = 7

// FactStore is the part of the memory store the model may write to.
type FactStore interface {
	Learn(ctx context.Context, text string, priority int) error
	Forget(ctx context.Context, keyword string) (int, error)
}

type (
	RememberFactInput struct {
		Fact     string `json:"fact"`
		Priority int    `json:"priority,omitempty"`
	}
	ForgetFactInput struct {
		Keyword string `json:"keyword"`
	}
)

func memoryTools(facts FactStore) []Tool {
	return []Tool{
		NewTool(Schema{
			Name:        "remember_fact",
			Description: "Save a fact about the user or task for future sessions.",
			Params: []Param{
				{Name: "fact", Type: TypeString, Description: "The fact, one short sentence", Required: true, Aliases: []string{"text", "memory", "content"}},
				{Name: "priority", Type: TypeInteger, Description: "Importance from 0 to 10 (default 7)"},
			},
		}, func(ctx *Context, in RememberFactInput) (string, error) {
			priority := in.Priority
			if priority <= 0 {
				priority = defaultFactPriority
			}
			if err := facts.Learn(ctx, in.Fact, priority); err != nil {
				return "", err
			}
			return "Remembered: " + in.Fact, nil
		}),
		NewTool(Schema{
			Name:        "forget_fact",
			Description: "Forget every saved fact containing a keyword.",
			Params: []Param{
				{Name: "keyword", Type: TypeString, Description: "Keyword to match", Required: true, Aliases: []string{"fact", "text", "query"}},
			},
		}, func(ctx *Context, in ForgetFactInput) (string, error) {
			n, err := facts.Forget(ctx, in.Keyword)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Forgot %d fact(s) matching %q", n, in.Keyword), nil
		}),
	}
}
