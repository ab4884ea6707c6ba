package parser

// Intent is the decoded meaning of one model response. Exactly one of
// FinalAnswer, ToolCall, Delegate or Unparseable.
type Intent interface {
	intent()
}

type (
	FinalAnswer struct {
		Text string
	}

	ToolCall struct {
		Name string
		Args map[string]any

		// Thought is the reasoning text the model wrote before the call, if any.
		Thought string
	}

	Delegate struct {
		Role string
		Task string
	}

	Unparseable struct {
		Raw string
	}
)

func (FinalAnswer) intent() {}
func (ToolCall) intent()    {}
func (Delegate) intent()    {}
func (Unparseable) intent() {}

var (
	_ Intent = FinalAnswer{}
	_ Intent = ToolCall{}
	_ Intent = Delegate{}
	_ Intent = Unparseable{}
)

// ToolSignature is the part of a tool schema the parser needs.
type ToolSignature struct {
	Name   string
	Params []string
}

// Grammar is the active vocabulary for one parse: the tools the caller may
// invoke and, for coordinators, the roles it may delegate to.
type Grammar struct {
	Tools []ToolSignature
	Roles []string
}

func (g Grammar) ToolNames() []string {
	names := make([]string, 0, len(g.Tools))
	for _, t := range g.Tools {
		names = append(names, t.Name)
	}
	return names
}
