package cmd

import (
	"fmt"
	"io"

	"github.com/habiliai/agentloop/engine"
)

func printEvents(out io.Writer) engine.Observer {
	return func(e engine.Event) {
		indent := "  "
		if e.Actor != "agent" && e.Actor != "coordinator" {
			indent = "    [" + e.Actor + "] "
		}
		switch e.Kind {
		case engine.EventThought:
			fmt.Fprintf(out, "%s💭 %s\n", indent, e.Text)
		case engine.EventToolCall:
			fmt.Fprintf(out, "%s→ %s(%s)\n", indent, e.Name, e.Text)
		case engine.EventObservation:
			fmt.Fprintf(out, "%s  %s\n", indent, e.Text)
		case engine.EventDelegate:
			fmt.Fprintf(out, "%s⇒ %s: %s\n", indent, e.Name, e.Text)
		case engine.EventWorkerResult:
			fmt.Fprintf(out, "%s⇐ %s: %s\n", indent, e.Name, e.Text)
		case engine.EventRetry:
			fmt.Fprintf(out, "%s↻ retrying with a shorter context\n", indent)
		case engine.EventCorrection:
			fmt.Fprintf(out, "%s↻ asking for the expected format\n", indent)
		}
	}
}
