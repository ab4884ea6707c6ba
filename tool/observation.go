package tool

import (
	"strings"
)

const (
	SentinelOK   = "✓"
	SentinelFail = "✗"

	truncatedMarker = "\n...(truncated)"
)

// Observation is what the loop feeds back to the model after a dispatch.
type Observation struct {
	Text    string
	Payload []byte
	OK      bool

	// OutOfScope marks a call rejected before any tool ran.
	OutOfScope bool
}

func Succeeded(text string, payload []byte) Observation {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, SentinelFail) {
		return Observation{Text: text, Payload: payload}
	}
	if !strings.HasPrefix(text, SentinelOK) {
		text = SentinelOK + " " + text
	}
	return Observation{Text: text, Payload: payload, OK: true}
}

func Failed(text string) Observation {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, SentinelFail) {
		text = SentinelFail + " " + text
	}
	return Observation{Text: text}
}
