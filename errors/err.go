package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig  = fmt.Errorf("agentloop: invalid config")
	ErrNotFound       = fmt.Errorf("agentloop: not found")
	ErrInvalidParams  = fmt.Errorf("agentloop: invalid params")
	ErrInternal       = fmt.Errorf("agentloop: internal error")
	ErrInvalidRequest = fmt.Errorf("agentloop: invalid request")

	// ErrBackendTransient marks a completion failure worth one retry with a smaller request.
	ErrBackendTransient = fmt.Errorf("agentloop: backend transient failure")
	// ErrBackendFatal ends the turn; it is the only failure surfaced to the operator.
	ErrBackendFatal     = fmt.Errorf("agentloop: backend fatal failure")

	ErrScopeViolation  = fmt.Errorf("agentloop: tool not in scope")
	ErrToolTimeout     = fmt.Errorf("agentloop: tool timed out")
	ErrInvalidDocument = fmt.Errorf("agentloop: invalid document")
)
