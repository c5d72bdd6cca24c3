package engine

import (
	"fmt"
	"strings"
)

// Problem is a single diagnostic reported by the engine for an execution.
type Problem struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ConnectionError indicates the engine session could not be reached. It
// wraps the underlying transport failure.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("engine at %s is not reachable: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RemoteExecutionError indicates the engine accepted the script but failed
// while running it. The engine's own diagnostics are carried verbatim; they
// are the only useful debugging signal a client has.
type RemoteExecutionError struct {
	ExecutionID string
	State       string
	Problems    []Problem
}

func (e *RemoteExecutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "remote execution %s %s", e.ExecutionID, e.State)
	for _, p := range e.Problems {
		sb.WriteString(": ")
		sb.WriteString(p.Message)
	}
	return sb.String()
}
