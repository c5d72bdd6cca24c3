package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/gridml/internal/ctxlog"
)

// Executor submits one assembled script to the engine and returns the
// requested outputs keyed by their script variable names. Implementations
// must not retry: graph state is immutable, so a failed execution is
// reported as-is rather than reconciled.
type Executor interface {
	Execute(ctx context.Context, script string, inputs map[string]Value, outputs []string) (map[string]Value, error)
}

// Context is one client session against an engine. Handles and operation
// nodes reference their Context but do not own it.
//
// A Context is a shared mutable resource: it serializes materialization
// passes internally, so concurrent Compute calls against the same Context
// are safe but execute one at a time. Ordering across independent passes is
// whatever the callers' interleaving produces.
type Context struct {
	id       string
	executor Executor

	mu sync.Mutex
}

// NewContext creates a session around the given executor.
func NewContext(executor Executor) *Context {
	return &Context{
		id:       uuid.NewString(),
		executor: executor,
	}
}

// ID returns the session identifier.
func (c *Context) ID() string { return c.id }

// Execute runs one assembled script under the session lock.
func (c *Context) Execute(ctx context.Context, script string, inputs map[string]Value, outputs []string) (map[string]Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Submitting script to engine.",
		"session", c.id, "statements", countLines(script), "bound_inputs", len(inputs), "outputs", len(outputs))

	results, err := c.executor.Execute(ctx, script, inputs, outputs)
	if err != nil {
		logger.Debug("Engine execution failed.", "session", c.id, "error", err)
		return nil, err
	}
	logger.Debug("Engine execution finished.", "session", c.id, "results", len(results))
	return results, nil
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
