// Tool executor with per-call timeout.
//
// The registry imposes no retry policy: a tool that wants retry/backoff owns
// it internally. The executor only bounds how long a single invocation may
// run and shields the loop from panicking tools.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const defaultToolTimeout = 30 * time.Second

// Executor runs single tool invocations under a timeout.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
		timeout:  defaultToolTimeout,
	}
}

// WithTimeout overrides the per-call timeout.
func (e *Executor) WithTimeout(d time.Duration) *Executor {
	if d > 0 {
		e.timeout = d
	}
	return e
}

// Registry returns the underlying registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Invoke runs the named tool, bounding its runtime and converting panics
// into failed results. Unknown names propagate ErrUnknownTool.
func (e *Executor) Invoke(ctx context.Context, name string, args json.RawMessage) (result ToolResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = FailureResultf("tool %q panicked: %v", name, r)
			err = nil
		}
	}()

	result, err = e.registry.Invoke(ctx, name, args)
	if err != nil {
		return ToolResult{}, err
	}
	// A tool that ignores its context and reports success after the context
	// died must not be trusted; name the actual cause.
	if ctxErr := ctx.Err(); ctxErr != nil && result.Success() {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return FailureResult(fmt.Errorf("tool %q timed out after %s", name, e.timeout)), nil
		}
		return FailureResult(fmt.Errorf("tool %q cancelled", name)), nil
	}
	return result, nil
}
