package llm

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable marks transient backend failures (network errors,
// rate limiting, upstream outages, timeouts). Callers may retry; the
// Gateway already applies bounded backoff before surfacing it.
var ErrModelUnavailable = errors.New("model unavailable")

// MalformedToolCallError signals a model/tool-schema mismatch: the model
// requested a tool that is not registered, or its arguments failed schema
// validation. Non-retryable; the round should abort with a diagnostic
// message instead of being retried.
type MalformedToolCallError struct {
	Tool   string
	Reason string
}

func (e *MalformedToolCallError) Error() string {
	return fmt.Sprintf("malformed tool call %q: %s", e.Tool, e.Reason)
}

// IsRetryable reports whether the error may succeed on retry.
func IsRetryable(err error) bool {
	var malformed *MalformedToolCallError
	if errors.As(err, &malformed) {
		return false
	}
	return errors.Is(err, ErrModelUnavailable)
}
