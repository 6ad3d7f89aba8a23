// Model gateway - wraps a Provider with the retry policy the control loop
// relies on.
//
// The gateway owns transient-failure handling: every provider error that is
// not a caller cancellation is classified as ErrModelUnavailable and retried
// with bounded exponential backoff. Providers themselves never retry.

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultMaxAttempts = 3
	baseRetryDelay     = 200 * time.Millisecond
	maxRetryDelay      = 5 * time.Second
)

// Gateway issues chat completions against a Provider and produces exactly
// one AssistantTurn per Complete call.
type Gateway struct {
	provider    Provider
	maxAttempts int
	log         zerolog.Logger
}

// NewGateway creates a gateway around the given provider.
func NewGateway(provider Provider, log zerolog.Logger) *Gateway {
	return &Gateway{
		provider:    provider,
		maxAttempts: defaultMaxAttempts,
		log:         log.With().Str("component", "gateway").Str("provider", provider.Name()).Logger(),
	}
}

// WithMaxAttempts overrides the retry budget for transient failures.
func (g *Gateway) WithMaxAttempts(n int) *Gateway {
	if n > 0 {
		g.maxAttempts = n
	}
	return g
}

// Provider returns the underlying provider.
func (g *Gateway) Provider() Provider {
	return g.provider
}

// Complete sends the message history and tool definitions to the model and
// returns its next turn. Transient failures are retried up to the configured
// budget; the returned error wraps ErrModelUnavailable once it is exhausted.
func (g *Gateway) Complete(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (AssistantTurn, error) {
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBackoff(attempt)
			g.log.Debug().Int("attempt", attempt).Dur("backoff", delay).Msg("retrying model call")
			select {
			case <-ctx.Done():
				return AssistantTurn{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		turn, err := g.provider.ChatWithTools(ctx, messages, tools)
		if err == nil {
			ensureCallIDs(&turn)
			return turn, nil
		}
		if ctx.Err() != nil {
			// Caller cancelled or the overall deadline passed; not ours to retry.
			return AssistantTurn{}, ctx.Err()
		}
		lastErr = err
		g.log.Warn().Err(err).Int("attempt", attempt+1).Msg("model call failed")
	}

	return AssistantTurn{}, fmt.Errorf("%w: %d attempts: %v", ErrModelUnavailable, g.maxAttempts, lastErr)
}

// Stream streams a completion for display purposes.
func (g *Gateway) Stream(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	usage, err := g.provider.StreamChat(ctx, messages, chunks)
	if err != nil && ctx.Err() == nil && !errors.Is(err, ErrModelUnavailable) {
		return usage, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return usage, err
}

// ensureCallIDs fills in correlation ids for providers that omit them
// (Gemini reuses the function name). Every tool call must be individually
// addressable so results merge deterministically.
func ensureCallIDs(turn *AssistantTurn) {
	seen := make(map[string]bool, len(turn.ToolCalls))
	for i := range turn.ToolCalls {
		id := turn.ToolCalls[i].ID
		if id == "" || seen[id] {
			turn.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
		seen[turn.ToolCalls[i].ID] = true
	}
}

func retryBackoff(attempt int) time.Duration {
	delay := baseRetryDelay * time.Duration(1<<attempt)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
