// Provider interface - the abstract interface for LLM backends.
// Each implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling

package llm

import (
	"context"
)

// Provider defines the abstract interface for LLM backends.
// Implementations hide provider-specific details while exposing
// a consistent interface for chat completions.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends a plain chat completion request without tool definitions.
	Chat(ctx context.Context, messages []ChatMessage) (AssistantTurn, error)

	// ChatWithTools sends a chat completion request with tool definitions.
	// The model may respond with tool calls in AssistantTurn.ToolCalls.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (AssistantTurn, error)

	// StreamChat streams a chat completion, sending text chunks to the
	// provided channel. Returns token usage when the provider reports it.
	// Streaming is a display convenience only; the control loop always
	// works from complete AssistantTurns.
	StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error)
}
