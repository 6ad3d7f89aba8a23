// Groq Provider implementation using go-openai library.
//
// Information Hiding:
// - Uses the OpenAI-compatible API with Groq's base URL
// - Serves llama and mixtral family models hosted on Groq

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements the Provider interface for Groq-hosted models.
type GroqProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(apiKey, model string, maxTokens uint32, temperature float32) *GroqProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = groqBaseURL

	return &GroqProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the provider name.
func (p *GroqProvider) Name() string {
	return "groq"
}

// Model returns the current model.
func (p *GroqProvider) Model() string {
	return p.model
}

// Chat sends a chat completion request without tool definitions.
func (p *GroqProvider) Chat(ctx context.Context, messages []ChatMessage) (AssistantTurn, error) {
	return openAIChat(ctx, p.client, p.model, p.maxTokens, p.temperature, messages, nil)
}

// ChatWithTools sends a chat completion request with tool definitions.
func (p *GroqProvider) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (AssistantTurn, error) {
	return openAIChat(ctx, p.client, p.model, p.maxTokens, p.temperature, messages, tools)
}

// StreamChat streams a chat completion.
func (p *GroqProvider) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	return openAIStream(ctx, p.client, p.model, p.maxTokens, p.temperature, messages, chunks)
}

// Verify GroqProvider implements Provider
var _ Provider = (*GroqProvider)(nil)
