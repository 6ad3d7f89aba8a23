// Package llm provides the model gateway and shared message types.
package llm

import "encoding/json"

// Message roles. Ordering within a thread is append-only and significant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage represents a single turn unit in a thread.
// Messages are immutable once created.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant messages requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool messages: correlation id
	ToolName   string     `json:"tool_name,omitempty"`    // tool messages: originating tool
}

// ToolCall is a structured tool invocation requested by the model.
// ID correlates the request with its eventual tool-role result message.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition defines a tool the model may call.
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    RoleSystem,
		Content: content,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    RoleUser,
		Content: content,
	}
}

// AssistantMessage creates a terminal assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    RoleAssistant,
		Content: content,
	}
}

// ToolMessage creates a tool result message correlated to a tool call.
func ToolMessage(toolName, callID, content string) ChatMessage {
	return ChatMessage{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: callID,
		ToolName:   toolName,
	}
}

// AssistantTurn is the model's single response unit: either a final answer
// (no tool calls) or a batch of tool-call requests that must all be resolved
// before the model is consulted again.
type AssistantTurn struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// Terminal reports whether the turn is a final answer with no pending tool calls.
func (t AssistantTurn) Terminal() bool {
	return len(t.ToolCalls) == 0
}

// Message converts the turn into the assistant message appended to the thread.
func (t AssistantTurn) Message() ChatMessage {
	return ChatMessage{
		Role:      RoleAssistant,
		Content:   t.Content,
		ToolCalls: t.ToolCalls,
	}
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}
