// Package tools provides the tool system for the agent runtime.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Tool parameter schemas hidden in implementations
// - Registry implementation details hidden from consumers
// - Error handling internalized per tool
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petrides/loom/llm"
)

// ToolMetadata describes what a tool does and how to call it.
// Parameters is a JSON Schema object describing the argument shape.
type ToolMetadata struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Definition converts the metadata into the model-facing tool definition.
func (m ToolMetadata) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        m.Name,
		Description: m.Description,
		Parameters:  m.Parameters,
	}
}

// ToolResult is the outcome of one tool invocation: a structured success
// payload XOR an error description. Tool failure is data, not a fault -
// the control loop feeds the error payload back to the model so it can react.
type ToolResult struct {
	Payload json.RawMessage `json:"-"`
	Err     error           `json:"-"`
}

// Success returns true if the tool execution succeeded.
func (t ToolResult) Success() bool {
	return t.Err == nil
}

// Body returns the JSON document carried into the tool message: the success
// payload as-is, or {"error": "..."} on failure. The model receives error
// text verbatim.
func (t ToolResult) Body() string {
	if t.Err != nil {
		body, _ := json.Marshal(map[string]string{"error": t.Err.Error()})
		return string(body)
	}
	if len(t.Payload) == 0 {
		return "{}"
	}
	return string(t.Payload)
}

// SuccessResult creates a successful tool result from any marshalable value.
func SuccessResult(v interface{}) ToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return FailureResultf("failed to encode tool output: %v", err)
	}
	return ToolResult{Payload: payload}
}

// RawResult creates a successful tool result from a pre-encoded JSON document.
func RawResult(payload json.RawMessage) ToolResult {
	return ToolResult{Payload: payload}
}

// FailureResult creates a failed tool result.
func FailureResult(err error) ToolResult {
	return ToolResult{Err: err}
}

// FailureResultf creates a failed tool result with a formatted error message.
func FailureResultf(format string, args ...interface{}) ToolResult {
	return ToolResult{Err: fmt.Errorf(format, args...)}
}

// Tool is the interface that all tools must implement.
//
// Execute never returns a Go error for domain failures; those are carried
// inside the ToolResult so the loop can append them as data.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameter schema).
	Metadata() ToolMetadata

	// Execute runs the tool with the given JSON arguments.
	Execute(ctx context.Context, args json.RawMessage) ToolResult
}
