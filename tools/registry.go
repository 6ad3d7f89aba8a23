// Tool registry with dynamic registration.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Argument schema validation hidden behind Validate

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/petrides/loom/llm"
)

// ErrUnknownTool is returned when a tool name is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Registry manages the set of callable tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns model-facing definitions for all registered tools,
// in name order so prompts are deterministic.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.tools[name].Metadata().Definition())
	}
	return defs
}

// Validate checks a model-issued call against the registry: the tool must
// exist and the arguments must satisfy its declared JSON schema. A failure
// here is a model/schema mismatch, not a tool execution failure.
func (r *Registry) Validate(name string, args json.RawMessage) error {
	tool, exists := r.Get(name)
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	schema := tool.Metadata().Parameters
	if schema == nil {
		return nil
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewBytesLoader(args),
	)
	if err != nil {
		return fmt.Errorf("argument validation for %q: %w", name, err)
	}
	if !result.Valid() {
		var reasons []string
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		return fmt.Errorf("arguments for %q failed schema validation: %v", name, reasons)
	}
	return nil
}

// Invoke runs the named tool with the given arguments. Unknown names fail
// with ErrUnknownTool; every other failure is carried inside the ToolResult.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (ToolResult, error) {
	tool, exists := r.Get(name)
	if !exists {
		return ToolResult{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool.Execute(ctx, args), nil
}
