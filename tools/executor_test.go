package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// slowTool blocks until its context is done.
type slowTool struct{}

func (t *slowTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: "slow", Description: "blocks forever"}
}

func (t *slowTool) Execute(ctx context.Context, _ json.RawMessage) ToolResult {
	<-ctx.Done()
	return FailureResult(ctx.Err())
}

// stubbornTool ignores cancellation and reports success anyway.
type stubbornTool struct{}

func (t *stubbornTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: "stubborn", Description: "succeeds after its context dies"}
}

func (t *stubbornTool) Execute(ctx context.Context, _ json.RawMessage) ToolResult {
	<-ctx.Done()
	return SuccessResult(map[string]string{"status": "finished"})
}

// panickyTool panics on every call.
type panickyTool struct{}

func (t *panickyTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: "panicky", Description: "always panics"}
}

func (t *panickyTool) Execute(ctx context.Context, _ json.RawMessage) ToolResult {
	panic("boom")
}

func TestExecutorInvoke(t *testing.T) {
	registry := newTestRegistry(t)
	executor := NewExecutor(registry)

	result, err := executor.Invoke(context.Background(), "calculator",
		json.RawMessage(`{"first_num": 1, "second_num": 2, "operation": "add"}`))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !result.Success() {
		t.Fatalf("unexpected tool failure: %v", result.Err)
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	registry := newTestRegistry(t)
	executor := NewExecutor(registry)

	_, err := executor.Invoke(context.Background(), "weather", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestExecutorTimeout(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&slowTool{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	executor := NewExecutor(registry).WithTimeout(50 * time.Millisecond)

	start := time.Now()
	result, err := executor.Invoke(context.Background(), "slow", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not enforced")
	}
	if result.Success() {
		t.Error("expected failed result for timed-out tool")
	}
}

func TestExecutorDeadlineNamedAsTimeout(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubbornTool{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	executor := NewExecutor(registry).WithTimeout(20 * time.Millisecond)

	result, err := executor.Invoke(context.Background(), "stubborn", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.Success() {
		t.Fatal("success reported after the deadline must be rejected")
	}
	if !strings.Contains(result.Err.Error(), "timed out") {
		t.Errorf("expected timeout in message, got %q", result.Err.Error())
	}
}

func TestExecutorCancellationNotNamedTimeout(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubbornTool{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	executor := NewExecutor(registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := executor.Invoke(ctx, "stubborn", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.Success() {
		t.Fatal("success reported after cancellation must be rejected")
	}
	if !strings.Contains(result.Err.Error(), "cancelled") {
		t.Errorf("expected cancellation in message, got %q", result.Err.Error())
	}
	if strings.Contains(result.Err.Error(), "timed out") {
		t.Errorf("cancellation misreported as timeout: %q", result.Err.Error())
	}
}

func TestExecutorPanicBecomesFailure(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&panickyTool{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	executor := NewExecutor(registry)

	result, err := executor.Invoke(context.Background(), "panicky", nil)
	if err != nil {
		t.Fatalf("panic should not surface as error, got: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failed result for panicking tool")
	}
	if !strings.Contains(result.Err.Error(), "panicked") {
		t.Errorf("unexpected error message: %q", result.Err.Error())
	}
}
