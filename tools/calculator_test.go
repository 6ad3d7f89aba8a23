package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func calcExec(t *testing.T, args string) ToolResult {
	t.Helper()
	return NewCalculatorTool().Execute(context.Background(), json.RawMessage(args))
}

func decodeCalcOutput(t *testing.T, result ToolResult) calculatorOutput {
	t.Helper()
	var out calculatorOutput
	if err := json.Unmarshal(result.Payload, &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	return out
}

func TestCalculatorOperations(t *testing.T) {
	tests := []struct {
		name string
		args string
		want float64
	}{
		{"add", `{"first_num": 2, "second_num": 3, "operation": "add"}`, 5},
		{"sub", `{"first_num": 10, "second_num": 4, "operation": "sub"}`, 6},
		{"mul", `{"first_num": 6, "second_num": 7, "operation": "mul"}`, 42},
		{"div", `{"first_num": 8, "second_num": 2, "operation": "div"}`, 4},
		{"negative result", `{"first_num": 3, "second_num": 5, "operation": "sub"}`, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calcExec(t, tt.args)
			if !result.Success() {
				t.Fatalf("unexpected failure: %v", result.Err)
			}
			out := decodeCalcOutput(t, result)
			if out.Result != tt.want {
				t.Errorf("expected %g, got %g", tt.want, out.Result)
			}
		})
	}
}

func TestCalculatorDivisionByZero(t *testing.T) {
	result := calcExec(t, `{"first_num": 8, "second_num": 0, "operation": "div"}`)
	if result.Success() {
		t.Fatal("expected failure for division by zero")
	}
	if result.Err.Error() != "Division by zero is not allowed" {
		t.Errorf("unexpected error message: %q", result.Err.Error())
	}
}

func TestCalculatorUnsupportedOperation(t *testing.T) {
	result := calcExec(t, `{"first_num": 1, "second_num": 2, "operation": "pow"}`)
	if result.Success() {
		t.Fatal("expected failure for unsupported operation")
	}
	if result.Err.Error() != "Unsupported operation 'pow'" {
		t.Errorf("unexpected error message: %q", result.Err.Error())
	}
}

func TestCalculatorInvalidJSON(t *testing.T) {
	result := calcExec(t, `{not json`)
	if result.Success() {
		t.Fatal("expected failure for invalid JSON")
	}
}

func TestCalculatorFailureBody(t *testing.T) {
	result := calcExec(t, `{"first_num": 8, "second_num": 0, "operation": "div"}`)

	var body map[string]string
	if err := json.Unmarshal([]byte(result.Body()), &body); err != nil {
		t.Fatalf("failure body is not valid JSON: %v", err)
	}
	if body["error"] != "Division by zero is not allowed" {
		t.Errorf("unexpected error payload: %v", body)
	}
}
