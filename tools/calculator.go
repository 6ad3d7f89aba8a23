// Calculator tool: basic arithmetic on two numbers.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// CalculatorTool performs add/sub/mul/div on two numbers.
type CalculatorTool struct{}

// NewCalculatorTool creates a calculator tool.
func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

// Metadata returns the tool metadata.
func (t *CalculatorTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "calculator",
		Description: "Perform a basic arithmetic operation on two numbers. Supported operations: add, sub, mul, div",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"first_num": map[string]interface{}{
					"type":        "number",
					"description": "The first operand",
				},
				"second_num": map[string]interface{}{
					"type":        "number",
					"description": "The second operand",
				},
				"operation": map[string]interface{}{
					"type":        "string",
					"description": "One of: add, sub, mul, div",
				},
			},
			"required": []string{"first_num", "second_num", "operation"},
		},
	}
}

type calculatorArgs struct {
	FirstNum  float64 `json:"first_num"`
	SecondNum float64 `json:"second_num"`
	Operation string  `json:"operation"`
}

type calculatorOutput struct {
	FirstNum  float64 `json:"first_num"`
	SecondNum float64 `json:"second_num"`
	Operation string  `json:"operation"`
	Result    float64 `json:"result"`
}

// Execute performs the arithmetic operation.
func (t *CalculatorTool) Execute(_ context.Context, args json.RawMessage) ToolResult {
	var a calculatorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err))
	}

	var result float64
	switch a.Operation {
	case "add":
		result = a.FirstNum + a.SecondNum
	case "sub":
		result = a.FirstNum - a.SecondNum
	case "mul":
		result = a.FirstNum * a.SecondNum
	case "div":
		if a.SecondNum == 0 {
			return FailureResultf("Division by zero is not allowed")
		}
		result = a.FirstNum / a.SecondNum
	default:
		return FailureResultf("Unsupported operation '%s'", a.Operation)
	}

	return SuccessResult(calculatorOutput{
		FirstNum:  a.FirstNum,
		SecondNum: a.SecondNum,
		Operation: a.Operation,
		Result:    result,
	})
}

// Verify CalculatorTool implements Tool
var _ Tool = (*CalculatorTool)(nil)
