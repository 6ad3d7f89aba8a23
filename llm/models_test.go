package llm

import (
	"encoding/json"
	"testing"
)

func TestAssistantTurnTerminal(t *testing.T) {
	if !(AssistantTurn{Content: "done"}).Terminal() {
		t.Error("turn without tool calls should be terminal")
	}
	turn := AssistantTurn{ToolCalls: []ToolCall{{ID: "call_1", Name: "calculator"}}}
	if turn.Terminal() {
		t.Error("turn with tool calls should not be terminal")
	}
}

func TestAssistantTurnMessage(t *testing.T) {
	turn := AssistantTurn{
		Content:   "working on it",
		ToolCalls: []ToolCall{{ID: "call_1", Name: "calculator"}},
	}
	msg := turn.Message()
	if msg.Role != RoleAssistant {
		t.Errorf("expected assistant role, got %q", msg.Role)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "call_1" {
		t.Errorf("tool calls not carried into message: %+v", msg.ToolCalls)
	}
}

func TestToolMessageFields(t *testing.T) {
	msg := ToolMessage("calculator", "call_1", `{"result":4}`)
	if msg.Role != RoleTool {
		t.Errorf("expected tool role, got %q", msg.Role)
	}
	if msg.ToolName != "calculator" || msg.ToolCallID != "call_1" {
		t.Errorf("correlation fields wrong: %+v", msg)
	}
}

func TestChatMessageJSONOmitsEmptyToolFields(t *testing.T) {
	data, err := json.Marshal(UserMessage("hi"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"role":"user","content":"hi"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestChatMessageJSONRoundTrip(t *testing.T) {
	original := ChatMessage{
		Role: RoleAssistant,
		ToolCalls: []ToolCall{
			{ID: "call_1", Name: "calculator", Arguments: []byte(`{"first_num":1}`)},
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded ChatMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(decoded.ToolCalls))
	}
	if string(decoded.ToolCalls[0].Arguments) != `{"first_num":1}` {
		t.Errorf("arguments corrupted: %s", decoded.ToolCalls[0].Arguments)
	}
}
