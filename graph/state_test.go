package graph

import "testing"

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{"final answer terminates", StateAskModel, EventFinalAnswer, StateDone, false},
		{"tool calls hand off", StateAskModel, EventToolCallsRequested, StateRunTools, false},
		{"malformed call terminates", StateAskModel, EventMalformedToolCall, StateDone, false},
		{"round budget terminates", StateAskModel, EventRoundBudgetExhausted, StateDone, false},
		{"resolved tools cycle back", StateRunTools, EventToolsResolved, StateAskModel, false},

		{"ask model cannot resolve tools", StateAskModel, EventToolsResolved, StateDone, true},
		{"run tools cannot answer", StateRunTools, EventFinalAnswer, StateDone, true},
		{"run tools cannot request more", StateRunTools, EventToolCallsRequested, StateDone, true},
		{"done accepts nothing", StateDone, EventFinalAnswer, StateDone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, tt.event)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s on %s", tt.event, tt.state)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStateAndEventNames(t *testing.T) {
	if StateAskModel.String() != "ask_model" {
		t.Errorf("unexpected state name: %s", StateAskModel)
	}
	if EventToolsResolved.String() != "tools_resolved" {
		t.Errorf("unexpected event name: %s", EventToolsResolved)
	}
	if State(99).String() != "unknown" {
		t.Errorf("expected 'unknown' for out-of-range state")
	}
}
