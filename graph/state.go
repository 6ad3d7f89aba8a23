// Execution graph states and the pure transition function.
//
// The graph is cyclic: ASK_MODEL hands off to RUN_TOOLS whenever the model
// requests tools, and RUN_TOOLS always returns to ASK_MODEL. Modeling the
// cycle as an explicit FSM (instead of recursion) lets the engine enforce
// the round ceiling and cancellation structurally.

package graph

import "fmt"

// State is a node of the execution graph.
type State int

const (
	// StateAskModel consults the model gateway with the current history.
	StateAskModel State = iota
	// StateRunTools resolves every pending tool call of the last assistant message.
	StateRunTools
	// StateDone is the terminal state; the thread is checkpointed and idle.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAskModel:
		return "ask_model"
	case StateRunTools:
		return "run_tools"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is an observed outcome that drives a transition.
type Event int

const (
	// EventFinalAnswer: the model produced a terminal turn.
	EventFinalAnswer Event = iota
	// EventToolCallsRequested: the model requested one or more tools.
	EventToolCallsRequested
	// EventToolsResolved: every pending tool call has exactly one result.
	EventToolsResolved
	// EventMalformedToolCall: a requested call failed registry validation.
	EventMalformedToolCall
	// EventRoundBudgetExhausted: the configured round ceiling was hit.
	EventRoundBudgetExhausted
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventFinalAnswer:
		return "final_answer"
	case EventToolCallsRequested:
		return "tool_calls_requested"
	case EventToolsResolved:
		return "tools_resolved"
	case EventMalformedToolCall:
		return "malformed_tool_call"
	case EventRoundBudgetExhausted:
		return "round_budget_exhausted"
	default:
		return "unknown"
	}
}

// Transition is the pure state-transition function of the execution graph.
// It rejects pairs the graph cannot produce.
func Transition(s State, e Event) (State, error) {
	switch s {
	case StateAskModel:
		switch e {
		case EventFinalAnswer, EventMalformedToolCall, EventRoundBudgetExhausted:
			return StateDone, nil
		case EventToolCallsRequested:
			return StateRunTools, nil
		}
	case StateRunTools:
		if e == EventToolsResolved {
			return StateAskModel, nil
		}
	}
	return StateDone, fmt.Errorf("invalid transition: %s on %s", e, s)
}
