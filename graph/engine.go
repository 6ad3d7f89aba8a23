// Control loop implementation.
//
// The engine drives one thread at a time through the execution graph:
// load the latest checkpoint, append the user message, then alternate
// between asking the model and resolving tool batches until the model emits
// a final answer. Every transition is persisted before the next begins, so
// a crash loses at most the in-flight step.
//
// Information Hiding:
// - Graph traversal and round accounting hidden
// - Checkpoint plumbing hidden behind the injected Store
// - Tool batch fan-out hidden

package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/petrides/loom/checkpoint"
	"github.com/petrides/loom/llm"
	"github.com/petrides/loom/tools"
)

// DefaultMaxRounds bounds how many times the model may be consulted per
// user message before the loop forcibly terminates.
const DefaultMaxRounds = 10

// ErrCheckpointWrite marks a failure to durably persist a state transition.
// The loop never advances past a transition that was not recorded.
var ErrCheckpointWrite = errors.New("checkpoint write failed")

// Engine executes the agent graph over a durable checkpoint store.
type Engine struct {
	gateway      *llm.Gateway
	executor     *tools.Executor
	store        checkpoint.Store
	systemPrompt string
	maxRounds    int
	log          zerolog.Logger

	// Single-writer-per-thread within this process. Multi-process
	// deployments need a lease keyed by thread id on top of this.
	mu          sync.Mutex
	threadLocks map[string]*sync.Mutex
}

// NewEngine creates an engine with the given collaborators.
func NewEngine(gateway *llm.Gateway, executor *tools.Executor, store checkpoint.Store, log zerolog.Logger) *Engine {
	return &Engine{
		gateway:     gateway,
		executor:    executor,
		store:       store,
		maxRounds:   DefaultMaxRounds,
		log:         log.With().Str("component", "engine").Logger(),
		threadLocks: make(map[string]*sync.Mutex),
	}
}

// WithMaxRounds overrides the round ceiling.
func (e *Engine) WithMaxRounds(n int) *Engine {
	if n > 0 {
		e.maxRounds = n
	}
	return e
}

// WithSystemPrompt sets a system prompt prepended at model-call time.
// The prompt is never persisted into checkpoints.
func (e *Engine) WithSystemPrompt(prompt string) *Engine {
	e.systemPrompt = prompt
	return e
}

// History returns the thread's current message sequence, or an empty
// sequence when the thread has never been checkpointed.
func (e *Engine) History(ctx context.Context, threadID string) ([]llm.ChatMessage, error) {
	cp, err := e.store.Latest(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return []llm.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cp.Messages, nil
}

// HandleUserMessage is the sole caller-facing entry point: it appends the
// user message to the thread, runs the graph to completion, and returns the
// full message sequence. Synchronous from the caller's perspective.
func (e *Engine) HandleUserMessage(ctx context.Context, threadID, userText string) ([]llm.ChatMessage, error) {
	if threadID == "" {
		return nil, fmt.Errorf("thread id cannot be empty")
	}

	unlock := e.lockThread(threadID)
	defer unlock()

	log := e.log.With().Str("thread_id", threadID).Logger()

	// Resume from the latest checkpoint; a thread never checkpointed
	// starts fresh.
	var messages []llm.ChatMessage
	var meta checkpoint.Metadata
	cp, err := e.store.Latest(ctx, threadID)
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
		messages = []llm.ChatMessage{}
	case err != nil:
		return nil, fmt.Errorf("failed to resume thread: %w", err)
	default:
		messages = cp.Messages
		meta = cp.Metadata
	}

	messages = append(messages, llm.UserMessage(userText))
	if err := e.persist(ctx, threadID, messages, meta); err != nil {
		return nil, err
	}

	defs := e.executor.Registry().Definitions()
	state := StateAskModel
	rounds := 0
	var pending []llm.ToolCall

	for state != StateDone {
		if ctx.Err() != nil {
			// Partial work from a cancelled round is discarded, never
			// checkpointed; the thread stays resumable.
			return nil, ctx.Err()
		}

		switch state {
		case StateAskModel:
			if rounds >= e.maxRounds {
				log.Warn().Int("rounds", rounds).Msg("round ceiling reached")
				messages = append(messages, llm.AssistantMessage(maxRoundsNotice(e.maxRounds)))
				if err := e.persist(ctx, threadID, messages, meta); err != nil {
					return nil, err
				}
				state = e.advance(state, EventRoundBudgetExhausted)
				continue
			}

			turn, err := e.gateway.Complete(ctx, e.withSystemPrompt(messages), defs)
			if err != nil {
				return nil, fmt.Errorf("model round failed: %w", err)
			}
			rounds++

			if turn.Terminal() {
				messages = append(messages, turn.Message())
				if err := e.persist(ctx, threadID, messages, meta); err != nil {
					return nil, err
				}
				state = e.advance(state, EventFinalAnswer)
				continue
			}

			if err := e.validateCalls(turn.ToolCalls); err != nil {
				log.Warn().Err(err).Msg("malformed tool call from model")
				messages = append(messages, llm.AssistantMessage(malformedCallNotice(err)))
				if err := e.persist(ctx, threadID, messages, meta); err != nil {
					return nil, err
				}
				state = e.advance(state, EventMalformedToolCall)
				continue
			}

			messages = append(messages, turn.Message())
			if err := e.persist(ctx, threadID, messages, meta); err != nil {
				return nil, err
			}
			pending = turn.ToolCalls
			state = e.advance(state, EventToolCallsRequested)

		case StateRunTools:
			results := e.runToolBatch(ctx, pending)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			messages = append(messages, results...)
			if err := e.persist(ctx, threadID, messages, meta); err != nil {
				return nil, err
			}
			pending = nil
			state = e.advance(state, EventToolsResolved)
		}
	}

	return messages, nil
}

// validateCalls checks every model-issued call against the registry before
// any tool runs. A single bad call poisons the whole batch: the round aborts
// with a diagnostic instead of partially executing.
func (e *Engine) validateCalls(calls []llm.ToolCall) error {
	registry := e.executor.Registry()
	for _, call := range calls {
		if err := registry.Validate(call.Name, call.Arguments); err != nil {
			return &llm.MalformedToolCallError{Tool: call.Name, Reason: err.Error()}
		}
	}
	return nil
}

// runToolBatch resolves all pending calls concurrently. Results land at the
// index of their originating request, so the merged order is deterministic
// and every correlation id gets exactly one result.
func (e *Engine) runToolBatch(ctx context.Context, calls []llm.ToolCall) []llm.ChatMessage {
	results := make([]llm.ChatMessage, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()

			e.log.Debug().Str("tool", call.Name).Str("call_id", call.ID).Msg("running tool")
			result, err := e.executor.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				// Validation already passed; treat a late registry miss as
				// tool failure data rather than crashing the round.
				result = tools.FailureResult(err)
			}
			results[i] = llm.ToolMessage(call.Name, call.ID, result.Body())
		}(i, call)
	}
	wg.Wait()

	return results
}

// advance applies a transition the loop believes is valid. A rejected pair
// is a driver bug; it is logged and the loop terminates instead of cycling
// on undefined state.
func (e *Engine) advance(s State, ev Event) State {
	next, err := Transition(s, ev)
	if err != nil {
		e.log.Error().Err(err).Msg("invalid state transition")
		return StateDone
	}
	return next
}

// persist writes the current state as a new checkpoint. State transitions
// are only valid once durably recorded.
func (e *Engine) persist(ctx context.Context, threadID string, messages []llm.ChatMessage, meta checkpoint.Metadata) error {
	if _, err := e.store.Put(ctx, threadID, messages, meta); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointWrite, err)
	}
	return nil
}

// withSystemPrompt prepends the system prompt for the model call without
// persisting it into the thread.
func (e *Engine) withSystemPrompt(messages []llm.ChatMessage) []llm.ChatMessage {
	if e.systemPrompt == "" {
		return messages
	}
	out := make([]llm.ChatMessage, 0, len(messages)+1)
	out = append(out, llm.SystemMessage(e.systemPrompt))
	out = append(out, messages...)
	return out
}

func (e *Engine) lockThread(threadID string) func() {
	e.mu.Lock()
	lock, ok := e.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		e.threadLocks[threadID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func maxRoundsNotice(maxRounds int) string {
	return fmt.Sprintf(
		"I stopped after %d rounds without reaching a final answer. The conversation was truncated to avoid looping; please ask again to continue.",
		maxRounds)
}

func malformedCallNotice(err error) string {
	return fmt.Sprintf(
		"I requested a tool call that could not be honored (%v). The round was aborted; please rephrase your request.",
		err)
}
