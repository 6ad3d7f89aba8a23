// Package checkpoint provides durable, append-only storage of thread
// execution state.
//
// A checkpoint is an immutable snapshot of a thread's full message history
// plus metadata. Checkpoints for a thread form an append-only, time-ordered
// sequence; "current state" is the most recently written checkpoint, tracked
// by an explicit per-thread latest pointer rather than by scanning.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petrides/loom/llm"
)

// ErrNotFound is returned when a thread has never been checkpointed.
// Callers resuming a thread treat it as "start fresh", not as a failure.
var ErrNotFound = errors.New("thread not found")

// Metadata is the auxiliary data carried alongside the message sequence.
// Extra is reserved for future versioning fields.
type Metadata struct {
	Title string            `json:"title,omitempty"`
	Extra map[string]string `json:"extra,omitempty"`
}

// Checkpoint is an immutable snapshot of a thread's state.
type Checkpoint struct {
	ThreadID  string            `json:"thread_id"`
	ID        string            `json:"checkpoint_id"`
	Seq       int64             `json:"seq"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []llm.ChatMessage `json:"messages"`
	Metadata  Metadata          `json:"metadata"`
}

// ThreadInfo is one row of a thread listing: the thread, its display title
// (fallback applied), and its latest checkpoint.
type ThreadInfo struct {
	ThreadID string
	Title    string
	Latest   Checkpoint
}

// Store is the durable checkpoint storage contract.
//
// A Put that returns nil must be visible to all subsequent Latest/ListThreads
// calls, including after a crash and restart. The store assumes a single
// writer per thread at any instant; multi-process deployments must add a
// lease keyed by thread id.
type Store interface {
	// Put appends a new checkpoint holding the given messages and metadata
	// and atomically advances the thread's latest pointer. Checkpoint ids
	// are never reused or overwritten.
	Put(ctx context.Context, threadID string, messages []llm.ChatMessage, meta Metadata) (Checkpoint, error)

	// Latest returns the thread's most recent checkpoint, or ErrNotFound.
	Latest(ctx context.Context, threadID string) (Checkpoint, error)

	// ListThreads enumerates all known threads with their current state,
	// most recently updated first.
	ListThreads(ctx context.Context) ([]ThreadInfo, error)

	// Close releases the underlying storage.
	Close() error
}

// DefaultTitle derives the deterministic display-title fallback for a thread
// that has no explicit title yet.
func DefaultTitle(threadID string) string {
	prefix := threadID
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("Thread %s", prefix)
}

// DisplayTitle resolves a checkpoint's title, applying the fallback.
func (c Checkpoint) DisplayTitle() string {
	if c.Metadata.Title != "" {
		return c.Metadata.Title
	}
	return DefaultTitle(c.ThreadID)
}
