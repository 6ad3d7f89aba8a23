package thread

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petrides/loom/checkpoint"
	"github.com/petrides/loom/llm"
)

func newTestService(t *testing.T) (*Service, *checkpoint.SqliteStore) {
	t.Helper()
	store, err := checkpoint.NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, zerolog.Nop()), store
}

func TestAutoTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short text", "What is Go?", "What is Go?"},
		{"trimmed", "  hello  ", "hello"},
		{"first line only", "line one\nline two", "line one"},
		{"truncated to limit", "aaaaaaaaaabbbbbbbbbbccccccccccdd", "aaaaaaaaaabbbbbbbbbbcccccccccc"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoTitle(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewThreadIDUnique(t *testing.T) {
	a, b := NewThreadID(), NewThreadID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestSetTitleCarriesMessagesForward(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	messages := []llm.ChatMessage{
		llm.UserMessage("hello"),
		llm.AssistantMessage("hi"),
	}
	if _, err := store.Put(ctx, "thread-1", messages, checkpoint.Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := service.SetTitle(ctx, "thread-1", "Greetings"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	latest, err := store.Latest(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Metadata.Title != "Greetings" {
		t.Errorf("expected title 'Greetings', got %q", latest.Metadata.Title)
	}
	if len(latest.Messages) != 2 {
		t.Errorf("expected messages carried forward, got %d", len(latest.Messages))
	}
	if latest.Seq != 2 {
		t.Errorf("expected a new checkpoint (seq 2), got seq %d", latest.Seq)
	}
}

func TestSetTitleOnFreshThread(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	if err := service.SetTitle(ctx, "thread-1", "Planned"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	latest, err := store.Latest(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Metadata.Title != "Planned" {
		t.Errorf("expected title 'Planned', got %q", latest.Metadata.Title)
	}
	if len(latest.Messages) != 0 {
		t.Errorf("expected empty message sequence, got %d", len(latest.Messages))
	}
}

func TestSetTitleEmptyFallsBack(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	if err := service.SetTitle(ctx, "abc123def", "   "); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	latest, err := store.Latest(ctx, "abc123def")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Metadata.Title != "Thread abc123" {
		t.Errorf("expected fallback title, got %q", latest.Metadata.Title)
	}
}

func TestEnsureTitleSetsOnce(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureTitle(ctx, "thread-1", "What is the AAPL price today?"); err != nil {
		t.Fatalf("EnsureTitle failed: %v", err)
	}

	latest, err := store.Latest(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	want := "What is the AAPL price today?"
	if latest.Metadata.Title != want {
		t.Errorf("expected %q, got %q", want, latest.Metadata.Title)
	}

	// A later message must not overwrite the existing title.
	if err := service.EnsureTitle(ctx, "thread-1", "and MSFT?"); err != nil {
		t.Fatalf("EnsureTitle failed: %v", err)
	}
	latest, err = store.Latest(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Metadata.Title != want {
		t.Errorf("title overwritten: got %q", latest.Metadata.Title)
	}
}

func TestEnsureTitleBlankTextIsNoop(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureTitle(ctx, "thread-1", "   "); err != nil {
		t.Fatalf("EnsureTitle failed: %v", err)
	}

	if _, err := store.Latest(ctx, "thread-1"); err == nil {
		t.Error("expected no checkpoint for blank title text")
	}
}

func TestListResolvesTitles(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "untitled-1", nil, checkpoint.Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := service.SetTitle(ctx, "titled-1", "My thread"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	infos, err := service.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(infos))
	}

	byID := map[string]string{}
	for _, info := range infos {
		byID[info.ThreadID] = info.Title
	}
	if byID["titled-1"] != "My thread" {
		t.Errorf("expected 'My thread', got %q", byID["titled-1"])
	}
	if byID["untitled-1"] != "Thread untitl" {
		t.Errorf("expected fallback title 'Thread untitl', got %q", byID["untitled-1"])
	}
}
