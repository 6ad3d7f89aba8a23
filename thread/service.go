// Package thread provides thread metadata bookkeeping on top of the
// checkpoint store. Titles are not structurally part of the control loop;
// they ride along in checkpoint metadata and every update produces a new
// checkpoint carrying the prior message sequence forward unchanged.
package thread

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petrides/loom/checkpoint"
)

// autoTitleLimit caps auto-generated titles to a sidebar-friendly length.
const autoTitleLimit = 30

// Service maps thread identifiers to human-readable titles.
type Service struct {
	store checkpoint.Store
	log   zerolog.Logger
}

// NewService creates a thread metadata service over the given store.
func NewService(store checkpoint.Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "thread").Logger(),
	}
}

// NewThreadID generates a fresh opaque thread identifier.
func NewThreadID() string {
	return uuid.NewString()
}

// AutoTitle derives a display title from the first user message: the first
// line, truncated.
func AutoTitle(userText string) string {
	title := strings.TrimSpace(userText)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if len(title) > autoTitleLimit {
		title = title[:autoTitleLimit]
	}
	return strings.TrimSpace(title)
}

// SetTitle persists a title for the thread. The prior message sequence is
// carried forward unchanged into the new checkpoint; a thread without
// checkpoints gets an empty one holding only the title.
func (s *Service) SetTitle(ctx context.Context, threadID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = checkpoint.DefaultTitle(threadID)
	}

	cp, err := s.store.Latest(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		_, err = s.store.Put(ctx, threadID, nil, checkpoint.Metadata{Title: title})
		return err
	}
	if err != nil {
		return err
	}

	meta := cp.Metadata
	meta.Title = title
	_, err = s.store.Put(ctx, threadID, cp.Messages, meta)
	if err == nil {
		s.log.Debug().Str("thread_id", threadID).Str("title", title).Msg("title updated")
	}
	return err
}

// EnsureTitle sets an auto-generated title from the user's text if the
// thread does not have one yet.
func (s *Service) EnsureTitle(ctx context.Context, threadID, userText string) error {
	cp, err := s.store.Latest(ctx, threadID)
	if err == nil && cp.Metadata.Title != "" {
		return nil
	}
	if err != nil && !errors.Is(err, checkpoint.ErrNotFound) {
		return err
	}

	title := AutoTitle(userText)
	if title == "" {
		return nil
	}
	return s.SetTitle(ctx, threadID, title)
}

// List enumerates all known threads with resolved titles, most recently
// updated first.
func (s *Service) List(ctx context.Context) ([]checkpoint.ThreadInfo, error) {
	return s.store.ListThreads(ctx)
}
