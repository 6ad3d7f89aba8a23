// SQLite-backed checkpoint store.
//
// Information Hiding:
// - SQLite connection management hidden behind the Store interface
// - Schema and sequence allocation encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/petrides/loom/llm"
)

// SqliteStore implements Store using a SQLite database file.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory store (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// A pooled connection would see a different empty memory database.
	db.SetMaxOpenConns(1)

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id TEXT NOT NULL,
			checkpoint_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			messages TEXT NOT NULL,
			metadata TEXT NOT NULL,
			PRIMARY KEY (thread_id, checkpoint_id),
			UNIQUE (thread_id, seq)
		);

		CREATE TABLE IF NOT EXISTS threads (
			thread_id TEXT PRIMARY KEY,
			latest_checkpoint_id TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_checkpoints_thread_seq
		ON checkpoints(thread_id, seq DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Put appends a checkpoint and advances the latest pointer in one transaction.
func (s *SqliteStore) Put(ctx context.Context, threadID string, messages []llm.ChatMessage, meta Metadata) (Checkpoint, error) {
	if threadID == "" {
		return Checkpoint{}, fmt.Errorf("thread id cannot be empty")
	}

	id, err := gonanoid.New()
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to generate checkpoint id: %w", err)
	}

	if messages == nil {
		messages = []llm.ChatMessage{}
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to encode messages: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	createdAt := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	var seq int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM checkpoints WHERE thread_id = ?",
		threadID).Scan(&seq)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to allocate sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO checkpoints (thread_id, checkpoint_id, seq, created_at, messages, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		threadID, id, seq, createdAt.UnixNano(), string(messagesJSON), string(metaJSON))
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to insert checkpoint: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO threads (thread_id, latest_checkpoint_id, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(thread_id) DO UPDATE SET
			latest_checkpoint_id = excluded.latest_checkpoint_id,
			updated_at = excluded.updated_at`,
		threadID, id, createdAt.UnixNano())
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to advance latest pointer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Checkpoint{}, fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	return Checkpoint{
		ThreadID:  threadID,
		ID:        id,
		Seq:       seq,
		CreatedAt: createdAt,
		Messages:  messages,
		Metadata:  meta,
	}, nil
}

// Latest returns the thread's most recent checkpoint by following the
// latest pointer.
func (s *SqliteStore) Latest(ctx context.Context, threadID string) (Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT c.thread_id, c.checkpoint_id, c.seq, c.created_at, c.messages, c.metadata
		 FROM threads t
		 JOIN checkpoints c ON c.thread_id = t.thread_id AND c.checkpoint_id = t.latest_checkpoint_id
		 WHERE t.thread_id = ?`,
		threadID)

	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, fmt.Errorf("%w: %q", ErrNotFound, threadID)
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}
	return cp, nil
}

// ListThreads enumerates all threads with their current checkpoints,
// most recently updated first. Title fallback is applied.
func (s *SqliteStore) ListThreads(ctx context.Context) ([]ThreadInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.thread_id, c.checkpoint_id, c.seq, c.created_at, c.messages, c.metadata
		 FROM threads t
		 JOIN checkpoints c ON c.thread_id = t.thread_id AND c.checkpoint_id = t.latest_checkpoint_id
		 ORDER BY t.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	infos := []ThreadInfo{}
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		infos = append(infos, ThreadInfo{
			ThreadID: cp.ThreadID,
			Title:    cp.DisplayTitle(),
			Latest:   cp,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", err)
	}

	return infos, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCheckpoint(row scanner) (Checkpoint, error) {
	var cp Checkpoint
	var createdAt int64
	var messagesJSON, metaJSON string

	if err := row.Scan(&cp.ThreadID, &cp.ID, &cp.Seq, &createdAt, &messagesJSON, &metaJSON); err != nil {
		return Checkpoint{}, err
	}

	cp.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(messagesJSON), &cp.Messages); err != nil {
		return Checkpoint{}, fmt.Errorf("corrupt messages payload: %w", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &cp.Metadata); err != nil {
		return Checkpoint{}, fmt.Errorf("corrupt metadata payload: %w", err)
	}
	return cp, nil
}

// Verify SqliteStore implements Store
var _ Store = (*SqliteStore)(nil)
