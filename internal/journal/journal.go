// Package journal keeps an append-only SQLite record of accepted file saves.
//
// The journal is an audit trail only. The relay never reads it back into the
// document store, so document state is still lost when the process stops.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_saves (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	sender_id  TEXT NOT NULL,
	version    INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	saved_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_file_saves_saved_at ON file_saves(saved_at);
`

// DefaultBuffer is how many saves may wait for the writer before new ones
// are dropped.
const DefaultBuffer = 256

// Entry is one recorded save.
type Entry struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	SenderID string    `json:"senderId"`
	Version  int64     `json:"version"`
	Size     int       `json:"size"`
	SavedAt  time.Time `json:"savedAt"`
}

// Journal records saves on a background writer so that RecordSave never
// blocks the relay's dispatch loop.
type Journal struct {
	db      *sql.DB
	pending chan Entry
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply journal schema: %w", err)
	}

	j := &Journal{
		db:      db,
		pending: make(chan Entry, DefaultBuffer),
	}
	j.wg.Add(1)
	go j.writer()
	return j, nil
}

// RecordSave queues evt for writing. When the queue is full the save is
// dropped with a warning.
func (j *Journal) RecordSave(evt relay.SaveEvent) {
	entry := Entry{
		ID:       ulid.Make().String(),
		Path:     evt.Path,
		SenderID: string(evt.SenderID),
		Version:  evt.Version,
		Size:     evt.Size,
		SavedAt:  evt.SavedAt.UTC(),
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.pending <- entry:
	default:
		logger.Warnf("[journal] queue full; dropping save of %s", evt.Path)
	}
}

func (j *Journal) writer() {
	defer j.wg.Done()
	for entry := range j.pending {
		if err := j.insert(context.Background(), entry); err != nil {
			logger.Warnf("[journal] failed to record save of %s: %v", entry.Path, err)
		}
	}
}

func (j *Journal) insert(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO file_saves (id, path, sender_id, version, size, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.SenderID, e.Version, e.Size, e.SavedAt,
	)
	return err
}

// Recent returns up to limit saves, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, path, sender_id, version, size, saved_at FROM file_saves ORDER BY saved_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query saves: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Path, &e.SenderID, &e.Version, &e.Size, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read saves: %w", err)
	}
	return entries, nil
}

// Close flushes queued saves and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.pending)
	j.mu.Unlock()

	j.wg.Wait()
	return j.db.Close()
}
