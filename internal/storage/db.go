// Package storage persists chats and messages in SQLite and serves the
// ranked history queries behind message search and autosuggest.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// walCheckpointInterval is how often the WAL file is checkpointed to keep it
// from growing without bound while parleyd runs.
const walCheckpointInterval = 5 * time.Minute

// Store is the chat persistence layer backed by SQLite.
type Store struct {
	db        *sql.DB
	stopCh    chan struct{}
	stoppedCh chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// DefaultDBPath returns the default database path (~/.parley/parley.db).
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".parley", "parley.db"), nil
}

// Open opens (creating if needed) the database at dbPath, applying WAL mode
// and migrations. An empty path uses DefaultDBPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite behaves best with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{
		db:        db,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	go s.walCheckpointLoop()
	return s, nil
}

// Close closes the database. Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		<-s.stoppedCh
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// DB exposes the underlying handle for advanced queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) walCheckpointLoop() {
	defer close(s.stoppedCh)
	ticker := time.NewTicker(walCheckpointInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.stopCh:
			return
		}
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chats (
		chat_id    TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		persona    TEXT NOT NULL DEFAULT '',
		created_ms INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT NOT NULL UNIQUE,
		chat_id    TEXT NOT NULL REFERENCES chats(chat_id) ON DELETE CASCADE,
		sender     TEXT NOT NULL,
		body       TEXT NOT NULL,
		sent_ms    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_sent ON messages(chat_id, sent_ms DESC)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
