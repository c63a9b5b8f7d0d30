package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/malonaz/specchat/internal/file"
	"github.com/malonaz/specchat/internal/spec"
)

// ErrNotFound is returned when a chat does not exist.
var ErrNotFound = errors.New("chat not found")

const (
	// DefaultTitle of a chat that has not been titled yet.
	DefaultTitle = "New Chat"
	// MaxTitleLength in runes.
	MaxTitleLength = 60
	// DefaultPageSize of ListChats.
	DefaultPageSize = 50
)

// Chat represents a chat.
type Chat struct {
	ID                string
	Title             string
	Model             string
	CreationTimestamp int64
	UpdateTimestamp   int64
}

// Message represents a message of a chat.
type Message struct {
	ID     string
	ChatID string
	Role   string
	// Content is the display text of the message.
	Content string
	// Spec is the final compiled spec, normalized, or nil.
	Spec              *spec.Spec
	CreationTimestamp int64
}

// Store implements a SQLite store for chats.
type Store struct {
	db *sql.DB

	mu            sync.Mutex
	clock         func() time.Time
	lastTimestamp int64
}

// New store.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := file.CreateParentDirectory(dbPath); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}

	return &Store{
		db:    db,
		clock: time.Now,
	}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS chats (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	creation_timestamp INTEGER NOT NULL,
	update_timestamp INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	spec TEXT,
	creation_timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_chat_id ON messages(chat_id, creation_timestamp);
CREATE INDEX IF NOT EXISTS chats_update_timestamp ON chats(update_timestamp);
`

// timestamp returns the current time in microseconds, strictly increasing
// across calls so that ordering by timestamp is stable.
func (s *Store) timestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock().UnixMicro()
	if now <= s.lastTimestamp {
		now = s.lastTimestamp + 1
	}
	s.lastTimestamp = now
	return now
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
