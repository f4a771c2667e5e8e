// Package sqlite provides a storage.Backend on an embedded SQLite database.
//
// Several collections can share one database file; each is a set of rows in
// the records table keyed by collection name and position.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/artpar/starplate/internal/logging"
	"github.com/artpar/starplate/internal/storage"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		position   INTEGER NOT NULL,
		body       TEXT NOT NULL,
		PRIMARY KEY (collection, position)
	);
`

// Open opens (creating if needed) a SQLite database file and its parent
// directory.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// OpenInMemory opens a private in-memory database (useful for testing).
func OpenInMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Store implements storage.Backend using SQLite.
type Store[T any] struct {
	mu         sync.RWMutex
	db         *sql.DB
	collection string
	ownsDB     bool
	logger     *slog.Logger
	closed     bool
}

var _ storage.Backend[struct{}] = (*Store[struct{}])(nil)

// New opens dbPath and returns a store for collection that owns the
// connection.
func New[T any](dbPath, collection string) (*Store[T], error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	store, err := newStore[T](db, collection, nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.ownsDB = true
	return store, nil
}

// NewWithDB creates a store on an existing connection. Close leaves the
// connection open so it can be shared between collections.
func NewWithDB[T any](db *sql.DB, collection string, logger *slog.Logger) (*Store[T], error) {
	return newStore[T](db, collection, logger)
}

// NewInMemory creates a store on a private in-memory database.
func NewInMemory[T any](collection string) (*Store[T], error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, err
	}
	store, err := newStore[T](db, collection, nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.ownsDB = true
	return store, nil
}

func newStore[T any](db *sql.DB, collection string, logger *slog.Logger) (*Store[T], error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &Store[T]{
		db:         db,
		collection: collection,
		logger:     logging.Default(logger).With("component", "sqlite", "collection", collection),
	}, nil
}

// Load returns the collection ordered by position. Rows whose body no longer
// decodes are skipped.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM records WHERE collection = ? ORDER BY position",
		s.collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var record T
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			s.logger.Warn("skipping undecodable record", "error", err)
			continue
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Save replaces the collection in a single transaction.
func (s *Store[T]) Save(ctx context.Context, records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", s.collection); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (collection, position, body) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		body, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, s.collection, i, string(body)); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// Close closes the store, and the database when the store opened it.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
