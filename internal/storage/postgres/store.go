// Package postgres provides a storage.Backend on Postgres. Each collection is
// one row in the collections table whose payload is the whole JSON array.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/artpar/starplate/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const driverName = "pgx"

var _ storage.Backend[struct{}] = (*Store[struct{}])(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Store implements storage.Backend using Postgres. The connection is shared
// and not closed by the store.
type Store[T any] struct {
	mu         sync.Mutex
	db         *sql.DB
	collection string
	closed     bool
}

// NewWithDB ensures the collections table exists and returns a store for
// collection.
func NewWithDB[T any](ctx context.Context, db *sql.DB, collection string) (*Store[T], error) {
	ddl := `CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure collections table: %w", err)
	}
	return &Store[T]{db: db, collection: collection}, nil
}

// Load returns the stored collection; a collection never saved is empty.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM collections WHERE name = $1`, s.collection,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select collection %s: %w", s.collection, err)
	}

	records := []T{}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", s.collection, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save upserts the whole collection.
func (s *Store[T]) Save(ctx context.Context, records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}

	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", s.collection, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (name, payload) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload`,
		s.collection, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", s.collection, err)
	}
	return nil
}

// Close marks the store closed.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
