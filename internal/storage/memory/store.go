// Package memory provides an in-process storage.Backend. Nothing survives the
// process; it backs `--backend memory` and stands in for real media in tests.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/starplate/internal/storage"
)

// Store is an in-memory storage.Backend.
type Store[T any] struct {
	mu      sync.Mutex
	records []T
	saves   int
	saveErr error
	closed  bool
}

var _ storage.Backend[struct{}] = (*Store[struct{}])(nil)

// New creates a store seeded with records.
func New[T any](records ...T) *Store[T] {
	return &Store[T]{records: append([]T{}, records...)}
}

// Load returns a copy of the stored collection.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	return append([]T{}, s.records...), nil
}

// Save replaces the stored collection with a copy of records.
func (s *Store[T]) Save(ctx context.Context, records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append([]T{}, records...)
	s.saves++
	return nil
}

// FailSaves makes every following Save return err. Pass nil to recover.
func (s *Store[T]) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves reports how many Save calls succeeded.
func (s *Store[T]) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Close marks the store closed.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
