// Package restaurant manages the restaurant collection.
package restaurant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/artpar/starplate/internal/idgen"
	"github.com/artpar/starplate/internal/logging"
	"github.com/artpar/starplate/internal/storage"
)

// Common errors.
var (
	ErrNotFound    = errors.New("restaurant not found")
	ErrStoreClosed = errors.New("restaurant store is closed")
)

// Restaurant is a named place. Name is nil when it was never given.
type Restaurant struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Store) {
		s.ids = gen
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store keeps the restaurants in memory, in insertion order, and writes the
// whole collection to its backend after every mutation. A mutation whose save
// fails leaves the in-memory collection untouched.
type Store struct {
	mu      sync.RWMutex
	backend storage.Backend[Restaurant]
	ids     idgen.Generator
	logger  *slog.Logger
	items   []Restaurant
	closed  bool
}

// Open loads the collection from backend and returns a ready store.
func Open(ctx context.Context, backend storage.Backend[Restaurant], opts ...Option) (*Store, error) {
	s := &Store{backend: backend, ids: idgen.UUID()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Default(s.logger).With("component", "restaurants")

	items, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}
	s.items = items
	s.logger.Info("restaurants loaded", "count", len(items))
	return s, nil
}

// List returns every restaurant in insertion order.
func (s *Store) List(ctx context.Context) ([]Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return slices.Clone(s.items), nil
}

// Get returns the first restaurant with the given id.
func (s *Store) Get(ctx context.Context, id string) (Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Restaurant{}, ErrStoreClosed
	}
	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	return Restaurant{}, ErrNotFound
}

// Create appends a restaurant with a fresh id. name is stored as given.
func (s *Store) Create(ctx context.Context, name *string) (Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Restaurant{}, ErrStoreClosed
	}

	r := Restaurant{ID: s.ids.NewID(), Name: name}
	next := append(slices.Clone(s.items), r)
	if err := s.save(ctx, next); err != nil {
		return Restaurant{}, err
	}
	return r, nil
}

// Delete removes every restaurant with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	next := slices.DeleteFunc(slices.Clone(s.items), func(r Restaurant) bool {
		return r.ID == id
	})
	if len(next) == len(s.items) {
		return ErrNotFound
	}
	return s.save(ctx, next)
}

// Rename sets the name of the restaurant with the given id.
func (s *Store) Rename(ctx context.Context, id string, newName *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := slices.Clone(s.items)
	next[i].Name = newName
	return s.save(ctx, next)
}

// Close closes the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(r Restaurant) bool {
		return r.ID == id
	})
}

// save persists next and, on success, makes it the current collection.
func (s *Store) save(ctx context.Context, next []Restaurant) error {
	if err := s.backend.Save(ctx, next); err != nil {
		s.logger.Error("failed to save restaurants", "error", err)
		return fmt.Errorf("failed to save restaurants: %w", err)
	}
	s.items = next
	return nil
}
