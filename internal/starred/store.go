// Package starred manages the user's starred restaurants.
//
// Starred records reference restaurants by id without owning them. Deleting a
// restaurant leaves its starred records in place; the joined list shows them
// with a null name.
package starred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/artpar/starplate/internal/idgen"
	"github.com/artpar/starplate/internal/logging"
	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/storage"
)

// Common errors.
var (
	ErrNotFound    = errors.New("starred restaurant not found")
	ErrStoreClosed = errors.New("starred store is closed")
)

// Record is a stored star.
type Record struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurantId"`
	Comment      string `json:"comment"`
}

// Joined is a record decorated with its restaurant's name. Name is nil when
// the restaurant no longer exists.
type Joined struct {
	ID      string  `json:"id"`
	Comment string  `json:"comment"`
	Name    *string `json:"name"`
}

// RestaurantLookup resolves restaurant ids. *restaurant.Store satisfies it.
type RestaurantLookup interface {
	Get(ctx context.Context, id string) (restaurant.Restaurant, error)
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

// Store keeps starred records in memory and writes the whole collection to
// its backend after every mutation.
//
// The store holds its own lock while it calls the restaurant lookup; the
// lookup must never call back into this store.
type Store struct {
	mu          sync.RWMutex
	backend     storage.Backend[Record]
	restaurants RestaurantLookup
	ids         idgen.Generator
	logger      *slog.Logger
	records     []Record
	closed      bool
}

// Open loads the starred collection from backend.
func Open(ctx context.Context, backend storage.Backend[Record], restaurants RestaurantLookup, opts ...Option) (*Store, error) {
	s := &Store{backend: backend, restaurants: restaurants, ids: idgen.UUID()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Default(s.logger).With("component", "starred")

	records, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load starred restaurants: %w", err)
	}
	s.records = records
	s.logger.Info("starred restaurants loaded", "count", len(records))
	return s, nil
}

// ListJoined returns every record with its restaurant name, in insertion
// order. A record whose restaurant is gone is kept with a nil name.
func (s *Store) ListJoined(ctx context.Context) ([]Joined, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	joined := make([]Joined, 0, len(s.records))
	for _, rec := range s.records {
		j := Joined{ID: rec.ID, Comment: rec.Comment}
		r, err := s.restaurants.Get(ctx, rec.RestaurantID)
		switch {
		case err == nil:
			j.Name = r.Name
		case !errors.Is(err, restaurant.ErrNotFound):
			return nil, fmt.Errorf("failed to resolve restaurant %s: %w", rec.RestaurantID, err)
		}
		joined = append(joined, j)
	}
	return joined, nil
}

// GetJoined returns one record with its restaurant name. Unlike ListJoined it
// reports ErrNotFound when the referenced restaurant no longer exists.
func (s *Store) GetJoined(ctx context.Context, id string) (Joined, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Joined{}, ErrStoreClosed
	}

	i := s.index(id)
	if i < 0 {
		return Joined{}, ErrNotFound
	}
	rec := s.records[i]

	r, err := s.restaurants.Get(ctx, rec.RestaurantID)
	if errors.Is(err, restaurant.ErrNotFound) {
		return Joined{}, ErrNotFound
	}
	if err != nil {
		return Joined{}, fmt.Errorf("failed to resolve restaurant %s: %w", rec.RestaurantID, err)
	}
	return Joined{ID: rec.ID, Comment: rec.Comment, Name: r.Name}, nil
}

// Create stars an existing restaurant. A nil or empty comment is stored as "".
func (s *Store) Create(ctx context.Context, restaurantID string, comment *string) (Joined, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Joined{}, ErrStoreClosed
	}

	r, err := s.restaurants.Get(ctx, restaurantID)
	if errors.Is(err, restaurant.ErrNotFound) {
		return Joined{}, fmt.Errorf("restaurant %q: %w", restaurantID, ErrNotFound)
	}
	if err != nil {
		return Joined{}, fmt.Errorf("failed to resolve restaurant %s: %w", restaurantID, err)
	}

	rec := Record{
		ID:           s.ids.NewID(),
		RestaurantID: restaurantID,
		Comment:      commentOrEmpty(comment),
	}
	next := append(slices.Clone(s.records), rec)
	if err := s.save(ctx, next); err != nil {
		return Joined{}, err
	}
	return Joined{ID: rec.ID, Comment: rec.Comment, Name: r.Name}, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	next := slices.DeleteFunc(slices.Clone(s.records), func(rec Record) bool {
		return rec.ID == id
	})
	if len(next) == len(s.records) {
		return ErrNotFound
	}
	return s.save(ctx, next)
}

// UpdateComment replaces a record's comment. A nil or empty comment is
// stored as "".
func (s *Store) UpdateComment(ctx context.Context, id string, comment *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := slices.Clone(s.records)
	next[i].Comment = commentOrEmpty(comment)
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
	return slices.IndexFunc(s.records, func(rec Record) bool {
		return rec.ID == id
	})
}

func (s *Store) save(ctx context.Context, next []Record) error {
	if err := s.backend.Save(ctx, next); err != nil {
		s.logger.Error("failed to save starred restaurants", "error", err)
		return fmt.Errorf("failed to save starred restaurants: %w", err)
	}
	s.records = next
	return nil
}

func commentOrEmpty(comment *string) string {
	if comment == nil {
		return ""
	}
	return *comment
}
