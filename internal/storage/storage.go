// Package storage defines the persistence contract shared by every store.
//
// A Backend holds one ordered collection. Stores load it once when they are
// opened and hand the whole collection back after every mutation, so a
// backend never sees partial updates.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by a backend after Close.
var ErrClosed = errors.New("storage backend is closed")

// Backend persists an ordered collection of records wholesale.
type Backend[T any] interface {
	// Load returns the stored collection in storage order. A missing
	// collection is an empty one, not an error.
	Load(ctx context.Context) ([]T, error)

	// Save replaces the stored collection with records.
	Save(ctx context.Context, records []T) error

	// Close releases resources held by the backend.
	Close() error
}
