package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/artpar/starplate/internal/logging"
	"github.com/artpar/starplate/internal/storage"
)

// Option configures a JSONStore.
type Option func(*options)

type options struct {
	atomic bool
	logger *slog.Logger
}

// WithAtomicWrites makes Save write a temp file and rename it over the
// collection file instead of overwriting it in place.
func WithAtomicWrites(atomic bool) Option {
	return func(o *options) {
		o.atomic = atomic
	}
}

// WithLogger sets the logger used to report degraded loads.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// JSONStore keeps a collection as a pretty-printed JSON array in one file.
type JSONStore[T any] struct {
	mu     sync.Mutex
	path   string
	atomic bool
	logger *slog.Logger
	closed bool
}

var _ storage.Backend[struct{}] = (*JSONStore[struct{}])(nil)

// NewJSONStore creates a file-backed store at path. The parent directory is
// created if it does not exist; the file itself is created on first Save.
func NewJSONStore[T any](path string, opts ...Option) (*JSONStore[T], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &JSONStore[T]{
		path:   path,
		atomic: o.atomic,
		logger: logging.Default(o.logger).With("component", "jsonstore", "path", path),
	}, nil
}

// Path returns the collection file path.
func (s *JSONStore[T]) Path() string {
	return s.path
}

// Load reads the collection file. A missing or unparsable file yields an
// empty collection.
func (s *JSONStore[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("collection file unreadable, starting empty", "error", err)
		}
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(content, &records); err != nil {
		s.logger.Warn("collection file unparsable, starting empty", "error", err)
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save overwrites the collection file with records.
func (s *JSONStore[T]) Save(ctx context.Context, records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}

	if records == nil {
		records = []T{}
	}
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	if !s.atomic {
		if err := os.WriteFile(s.path, content, 0644); err != nil {
			return fmt.Errorf("failed to write collection file: %w", err)
		}
		return nil
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename collection file: %w", err)
	}
	return nil
}

// Close marks the store closed. There is no open handle to release.
func (s *JSONStore[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
