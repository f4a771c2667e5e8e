package starred

import (
	"context"
	"slices"
)

// snapshot returns the in-memory records in insertion order.
func (s *Store) snapshot(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return slices.Clone(s.records), nil
}
