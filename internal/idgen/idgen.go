// Package idgen generates record identifiers.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique opaque identifiers.
type Generator interface {
	NewID() string
}

// Func adapts a plain function to a Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }

// UUID returns a generator of random (version 4) UUID strings.
func UUID() Generator {
	return Func(func() string {
		return uuid.New().String()
	})
}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests that need
// predictable ids.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}
