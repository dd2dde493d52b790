package led

import (
	"sync"

	"github.com/smazurov/colornode/internal/color"
)

// Store holds the last accepted colour. The lock covers only the copy in or
// out; it is never held across a hardware call.
type Store struct {
	mu      sync.Mutex
	current color.RGB
}

// NewStore creates a store holding initial.
func NewStore(initial color.RGB) *Store {
	return &Store{current: initial}
}

// Get returns a copy of the current colour.
func (s *Store) Get() color.RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set overwrites the current colour.
func (s *Store) Set(c color.RGB) {
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}
