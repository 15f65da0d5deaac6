// Package likes tracks which tracks the user has liked.
package likes

import (
	"sync"

	"github.com/llehouerou/ripple/internal/collection"
	"github.com/llehouerou/ripple/internal/library"
)

// Store is the set of liked track IDs, in the order they were liked.
type Store struct {
	mu  sync.Mutex // serializes Toggle
	ids *collection.IDs
}

// New creates an empty likes store.
func New() *Store {
	return &Store{ids: collection.New()}
}

// Toggle flips the like state of id.
// Returns true if the track is now liked, false if it was unliked.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids.Remove(id) > 0 {
		return false
	}
	s.ids.Add(id)
	return true
}

// SetAll replaces the liked IDs.
func (s *Store) SetAll(ids []string) {
	s.ids.SetAll(ids)
}

// Has reports whether id is liked.
func (s *Store) Has(id string) bool {
	return s.ids.Has(id)
}

// IDs returns the liked IDs.
func (s *Store) IDs() []string {
	return s.ids.IDs()
}

// Len returns the number of liked tracks.
func (s *Store) Len() int {
	return s.ids.Len()
}

// Tracks resolves the liked IDs, skipping unknown tracks.
func (s *Store) Tracks(r collection.Resolver) []library.Track {
	return s.ids.Tracks(r)
}
