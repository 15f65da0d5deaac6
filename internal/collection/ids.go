// Package collection provides an ordered collection of opaque track IDs.
//
// IDs backs the play queue, the likes set and playlist membership. Order is
// positional and preserved by every operation.
package collection

import (
	"sync"

	"github.com/llehouerou/ripple/internal/library"
)

// Resolver looks up track metadata by ID.
type Resolver interface {
	Get(id string) (library.Track, bool)
}

// IDs is an ordered sequence of track IDs. It is safe for concurrent use.
//
// Only Add enforces uniqueness; Push and Insert accept duplicates.
type IDs struct {
	mu  sync.RWMutex
	ids []string
}

// New creates a collection holding a copy of ids.
func New(ids ...string) *IDs {
	c := &IDs{}
	c.SetAll(ids)
	return c
}

// Has reports whether id is present.
func (c *IDs) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexLocked(id) >= 0
}

// Add appends id unless it is already present.
// Returns true if the collection changed.
func (c *IDs) Add(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(id) >= 0 {
		return false
	}
	c.ids = append(c.ids, id)
	return true
}

// Push appends id unconditionally.
func (c *IDs) Push(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
}

// Insert places id at index, clamped to [0, Len()].
func (c *IDs) Insert(id string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(id, index)
}

// Remove deletes every occurrence of id.
// Returns the number of removed entries.
func (c *IDs) Remove(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.ids[:0]
	removed := 0
	for _, v := range c.ids {
		if v == id {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	c.ids = kept
	return removed
}

// RemoveAt deletes the ID at index and returns it.
// Returns false if index is out of range.
func (c *IDs) RemoveAt(index int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeAtLocked(index)
}

// Reorder moves the ID at from to position to.
// Returns false if either index is out of range.
func (c *IDs) Reorder(from, to int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if from < 0 || from >= len(c.ids) || to < 0 || to >= len(c.ids) {
		return false
	}
	if from == to {
		return true
	}
	id, _ := c.removeAtLocked(from)
	c.insertLocked(id, to)
	return true
}

// DequeueFront removes and returns the head of the collection.
// Returns false if the collection is empty.
func (c *IDs) DequeueFront() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeAtLocked(0)
}

// Front returns the head without removing it.
func (c *IDs) Front() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.ids) == 0 {
		return "", false
	}
	return c.ids[0], true
}

// SetAll replaces the contents with a copy of ids.
func (c *IDs) SetAll(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(make([]string, 0, len(ids)), ids...)
}

// Clear removes every ID.
func (c *IDs) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = c.ids[:0]
}

// IDs returns a copy of the IDs in order.
func (c *IDs) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]string, len(c.ids))
	copy(result, c.ids)
	return result
}

// Len returns the number of IDs, duplicates included.
func (c *IDs) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// Tracks resolves the IDs through r, dropping IDs r does not know.
func (c *IDs) Tracks(r Resolver) []library.Track {
	ids := c.IDs()
	tracks := make([]library.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.Get(id); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

func (c *IDs) indexLocked(id string) int {
	for i, v := range c.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (c *IDs) insertLocked(id string, index int) {
	index = max(0, min(index, len(c.ids)))
	c.ids = append(c.ids, "")
	copy(c.ids[index+1:], c.ids[index:])
	c.ids[index] = id
}

func (c *IDs) removeAtLocked(index int) (string, bool) {
	if index < 0 || index >= len(c.ids) {
		return "", false
	}
	id := c.ids[index]
	c.ids = append(c.ids[:index], c.ids[index+1:]...)
	return id, true
}
