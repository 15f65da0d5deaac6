// Package queue holds the pending playback order. The head is the track
// currently playing.
package queue

import (
	"sync"

	"github.com/llehouerou/ripple/internal/collection"
	"github.com/llehouerou/ripple/internal/library"
)

// Queue is a FIFO of track IDs. It is safe for concurrent use.
type Queue struct {
	mu  sync.Mutex // serializes composite operations
	ids *collection.IDs
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{ids: collection.New()}
}

// Push enqueues id at the tail.
func (q *Queue) Push(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids.Push(id)
}

// PushFront queues id to play next: it lands at index 1, right after the
// current head, which keeps playing.
func (q *Queue) PushFront(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids.Insert(id, 1)
}

// DequeueFront removes and returns the head.
func (q *Queue) DequeueFront() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ids.DequeueFront()
}

// SetFirst replaces the head with id. The previous head is discarded.
func (q *Queue) SetFirst(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids.DequeueFront()
	q.ids.Insert(id, 0)
}

// PeekID returns the head ID without removing it.
func (q *Queue) PeekID() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ids.Front()
}

// PeekTrack resolves the head through r.
// Returns false when the queue is empty or the head is unknown to r.
func (q *Queue) PeekTrack(r collection.Resolver) (library.Track, bool) {
	id, ok := q.PeekID()
	if !ok {
		return library.Track{}, false
	}
	return r.Get(id)
}

// RemoveAt deletes the entry at index.
func (q *Queue) RemoveAt(index int) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ids.RemoveAt(index)
}

// Reorder moves the entry at from to position to.
func (q *Queue) Reorder(from, to int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ids.Reorder(from, to)
}

// SetAll replaces the queue contents.
func (q *Queue) SetAll(ids []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids.SetAll(ids)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids.Clear()
}

// IDs returns the queued IDs in playback order.
func (q *Queue) IDs() []string {
	return q.ids.IDs()
}

// Tracks resolves the queue through r, skipping unknown IDs.
func (q *Queue) Tracks(r collection.Resolver) []library.Track {
	return q.ids.Tracks(r)
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return q.ids.Len()
}

// IsEmpty returns true if nothing is queued.
func (q *Queue) IsEmpty() bool {
	return q.ids.Len() == 0
}
