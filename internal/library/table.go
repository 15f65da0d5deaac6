package library

import "sync"

// Table maps track IDs to track metadata. Last writer wins.
// It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	tracks map[string]Track
}

// NewTable creates an empty track table.
func NewTable() *Table {
	return &Table{tracks: make(map[string]Track)}
}

// Insert adds or replaces a track.
func (t *Table) Insert(track Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracks[track.ID] = track
}

// InsertMany adds or replaces several tracks.
func (t *Table) InsertMany(tracks []Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, track := range tracks {
		t.tracks[track.ID] = track
	}
}

// SetAll replaces the whole table with tracks.
func (t *Table) SetAll(tracks []Track) {
	fresh := make(map[string]Track, len(tracks))
	for _, track := range tracks {
		fresh[track.ID] = track
	}
	t.mu.Lock()
	t.tracks = fresh
	t.mu.Unlock()
}

// Update merges patch into the track with the given ID.
// Unknown IDs are ignored; returns false in that case.
func (t *Table) Update(id string, patch Patch) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	track, ok := t.tracks[id]
	if !ok {
		return false
	}
	patch.apply(&track)
	t.tracks[id] = track
	return true
}

// Remove deletes a track.
func (t *Table) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tracks, id)
}

// Get returns the track with the given ID.
func (t *Table) Get(id string) (Track, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	track, ok := t.tracks[id]
	return track, ok
}

// GetMany returns the tracks for ids in the same order, skipping unknown IDs.
func (t *Table) GetMany(ids []string) []Track {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]Track, 0, len(ids))
	for _, id := range ids {
		if track, ok := t.tracks[id]; ok {
			result = append(result, track)
		}
	}
	return result
}

// Tracks returns every track in unspecified order.
func (t *Table) Tracks() []Track {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]Track, 0, len(t.tracks))
	for _, track := range t.tracks {
		result = append(result, track)
	}
	return result
}

// Has reports whether the table knows id.
func (t *Table) Has(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.tracks[id]
	return ok
}

// Len returns the number of tracks.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tracks)
}

// Clear removes every track.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracks = make(map[string]Track)
}
