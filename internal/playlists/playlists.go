// Package playlists keeps the user's playlists and their track membership.
package playlists

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/llehouerou/ripple/internal/collection"
	"github.com/llehouerou/ripple/internal/library"
)

// TempIDPrefix marks IDs generated locally before the backend assigns one.
const TempIDPrefix = "tmp-"

// Playlist is a named, ordered set of track IDs.
type Playlist struct {
	ID     string
	Name   string
	Tracks *collection.IDs
}

// Snapshot is a read-only copy of a playlist.
type Snapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"tracks"`
}

// Membership annotates a playlist with whether it holds a given track.
type Membership struct {
	ID       string
	Name     string
	Contains bool
}

// NewTempID returns a fresh temporary playlist ID.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was generated by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Store holds playlists keyed by ID, in creation order.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*Playlist
	order []string
}

// New creates an empty playlist store.
func New() *Store {
	return &Store{byID: make(map[string]*Playlist)}
}

// Create adds a playlist. An existing playlist with the same ID is replaced.
func (s *Store) Create(id, name string, trackIDs ...string) *Playlist {
	p := &Playlist{ID: id, Name: name, Tracks: collection.New(trackIDs...)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
	}
	s.byID[id] = p
	return p
}

// SetAll replaces every playlist.
func (s *Store) SetAll(snapshots []Snapshot) {
	byID := make(map[string]*Playlist, len(snapshots))
	order := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		if _, dup := byID[snap.ID]; !dup {
			order = append(order, snap.ID)
		}
		byID[snap.ID] = &Playlist{ID: snap.ID, Name: snap.Name, Tracks: collection.New(snap.TrackIDs...)}
	}

	s.mu.Lock()
	s.byID = byID
	s.order = order
	s.mu.Unlock()
}

// UpdateID rekeys a playlist, keeping its track collection.
// Returns false if tempID is unknown or newID is already taken.
func (s *Store) UpdateID(tempID, newID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[tempID]
	if !ok {
		return false
	}
	if tempID == newID {
		return true
	}
	if _, taken := s.byID[newID]; taken {
		return false
	}

	delete(s.byID, tempID)
	p.ID = newID
	s.byID[newID] = p
	for i, id := range s.order {
		if id == tempID {
			s.order[i] = newID
			break
		}
	}
	return true
}

// Rename changes a playlist's name.
func (s *Store) Rename(id, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return false
	}
	p.Name = name
	return true
}

// Delete removes a playlist.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Playlist returns the playlist with the given ID.
func (s *Store) Playlist(id string) (*Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// Playlists returns snapshots of every playlist in creation order.
func (s *Store) Playlists() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Snapshot, 0, len(s.order))
	for _, id := range s.order {
		p := s.byID[id]
		result = append(result, Snapshot{ID: p.ID, Name: p.Name, TrackIDs: p.Tracks.IDs()})
	}
	return result
}

// Len returns the number of playlists.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// AddTrackID adds trackID to a playlist unless already present.
// Returns false if the playlist is unknown or already held the track.
func (s *Store) AddTrackID(playlistID, trackID string) bool {
	p, ok := s.Playlist(playlistID)
	if !ok {
		return false
	}
	return p.Tracks.Add(trackID)
}

// RemoveTrack removes trackID from a playlist.
func (s *Store) RemoveTrack(playlistID, trackID string) bool {
	p, ok := s.Playlist(playlistID)
	if !ok {
		return false
	}
	return p.Tracks.Remove(trackID) > 0
}

// HasTrack reports whether a playlist holds trackID.
func (s *Store) HasTrack(playlistID, trackID string) bool {
	p, ok := s.Playlist(playlistID)
	if !ok {
		return false
	}
	return p.Tracks.Has(trackID)
}

// TrackIDs returns a playlist's track IDs, or nil for unknown playlists.
func (s *Store) TrackIDs(playlistID string) []string {
	p, ok := s.Playlist(playlistID)
	if !ok {
		return nil
	}
	return p.Tracks.IDs()
}

// SetTrackIDs replaces a playlist's members.
func (s *Store) SetTrackIDs(playlistID string, trackIDs []string) bool {
	p, ok := s.Playlist(playlistID)
	if !ok {
		return false
	}
	p.Tracks.SetAll(trackIDs)
	return true
}

// Tracks resolves a playlist's members, skipping unknown tracks.
func (s *Store) Tracks(playlistID string, r collection.Resolver) []library.Track {
	p, ok := s.Playlist(playlistID)
	if !ok {
		return nil
	}
	return p.Tracks.Tracks(r)
}

// WithCheck returns every playlist annotated with whether it holds trackID.
func (s *Store) WithCheck(trackID string) []Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Membership, 0, len(s.order))
	for _, id := range s.order {
		p := s.byID[id]
		result = append(result, Membership{ID: p.ID, Name: p.Name, Contains: p.Tracks.Has(trackID)})
	}
	return result
}

// SetMembership makes trackID a member of exactly the playlists in ids.
func (s *Store) SetMembership(trackID string, ids []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, p := range s.byID {
		if want[id] {
			p.Tracks.Add(trackID)
		} else {
			p.Tracks.Remove(trackID)
		}
	}
}
