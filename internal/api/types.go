// Package api provides a client for the ripple backend REST API.
package api

import (
	"errors"
	"fmt"

	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/playlists"
)

// ErrNotReady is returned when the backend has not finished preparing a
// track's audio yet (HTTP 503).
var ErrNotReady = errors.New("audio not ready")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: API returned status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: API returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// envelope wraps every response body.
type envelope[T any] struct {
	Content T `json:"content"`
}

// PlaylistInfo is a playlist as listed by the backend.
type PlaylistInfo = playlists.Snapshot

// Tracks is a list of track metadata.
type Tracks = []library.Track

// CreatePlaylistRequest creates a playlist, optionally importing a remote one.
// TempID lets the push confirmation be matched to the optimistic entry.
type CreatePlaylistRequest struct {
	TempID    string `json:"temp_id"`
	Name      string `json:"name"`
	ImportURL string `json:"import_url,omitempty"`
}

// EditTrackRequest edits a track's metadata and playlist membership.
type EditTrackRequest struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Playlists []string `json:"playlists"`
}

type idRequest struct {
	ID string `json:"id"`
}

type trackRequest struct {
	Track string `json:"track"`
}

type indexRequest struct {
	Index int `json:"index"`
}
