// Package library holds track metadata mirrored from the backend.
package library

import (
	"fmt"
	"time"
)

// Track is a playable audio item known to the backend.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration float64 `json:"duration"` // seconds
}

// Length returns the duration as a time.Duration.
func (t Track) Length() time.Duration {
	return time.Duration(t.Duration * float64(time.Second))
}

// Label returns "Artist - Title", or just the title when the artist is unknown.
func (t Track) Label() string {
	if t.Artist == "" {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Patch holds the fields to merge into an existing track.
// Nil fields are left untouched.
type Patch struct {
	Title    *string
	Artist   *string
	Duration *float64
}

func (p Patch) apply(t *Track) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Artist != nil {
		t.Artist = *p.Artist
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
}
