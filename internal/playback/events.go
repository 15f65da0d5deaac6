package playback

import "time"

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous State
	Current  State
	TrackID  string
}

// InterruptEvent is emitted when the platform halts the audio graph.
type InterruptEvent struct {
	State    ContextState
	TrackID  string
	Position time.Duration
}

// EndedEvent is emitted when the sounding element reaches the end of a track.
type EndedEvent struct {
	TrackID string
}

// ErrorEvent is emitted when a load or play attempt fails for good.
type ErrorEvent struct {
	Operation string // "load", "play"
	TrackID   string
	Err       error
}
