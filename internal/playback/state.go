// internal/playback/state.go
package playback

// State is the playback state of the engine.
//
//	Empty ──load──▶ Loading ──ready──▶ Ready ──play──▶ Playing ◀──▶ Paused
//	  ▲                │                                  │           │
//	  └──── cleanup / load failure ◀──────────────────────┴───────────┘
//
// Interruption is tracked separately by Route.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsLoaded returns true once a track is playable.
func (s State) IsLoaded() bool {
	return s == StateReady || s == StatePlaying || s == StatePaused
}
