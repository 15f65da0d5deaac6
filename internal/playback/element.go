package playback

import (
	"context"
	"time"
)

// Element is a media element: it loads a source URL and plays it.
type Element interface {
	// SetSource points the element at url and starts loading it.
	// An empty url strips the source and releases what was loaded.
	SetSource(url string)
	Source() string
	// WaitReady blocks until the current source can play through,
	// loading fails, or ctx is done.
	WaitReady(ctx context.Context) error
	Play(ctx context.Context) error
	Pause()
	Paused() bool
	CurrentTime() time.Duration
	SetCurrentTime(d time.Duration)
	// OnEnded registers fn to run when playback reaches the end.
	OnEnded(fn func())
	// Detach removes the element from the output entirely.
	Detach()
}

// ContextState is the state of an audio processing context.
type ContextState int

const (
	ContextRunning ContextState = iota
	ContextSuspended
	ContextInterrupted
	ContextClosed
)

// String returns the state name.
func (s ContextState) String() string {
	switch s {
	case ContextRunning:
		return "running"
	case ContextSuspended:
		return "suspended"
	case ContextInterrupted:
		return "interrupted"
	case ContextClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Halted reports whether the platform stopped the context.
func (s ContextState) Halted() bool {
	return s == ContextSuspended || s == ContextInterrupted
}

// MediaStream is the output of a stream destination node.
type MediaStream interface {
	StreamID() string
}

// AudioContext is an audio processing graph that can route a hidden element
// into a stream destination.
type AudioContext interface {
	State() ContextState
	// Route connects el to a fresh stream destination and returns its stream.
	Route(el Element) (MediaStream, error)
	Resume(ctx context.Context) error
	// OnStateChange registers fn to run on every state transition.
	OnStateChange(fn func(ContextState))
	Close() error
}

// Device creates the platform's media primitives.
type Device interface {
	NewElement() Element
	NewContext() (AudioContext, error)
}
