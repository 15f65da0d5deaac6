// Package mpris exposes the session to desktop media controls over MPRIS2.
package mpris

import (
	"context"
	"time"

	"github.com/llehouerou/ripple/internal/library"
)

// Player is the part of the session exposed over MPRIS.
type Player interface {
	TogglePause(ctx context.Context) error
	Next(ctx context.Context) error
	Seek(delta time.Duration)
	Position() time.Duration
	Playing() bool
	Current() (library.Track, bool)
	Queue() []library.Track
}
