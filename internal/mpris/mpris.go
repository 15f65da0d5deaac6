//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog/log"
)

const busName = "ripple"

// Adapter serves org.mpris.MediaPlayer2.ripple on the session bus.
type Adapter struct {
	server *server.Server
}

// New starts serving p. The server runs until Close.
func New(p Player) (*Adapter, error) {
	srv := server.NewServer(busName, rootAdapter{}, &playerAdapter{player: p})
	go func() {
		if err := srv.Listen(); err != nil {
			log.Warn().Err(err).Msg("mpris server stopped")
		}
	}()
	return &Adapter{server: srv}, nil
}

// Close releases the bus name.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter answers org.mpris.MediaPlayer2. The terminal owns the window,
// so there is nothing to raise or quit, and tracks cannot be opened by URI.
type rootAdapter struct{}

func (rootAdapter) Raise() error                { return nil }
func (rootAdapter) Quit() error                 { return nil }
func (rootAdapter) CanQuit() (bool, error)      { return false, nil }
func (rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (rootAdapter) HasTrackList() (bool, error) { return false, nil }
func (rootAdapter) Identity() (string, error)   { return "Ripple", nil }

//nolint:revive // Method name required by interface.
func (rootAdapter) SupportedUriSchemes() ([]string, error) { return []string{}, nil }
func (rootAdapter) SupportedMimeTypes() ([]string, error)  { return []string{"audio/mpeg"}, nil }

// playerAdapter answers org.mpris.MediaPlayer2.Player from the session.
type playerAdapter struct {
	player Player
}

// setPlaying toggles only when the session is not already in the wanted
// state, so Play and Pause are idempotent.
func (p *playerAdapter) setPlaying(want bool) error {
	if p.player.Playing() == want {
		return nil
	}
	return p.player.TogglePause(context.Background())
}

func (p *playerAdapter) Play() error      { return p.setPlaying(true) }
func (p *playerAdapter) Pause() error     { return p.setPlaying(false) }
func (p *playerAdapter) Stop() error      { return p.setPlaying(false) }
func (p *playerAdapter) PlayPause() error { return p.player.TogglePause(context.Background()) }
func (p *playerAdapter) Next() error      { return p.player.Next(context.Background()) }

// Previous does nothing: played tracks leave the queue.
func (p *playerAdapter) Previous() error { return nil }

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.player.Seek(fromMicros(offset))
	return nil
}

// SetPosition ignores requests that name a track other than the head.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	t, ok := p.player.Current()
	if !ok || trackPath(t.ID) != trackID {
		return nil
	}
	p.player.Seek(fromMicros(position) - p.player.Position())
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch _, ok := p.player.Current(); {
	case !ok:
		return types.PlaybackStatusStopped, nil
	case p.player.Playing():
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	t, ok := p.player.Current()
	if !ok {
		return types.Metadata{}, nil
	}
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(trackPath(t.ID)),
		Length:  toMicros(t.Length()),
		Title:   t.Title,
	}
	if t.Artist != "" {
		meta.Artist = []string{t.Artist}
	}
	return meta, nil
}

func (p *playerAdapter) Position() (int64, error) {
	return int64(toMicros(p.player.Position())), nil
}

func (p *playerAdapter) CanGoNext() (bool, error) { return len(p.player.Queue()) > 1, nil }
func (p *playerAdapter) CanPlay() (bool, error)   { return len(p.player.Queue()) > 0, nil }

// Rate and volume are fixed; the system mixer owns loudness.
func (p *playerAdapter) Rate() (float64, error)        { return 1, nil }
func (p *playerAdapter) SetRate(float64) error         { return nil }
func (p *playerAdapter) MinimumRate() (float64, error) { return 1, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1, nil }
func (p *playerAdapter) Volume() (float64, error)      { return 1, nil }
func (p *playerAdapter) SetVolume(float64) error       { return nil }
func (p *playerAdapter) CanGoPrevious() (bool, error)  { return false, nil }
func (p *playerAdapter) CanPause() (bool, error)       { return true, nil }
func (p *playerAdapter) CanSeek() (bool, error)        { return true, nil }
func (p *playerAdapter) CanControl() (bool, error)     { return true, nil }

func toMicros(d time.Duration) types.Microseconds    { return types.Microseconds(d.Microseconds()) }
func fromMicros(us types.Microseconds) time.Duration { return time.Duration(us) * time.Microsecond }

// trackPath maps a backend track ID, which may hold characters D-Bus object
// paths reject, to a stable path.
func trackPath(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
