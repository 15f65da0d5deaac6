package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/playback"
)

// PlayHead makes the head of the queue the sounding track and plays it.
// With an empty queue the current audio is released.
func (s *Session) PlayHead(ctx context.Context) error {
	id, ok := s.stores.Queue.PeekID()
	if !ok {
		return s.player.CleanupCurrentAudio(ctx)
	}

	if _, loaded := s.player.TrackState(); !loaded || s.player.TrackID() != id {
		if err := s.player.CleanupCurrentAudio(ctx); err != nil {
			return err
		}
		ok, err := s.player.LoadTrack(ctx, id)
		if errors.Is(err, playback.ErrSuperseded) {
			log.Debug().Str("track", id).Msg("load superseded")
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if err := s.player.PlayLoadedTrack(ctx); err != nil {
		return err
	}
	if t, ok := s.stores.Library.Get(id); ok && s.announce != nil {
		s.announce.Announce(t)
	}
	s.renderer.PlaybackChanged()
	return nil
}

// TogglePause pauses a playing track, resumes a paused one, and starts the
// queue head when nothing is loaded.
func (s *Session) TogglePause(ctx context.Context) error {
	paused, loaded := s.player.TrackState()
	switch {
	case !loaded:
		if id, ok := s.stores.Queue.PeekID(); ok && id == s.player.TrackID() {
			// Head is still loading; PlayHead plays it once ready.
			return nil
		}
		return s.PlayHead(ctx)
	case paused:
		if err := s.player.PlayLoadedTrack(ctx); err != nil {
			return err
		}
	default:
		s.player.PauseLoadedTrack()
	}
	s.renderer.PlaybackChanged()
	return nil
}

// Seek moves the current track by delta, never before its start.
func (s *Session) Seek(delta time.Duration) {
	pos := max(s.player.Position()+delta, 0)
	s.player.Seek(pos)
	s.renderer.PlaybackChanged()
}

// Position returns the position in the current track.
func (s *Session) Position() time.Duration {
	return s.player.Position()
}

// Playing reports whether a loaded track is sounding.
func (s *Session) Playing() bool {
	paused, loaded := s.player.TrackState()
	return loaded && !paused
}
