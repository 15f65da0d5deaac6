// Package app composes the stores, the playback engine and the backend into
// the operations the user drives.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/api"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/playlists"
	"github.com/llehouerou/ripple/internal/syncer"
)

// Backend is the part of the API the session writes to.
type Backend interface {
	Search(ctx context.Context, q string) (api.Tracks, error)
	DeepSearch(ctx context.Context, q string) (api.Tracks, error)
	CreatePlaylist(ctx context.Context, req api.CreatePlaylistRequest) error
	EditTrack(ctx context.Context, req api.EditTrackRequest) error
	ToggleLike(ctx context.Context, id string) error
	QueueSetFirst(ctx context.Context, trackID string) error
	QueuePush(ctx context.Context, trackID string) error
	QueuePop(ctx context.Context) error
	QueueRemoveAt(ctx context.Context, index int) error
}

// Player is the playback engine as seen by the session.
type Player interface {
	LoadTrack(ctx context.Context, id string) (bool, error)
	PlayLoadedTrack(ctx context.Context) error
	PauseLoadedTrack()
	CleanupCurrentAudio(ctx context.Context) error
	TrackState() (paused, loaded bool)
	TrackID() string
	Seek(d time.Duration)
	Position() time.Duration
	Subscribe() *playback.Subscription
}

// Prefetcher warms the audio cache for a track.
type Prefetcher interface {
	Prefetch(ctx context.Context, id string) error
}

// Announcer tells the desktop which track started.
type Announcer interface {
	Announce(t library.Track)
}

// Renderer receives the render callbacks of the sync layer plus session
// feedback.
type Renderer interface {
	syncer.Renderer
	PlaybackChanged()
	ShowError(msg string)
}

// Config wires a Session. Prefetcher, Announcer and Renderer are optional.
type Config struct {
	Backend    Backend
	Stores     syncer.Stores
	Player     Player
	Prefetcher Prefetcher
	Announcer  Announcer
	Renderer   Renderer
}

// Session applies user actions optimistically to the local stores, informs
// the backend in the background and keeps the head of the queue playing.
type Session struct {
	backend  Backend
	stores   syncer.Stores
	player   Player
	prefetch Prefetcher
	announce Announcer
	renderer Renderer

	// ctx outlives the watcher so Close can drain backend calls.
	ctx         context.Context
	cancel      context.CancelFunc
	watchCtx    context.Context
	cancelWatch context.CancelFunc
	watching    sync.WaitGroup
	pending     sync.WaitGroup
	once        sync.Once
}

// New creates a session and starts autoplay. Call Close to stop it.
func New(cfg Config) *Session {
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = nopRenderer{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	watchCtx, cancelWatch := context.WithCancel(ctx)
	s := &Session{
		backend:     cfg.Backend,
		stores:      cfg.Stores,
		player:      cfg.Player,
		prefetch:    cfg.Prefetcher,
		announce:    cfg.Announcer,
		renderer:    renderer,
		ctx:         ctx,
		cancel:      cancel,
		watchCtx:    watchCtx,
		cancelWatch: cancelWatch,
	}

	sub := cfg.Player.Subscribe()
	s.watching.Add(1)
	go s.watch(sub)
	return s
}

// Stores returns the local stores.
func (s *Session) Stores() syncer.Stores {
	return s.stores
}

// Close stops autoplay and waits for pending backend calls to finish.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancelWatch()
		s.watching.Wait()
		s.pending.Wait()
		s.cancel()
	})
}

// watch advances the queue when the current track ends.
func (s *Session) watch(sub *playback.Subscription) {
	defer s.watching.Done()
	for {
		select {
		case <-s.watchCtx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.Ended:
			head, ok := s.stores.Queue.PeekID()
			if !ok || head != ev.TrackID {
				continue
			}
			log.Debug().Str("track", ev.TrackID).Msg("track ended, advancing queue")
			if err := s.Next(s.watchCtx); err != nil && !errors.Is(err, context.Canceled) {
				s.fail(errmsg.OpQueueNext, err)
			}
		case ev := <-sub.Interrupted:
			log.Info().Str("track", ev.TrackID).Dur("position", ev.Position).Msg("playback interrupted")
			s.renderer.PlaybackChanged()
		case <-sub.StateChanged:
			s.renderer.PlaybackChanged()
		case ev := <-sub.Error:
			log.Debug().Err(ev.Err).Str("op", ev.Operation).Str("track", ev.TrackID).Msg("playback error event")
		}
	}
}

// background runs fn detached from the caller, tracked until Close.
// Failures are logged and shown; the local state is kept as is.
func (s *Session) background(op errmsg.Op, fn func(ctx context.Context) error) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := fn(s.ctx); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.fail(op, err)
		}
	}()
}

func (s *Session) fail(op errmsg.Op, err error) {
	log.Warn().Err(err).Str("op", string(op)).Msg("operation failed")
	s.renderer.ShowError(errmsg.Format(op, err))
}

type nopRenderer struct {
	syncer.NopRenderer
}

func (nopRenderer) PlaybackChanged() {}
func (nopRenderer) ShowError(string) {}

// PlaylistsFor returns every playlist annotated with whether it holds id.
func (s *Session) PlaylistsFor(id string) []playlists.Membership {
	return s.stores.Playlists.WithCheck(id)
}
