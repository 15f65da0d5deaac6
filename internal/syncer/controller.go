// Package syncer keeps the local stores converged with the backend: it
// bootstraps them over REST and applies push corrections.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/likes"
	"github.com/llehouerou/ripple/internal/playlists"
	"github.com/llehouerou/ripple/internal/push"
	"github.com/llehouerou/ripple/internal/queue"
)

// ErrUnknownMessage is returned for push messages no handler accepts.
var ErrUnknownMessage = errors.New("unknown push message")

// Message sources.
const (
	SourceQueue    = "play_queue"
	SourceDatabase = "audio_database"
	SourceYouTube  = "youtube_client"
)

// Backend is the part of the API the controller bootstraps from.
type Backend interface {
	Library(ctx context.Context) ([]library.Track, error)
	QueueContent(ctx context.Context) ([]library.Track, error)
	Likes(ctx context.Context) ([]library.Track, error)
	Playlists(ctx context.Context) ([]playlists.Snapshot, error)
	PlaylistContent(ctx context.Context, id string) ([]library.Track, error)
}

// contentFetches bounds concurrent playlist content requests.
const contentFetches = 4

// Channel delivers push messages until ctx is done.
type Channel interface {
	Run(ctx context.Context, handle func(push.Message)) error
}

// Stores are the local state the controller keeps in sync.
type Stores struct {
	Library   *library.Table
	Queue     *queue.Queue
	Likes     *likes.Store
	Playlists *playlists.Store
}

type handlerFunc func(payload json.RawMessage) error

// Controller applies backend state to the stores.
type Controller struct {
	backend  Backend
	stores   Stores
	renderer Renderer
	tasks    *Tasks
	handlers map[string]map[string]handlerFunc
}

// New creates a controller. A nil renderer is replaced by NopRenderer.
func New(backend Backend, stores Stores, renderer Renderer) *Controller {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	c := &Controller{
		backend:  backend,
		stores:   stores,
		renderer: renderer,
		tasks:    NewTasks(),
	}
	c.handlers = map[string]map[string]handlerFunc{
		SourceQueue: {
			"set_all":     c.queueSetAll,
			"set_first":   c.queueSetFirst,
			"insert_next": c.queueInsertNext,
			"push":        c.queuePush,
			"pop":         c.queuePop,
			"remove":      c.queueRemove,
		},
		SourceDatabase: {
			"search":          c.searchResults(SourceDatabase),
			"create_playlist": c.playlistCreated,
			"fetch_likes":     c.likesFetched,
			"download":        c.trackDownloaded,
		},
		SourceYouTube: {
			"search":      c.searchResults(SourceYouTube),
			"download":    c.trackDownloaded,
			"task_start":  c.taskStarted,
			"task_finish": c.taskFinished,
		},
	}
	return c
}

// Tasks returns the running backend tasks.
func (c *Controller) Tasks() *Tasks {
	return c.tasks
}

// Bootstrap loads the library, then the queue, likes and playlists
// concurrently. A failed step is logged and leaves its store as it was; the
// other steps still run. The returned error joins every step failure.
func (c *Controller) Bootstrap(ctx context.Context) error {
	var errs []error
	if err := c.bootstrapLibrary(ctx); err != nil {
		errs = append(errs, err)
	}

	steps := []func(context.Context) error{
		c.bootstrapQueue,
		c.bootstrapLikes,
		c.bootstrapPlaylists,
	}
	stepErrs := make([]error, len(steps))

	// Steps never fail the group so one failure does not cancel the others.
	var g errgroup.Group
	for i, step := range steps {
		g.Go(func() error {
			stepErrs[i] = step(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range stepErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) bootstrapLibrary(ctx context.Context) error {
	tracks, err := c.backend.Library(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap library failed")
		return fmt.Errorf("bootstrap library: %w", err)
	}
	c.stores.Library.SetAll(tracks)
	log.Info().Int("tracks", len(tracks)).Msg("library loaded")
	c.renderer.LibraryChanged()
	return nil
}

func (c *Controller) bootstrapQueue(ctx context.Context) error {
	tracks, err := c.backend.QueueContent(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap queue failed")
		return fmt.Errorf("bootstrap queue: %w", err)
	}
	c.stores.Queue.SetAll(c.remember(tracks))
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) bootstrapLikes(ctx context.Context) error {
	tracks, err := c.backend.Likes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap likes failed")
		return fmt.Errorf("bootstrap likes: %w", err)
	}
	c.stores.Likes.SetAll(c.remember(tracks))
	c.renderer.LikesChanged()
	return nil
}

func (c *Controller) bootstrapPlaylists(ctx context.Context) error {
	snapshots, err := c.backend.Playlists(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap playlists failed")
		return fmt.Errorf("bootstrap playlists: %w", err)
	}
	c.fillPlaylists(ctx, snapshots)
	c.stores.Playlists.SetAll(snapshots)
	c.renderer.PlaylistsChanged()
	return nil
}

// fillPlaylists replaces each snapshot's membership with the playlist's
// content and remembers the tracks. A playlist whose content cannot be
// fetched keeps the IDs from the listing.
func (c *Controller) fillPlaylists(ctx context.Context, snapshots []playlists.Snapshot) {
	var g errgroup.Group
	g.SetLimit(contentFetches)
	for i := range snapshots {
		g.Go(func() error {
			tracks, err := c.backend.PlaylistContent(ctx, snapshots[i].ID)
			if err != nil {
				log.Warn().Err(err).Str("playlist", snapshots[i].ID).Msg("playlist content failed, using listing")
				return nil
			}
			snapshots[i].TrackIDs = c.remember(tracks)
			return nil
		})
	}
	_ = g.Wait()
}

// Handle applies one push message. Unknown or malformed messages are logged
// and dropped; the error says why.
func (c *Controller) Handle(msg push.Message) error {
	actions, ok := c.handlers[msg.Source]
	if !ok {
		log.Warn().Str("source", msg.Source).Str("action", msg.Action).Msg("unknown push source")
		return fmt.Errorf("%w: %s.%s", ErrUnknownMessage, msg.Source, msg.Action)
	}
	handler, ok := actions[msg.Action]
	if !ok {
		log.Warn().Str("source", msg.Source).Str("action", msg.Action).Msg("unknown push action")
		return fmt.Errorf("%w: %s.%s", ErrUnknownMessage, msg.Source, msg.Action)
	}
	if err := handler(msg.Payload); err != nil {
		log.Warn().Err(err).Str("source", msg.Source).Str("action", msg.Action).Msg("dropping push message")
		return fmt.Errorf("%s.%s: %w", msg.Source, msg.Action, err)
	}
	log.Debug().Str("source", msg.Source).Str("action", msg.Action).Msg("push applied")
	return nil
}

// Run applies messages from ch until ctx is done.
func (c *Controller) Run(ctx context.Context, ch Channel) error {
	return ch.Run(ctx, func(m push.Message) { _ = c.Handle(m) })
}

// remember stores tracks in the library and returns their IDs in order.
func (c *Controller) remember(tracks []library.Track) []string {
	c.stores.Library.InsertMany(tracks)
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}
	return ids
}
