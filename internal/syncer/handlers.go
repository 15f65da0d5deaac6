package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/push"
)

type removePayload struct {
	Index *int `json:"index"`
}

type createdPlaylist struct {
	TempID string   `json:"temp_id"`
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

type taskPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", push.ErrMalformed)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", push.ErrMalformed, err)
	}
	return nil
}

func decodeTrack(payload json.RawMessage) (library.Track, error) {
	var t library.Track
	if err := decode(payload, &t); err != nil {
		return library.Track{}, err
	}
	if t.ID == "" {
		return library.Track{}, fmt.Errorf("%w: track without id", push.ErrMalformed)
	}
	return t, nil
}

func decodeTracks(payload json.RawMessage) ([]library.Track, error) {
	var tracks []library.Track
	if err := decode(payload, &tracks); err != nil {
		return nil, err
	}
	for _, t := range tracks {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: track without id", push.ErrMalformed)
		}
	}
	return tracks, nil
}

func (c *Controller) queueSetAll(payload json.RawMessage) error {
	tracks, err := decodeTracks(payload)
	if err != nil {
		return err
	}
	c.stores.Queue.SetAll(c.remember(tracks))
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) queueSetFirst(payload json.RawMessage) error {
	t, err := decodeTrack(payload)
	if err != nil {
		return err
	}
	c.stores.Library.Insert(t)
	c.stores.Queue.SetFirst(t.ID)
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) queueInsertNext(payload json.RawMessage) error {
	t, err := decodeTrack(payload)
	if err != nil {
		return err
	}
	c.stores.Library.Insert(t)
	c.stores.Queue.PushFront(t.ID)
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) queuePush(payload json.RawMessage) error {
	t, err := decodeTrack(payload)
	if err != nil {
		return err
	}
	c.stores.Library.Insert(t)
	c.stores.Queue.Push(t.ID)
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) queuePop(json.RawMessage) error {
	c.stores.Queue.DequeueFront()
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) queueRemove(payload json.RawMessage) error {
	var p removePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	if p.Index == nil {
		return fmt.Errorf("%w: missing index", push.ErrMalformed)
	}
	if _, ok := c.stores.Queue.RemoveAt(*p.Index); !ok {
		log.Debug().Int("index", *p.Index).Msg("queue remove out of range")
	}
	c.renderer.QueueChanged()
	return nil
}

func (c *Controller) searchResults(source string) handlerFunc {
	return func(payload json.RawMessage) error {
		tracks, err := decodeTracks(payload)
		if err != nil {
			return err
		}
		c.stores.Library.InsertMany(tracks)
		c.renderer.SearchResults(source, tracks)
		return nil
	}
}

// playlistCreated confirms an optimistic playlist, or adds one created
// elsewhere.
func (c *Controller) playlistCreated(payload json.RawMessage) error {
	var p createdPlaylist
	if err := decode(payload, &p); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("%w: playlist without id", push.ErrMalformed)
	}

	store := c.stores.Playlists
	_, known := store.Playlist(p.ID)
	switch {
	case p.TempID != "" && store.UpdateID(p.TempID, p.ID):
		if p.Name != "" {
			store.Rename(p.ID, p.Name)
		}
		if p.Tracks != nil {
			store.SetTrackIDs(p.ID, p.Tracks)
		}
	case known:
		if p.Name != "" {
			store.Rename(p.ID, p.Name)
		}
	default:
		store.Create(p.ID, p.Name, p.Tracks...)
	}
	c.renderer.PlaylistsChanged()
	return nil
}

func (c *Controller) likesFetched(payload json.RawMessage) error {
	tracks, err := decodeTracks(payload)
	if err != nil {
		return err
	}
	c.stores.Likes.SetAll(c.remember(tracks))
	c.renderer.LikesChanged()
	return nil
}

func (c *Controller) trackDownloaded(payload json.RawMessage) error {
	t, err := decodeTrack(payload)
	if err != nil {
		return err
	}
	c.stores.Library.Insert(t)
	c.renderer.TrackDownloaded(t)
	return nil
}

func (c *Controller) taskStarted(payload json.RawMessage) error {
	var p taskPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("%w: task without id", push.ErrMalformed)
	}
	c.tasks.Start(Task{ID: p.ID, Name: p.Name})
	c.renderer.TasksChanged(c.tasks.List())
	return nil
}

func (c *Controller) taskFinished(payload json.RawMessage) error {
	var p taskPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	if !c.tasks.Finish(p.ID) {
		log.Debug().Str("task", p.ID).Msg("finish for unknown task")
	}
	c.renderer.TasksChanged(c.tasks.List())
	return nil
}
