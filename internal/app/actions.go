package app

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/llehouerou/ripple/internal/api"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/playlists"
)

// PlayNow puts t at the head of the queue, replacing the current head, and
// plays it.
func (s *Session) PlayNow(ctx context.Context, t library.Track) error {
	s.stores.Library.Insert(t)
	s.stores.Queue.SetFirst(t.ID)
	s.renderer.QueueChanged()
	s.background(errmsg.OpQueueAdd, func(ctx context.Context) error {
		return s.backend.QueueSetFirst(ctx, t.ID)
	})
	return s.PlayHead(ctx)
}

// Enqueue appends t to the queue and warms the audio cache for it.
func (s *Session) Enqueue(t library.Track) {
	s.stores.Library.Insert(t)
	s.stores.Queue.Push(t.ID)
	s.renderer.QueueChanged()
	s.background(errmsg.OpQueueAdd, func(ctx context.Context) error {
		return s.backend.QueuePush(ctx, t.ID)
	})
	if s.prefetch != nil {
		s.background(errmsg.OpQueueAdd, func(ctx context.Context) error {
			return s.prefetch.Prefetch(ctx, t.ID)
		})
	}
}

// Next drops the head of the queue and plays the new head.
func (s *Session) Next(ctx context.Context) error {
	if _, ok := s.stores.Queue.DequeueFront(); !ok {
		return nil
	}
	s.renderer.QueueChanged()
	s.background(errmsg.OpQueueNext, s.backend.QueuePop)
	return s.PlayHead(ctx)
}

// RemoveAt removes the queue entry at index. Removing the head plays the
// next track.
func (s *Session) RemoveAt(ctx context.Context, index int) error {
	if _, ok := s.stores.Queue.RemoveAt(index); !ok {
		return nil
	}
	s.renderer.QueueChanged()
	s.background(errmsg.OpQueueRemove, func(ctx context.Context) error {
		return s.backend.QueueRemoveAt(ctx, index)
	})
	if index == 0 {
		return s.PlayHead(ctx)
	}
	return nil
}

// ToggleLike flips the like state of id and reports the new state.
func (s *Session) ToggleLike(id string) bool {
	liked := s.stores.Likes.Toggle(id)
	s.renderer.LikesChanged()
	s.background(errmsg.OpLikeToggle, func(ctx context.Context) error {
		return s.backend.ToggleLike(ctx, id)
	})
	return liked
}

// CreatePlaylist adds an empty playlist under a temporary ID, replaced once
// the backend confirms it. importURL optionally names a remote playlist to
// import. Returns the temporary ID.
func (s *Session) CreatePlaylist(name, importURL string) string {
	tempID := playlists.NewTempID()
	s.stores.Playlists.Create(tempID, name)
	s.renderer.PlaylistsChanged()
	s.background(errmsg.OpPlaylistCreate, func(ctx context.Context) error {
		return s.backend.CreatePlaylist(ctx, api.CreatePlaylistRequest{
			TempID:    tempID,
			Name:      name,
			ImportURL: importURL,
		})
	})
	return tempID
}

// EditTrack renames a track and sets the playlists holding it. Returns false
// for an unknown track.
func (s *Session) EditTrack(id, title, artist string, playlistIDs []string) bool {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if !s.stores.Library.Update(id, library.Patch{Title: &title, Artist: &artist}) {
		return false
	}
	s.stores.Playlists.SetMembership(id, playlistIDs)
	s.renderer.LibraryChanged()
	s.renderer.PlaylistsChanged()

	// Playlists the backend has not confirmed yet cannot be referenced.
	confirmed := make([]string, 0, len(playlistIDs))
	for _, pid := range playlistIDs {
		if !playlists.IsTempID(pid) {
			confirmed = append(confirmed, pid)
		}
	}
	s.background(errmsg.OpTrackEdit, func(ctx context.Context) error {
		return s.backend.EditTrack(ctx, api.EditTrackRequest{
			ID:        id,
			Title:     title,
			Author:    artist,
			Playlists: confirmed,
		})
	})
	return true
}

// Search queries the backend library. Results are remembered in the table.
func (s *Session) Search(ctx context.Context, q string) ([]library.Track, error) {
	tracks, err := s.backend.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	s.stores.Library.InsertMany(tracks)
	return tracks, nil
}

// DeepSearch asks the backend to search online sources. Results also arrive
// as push messages while downloads progress.
func (s *Session) DeepSearch(ctx context.Context, q string) ([]library.Track, error) {
	tracks, err := s.backend.DeepSearch(ctx, q)
	if err != nil {
		return nil, err
	}
	s.stores.Library.InsertMany(tracks)
	return tracks, nil
}

// Queue returns the queued tracks in order.
func (s *Session) Queue() []library.Track {
	return s.stores.Queue.Tracks(s.stores.Library)
}

// Likes returns the liked tracks.
func (s *Session) Likes() []library.Track {
	return s.stores.Likes.Tracks(s.stores.Library)
}

// Playlists returns every playlist in creation order.
func (s *Session) Playlists() []playlists.Snapshot {
	return s.stores.Playlists.Playlists()
}

// PlaylistTracks returns the tracks of a playlist.
func (s *Session) PlaylistTracks(id string) []library.Track {
	return s.stores.Playlists.Tracks(id, s.stores.Library)
}

// Library returns every known track ordered by label.
func (s *Session) Library() []library.Track {
	tracks := s.stores.Library.Tracks()
	slices.SortFunc(tracks, func(a, b library.Track) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Label()), strings.ToLower(b.Label())),
			strings.Compare(a.ID, b.ID),
		)
	})
	return tracks
}

// IsLiked reports whether id is liked.
func (s *Session) IsLiked(id string) bool {
	return s.stores.Likes.Has(id)
}

// Current returns the track at the head of the queue.
func (s *Session) Current() (library.Track, bool) {
	return s.stores.Queue.PeekTrack(s.stores.Library)
}
