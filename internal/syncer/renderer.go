package syncer

import "github.com/llehouerou/ripple/internal/library"

// Renderer is told when synchronized state changes. Calls may come from any
// goroutine.
type Renderer interface {
	LibraryChanged()
	QueueChanged()
	LikesChanged()
	PlaylistsChanged()
	// SearchResults delivers results pushed by source.
	SearchResults(source string, tracks []library.Track)
	TrackDownloaded(track library.Track)
	TasksChanged(tasks []Task)
}

// NopRenderer ignores every change.
type NopRenderer struct{}

func (NopRenderer) LibraryChanged()                       {}
func (NopRenderer) QueueChanged()                         {}
func (NopRenderer) LikesChanged()                         {}
func (NopRenderer) PlaylistsChanged()                     {}
func (NopRenderer) SearchResults(string, []library.Track) {}
func (NopRenderer) TrackDownloaded(library.Track)         {}
func (NopRenderer) TasksChanged([]Task)                   {}
