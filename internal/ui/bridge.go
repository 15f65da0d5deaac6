package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/syncer"
)

const bridgeBuffer = 256

type (
	changedMsg    struct{}
	errorMsg      string
	tasksMsg      []syncer.Task
	downloadedMsg library.Track
)

// pushedMsg carries search results pushed by the backend.
type pushedMsg struct {
	source string
	tracks []library.Track
}

// Bridge turns render callbacks from any goroutine into program messages,
// delivered in order. Callbacks never block: when the program falls behind
// messages are dropped.
type Bridge struct {
	msgs chan tea.Msg
}

// NewBridge creates a bridge. Call Run to start delivery.
func NewBridge() *Bridge {
	return &Bridge{msgs: make(chan tea.Msg, bridgeBuffer)}
}

// Run delivers messages to send until ctx is done.
func (b *Bridge) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.msgs:
			send(msg)
		}
	}
}

func (b *Bridge) post(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	default:
		log.Debug().Type("msg", msg).Msg("ui bridge full, dropping message")
	}
}

func (b *Bridge) LibraryChanged()   { b.post(changedMsg{}) }
func (b *Bridge) QueueChanged()     { b.post(changedMsg{}) }
func (b *Bridge) LikesChanged()     { b.post(changedMsg{}) }
func (b *Bridge) PlaylistsChanged() { b.post(changedMsg{}) }
func (b *Bridge) PlaybackChanged()  { b.post(changedMsg{}) }

func (b *Bridge) SearchResults(source string, tracks []library.Track) {
	b.post(pushedMsg{source: source, tracks: tracks})
}

func (b *Bridge) TrackDownloaded(t library.Track)  { b.post(downloadedMsg(t)) }
func (b *Bridge) TasksChanged(tasks []syncer.Task) { b.post(tasksMsg(tasks)) }
func (b *Bridge) ShowError(msg string)             { b.post(errorMsg(msg)) }
