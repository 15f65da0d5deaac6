package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/syncer"
)

var _ app.Renderer = (*Bridge)(nil)

func TestBridge_DeliversInOrder(t *testing.T) {
	b := NewBridge()
	b.QueueChanged()
	b.ShowError("boom")
	b.TasksChanged([]syncer.Task{{ID: "t"}})
	b.SearchResults(syncer.SourceDatabase, []library.Track{{ID: "a"}})
	b.TrackDownloaded(library.Track{ID: "a"})

	got := make(chan tea.Msg, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, func(m tea.Msg) { got <- m })
		close(done)
	}()

	want := []tea.Msg{
		changedMsg{},
		errorMsg("boom"),
		tasksMsg{{ID: "t"}},
		pushedMsg{source: syncer.SourceDatabase, tracks: []library.Track{{ID: "a"}}},
		downloadedMsg(library.Track{ID: "a"}),
	}
	for i, w := range want {
		select {
		case m := <-got:
			assert.Equal(t, w, m, "message %d", i)
		case <-time.After(time.Second):
			t.Fatalf("message %d not delivered", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestBridge_DropsWhenFull(t *testing.T) {
	b := NewBridge()
	for range bridgeBuffer + 10 {
		b.PlaybackChanged()
	}
	require.Len(t, b.msgs, bridgeBuffer)
}
