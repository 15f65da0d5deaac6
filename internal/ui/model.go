// Package ui is the terminal shell: it renders the local stores and turns
// key presses into session operations.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/keymap"
	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/playlists"
	"github.com/llehouerou/ripple/internal/syncer"
)

// Session is the application session the model drives.
type Session interface {
	Queue() []library.Track
	Library() []library.Track
	Likes() []library.Track
	Playlists() []playlists.Snapshot
	PlaylistTracks(id string) []library.Track
	Current() (library.Track, bool)
	IsLiked(id string) bool
	Playing() bool
	Position() time.Duration

	PlayNow(ctx context.Context, t library.Track) error
	Enqueue(t library.Track)
	Next(ctx context.Context) error
	RemoveAt(ctx context.Context, index int) error
	ToggleLike(id string) bool
	CreatePlaylist(name, importURL string) string
	TogglePause(ctx context.Context) error
	Seek(delta time.Duration)
	Search(ctx context.Context, q string) ([]library.Track, error)
	DeepSearch(ctx context.Context, q string) ([]library.Track, error)
}

// CacheStats reports the number and total size of cached tracks.
type CacheStats func(ctx context.Context) (count int, size int64, err error)

// View is a top level list.
type View int

const (
	ViewQueue View = iota
	ViewLibrary
	ViewLikes
	ViewPlaylists
	ViewResults
	viewCount
)

var viewNames = [...]string{"Queue", "Library", "Likes", "Playlists", "Results"}

func (v View) String() string {
	if v < 0 || v >= viewCount {
		return "Unknown"
	}
	return viewNames[v]
}

type promptMode int

const (
	promptNone promptMode = iota
	promptSearch
	promptPlaylist
)

const (
	seekStep     = 5 * time.Second
	tickInterval = time.Second
	statsEvery   = 10 // ticks between cache stat refreshes
)

type tickMsg time.Time

type statsMsg struct {
	count int
	size  int64
}

// doneMsg reports the outcome of a session operation run off the update loop.
type doneMsg struct {
	op  errmsg.Op
	err error
}

type resultsMsg struct {
	label  string
	tracks []library.Track
	err    error
	op     errmsg.Op
}

// Model is the root bubbletea model.
type Model struct {
	session Session
	stats   CacheStats
	keys    *keymap.Resolver

	view         View
	cursors      map[View]int
	openPlaylist string // playlist listed in ViewPlaylists, empty for the index
	results      []library.Track
	resultsLabel string

	prompt textinput.Model
	mode   promptMode

	tasks      []syncer.Task
	status     string
	errText    string
	help       bool
	cacheCount int
	cacheSize  int64
	ticks      int

	width, height int
}

// New creates the root model. stats may be nil.
func New(session Session, stats CacheStats) Model {
	prompt := textinput.New()
	prompt.CharLimit = 200
	return Model{
		session: session,
		stats:   stats,
		keys:    keymap.NewResolver(keymap.Bindings),
		cursors: make(map[View]int),
		prompt:  prompt,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.loadStats())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadStats() tea.Cmd {
	if m.stats == nil {
		return nil
	}
	stats := m.stats
	return func() tea.Msg {
		count, size, err := stats(context.Background())
		if err != nil {
			return nil
		}
		return statsMsg{count: count, size: size}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		m.ticks++
		if m.ticks%statsEvery == 0 {
			return m, tea.Batch(tick(), m.loadStats())
		}
		return m, tick()
	case statsMsg:
		m.cacheCount, m.cacheSize = msg.count, msg.size
	case changedMsg:
		m.clampCursors()
	case pushedMsg:
		m.results = msg.tracks
		m.resultsLabel = msg.source
		m.cursors[ViewResults] = 0
	case downloadedMsg:
		m.status = "Downloaded " + library.Track(msg).Label()
	case tasksMsg:
		m.tasks = msg
	case errorMsg:
		m.errText = string(msg)
	case doneMsg:
		if msg.err != nil {
			m.errText = errmsg.Format(msg.op, msg.err)
		}
	case resultsMsg:
		if msg.err != nil {
			m.errText = errmsg.FormatWith(msg.op, msg.label, msg.err)
			return m, nil
		}
		m.results = msg.tracks
		m.resultsLabel = msg.label
		m.view = ViewResults
		m.cursors[ViewResults] = 0
	case tea.KeyMsg:
		if m.mode != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// run executes fn off the update loop and reports its error.
func run(op errmsg.Op, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{op: op, err: fn(context.Background())}
	}
}

func (m Model) contexts() []string {
	switch {
	case m.view == ViewQueue:
		return []string{"queue", "list", "playback", "global"}
	case m.view == ViewPlaylists && m.openPlaylist == "":
		return []string{"playlists", "list", "playback", "global"}
	default:
		return []string{"list", "playback", "global"}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.Resolve(msg.String(), m.contexts()...)
	if action != "" {
		m.errText = ""
	}

	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help = !m.help
	case keymap.ActionSearch:
		return m.openPrompt(promptSearch, "Search")
	case keymap.ActionNewPlaylist:
		return m.openPrompt(promptPlaylist, "Playlist name")
	case keymap.ActionViewQueue:
		m.setView(ViewQueue)
	case keymap.ActionViewLibrary:
		m.setView(ViewLibrary)
	case keymap.ActionViewLikes:
		m.setView(ViewLikes)
	case keymap.ActionViewPlaylists:
		m.setView(ViewPlaylists)
	case keymap.ActionViewResults:
		m.setView(ViewResults)
	case keymap.ActionNextView:
		m.setView((m.view + 1) % viewCount)
	case keymap.ActionPlayPause:
		return m, run(errmsg.OpPlaybackStart, m.session.TogglePause)
	case keymap.ActionNextTrack:
		return m, run(errmsg.OpQueueNext, m.session.Next)
	case keymap.ActionSeekForward:
		m.session.Seek(seekStep)
	case keymap.ActionSeekBack:
		m.session.Seek(-seekStep)
	case keymap.ActionMoveDown:
		m.moveCursor(1)
	case keymap.ActionMoveUp:
		m.moveCursor(-1)
	case keymap.ActionJumpStart:
		m.cursors[m.view] = 0
	case keymap.ActionJumpEnd:
		m.cursors[m.view] = max(m.length()-1, 0)
	case keymap.ActionBack:
		switch {
		case m.help:
			m.help = false
		case m.view == ViewPlaylists && m.openPlaylist != "":
			m.openPlaylist = ""
			m.clampCursors()
		}
	case keymap.ActionSelect:
		return m.selectItem()
	case keymap.ActionAdd:
		if t, ok := m.selectedTrack(); ok {
			m.session.Enqueue(t)
			m.status = "Queued " + t.Label()
		}
	case keymap.ActionToggleLike:
		if t, ok := m.selectedTrack(); ok {
			if m.session.ToggleLike(t.ID) {
				m.status = "Liked " + t.Label()
			} else {
				m.status = "Unliked " + t.Label()
			}
		}
	case keymap.ActionDelete:
		if m.view == ViewQueue && m.length() > 0 {
			index := m.cursors[ViewQueue]
			return m, run(errmsg.OpQueueRemove, func(ctx context.Context) error {
				return m.session.RemoveAt(ctx, index)
			})
		}
	}
	return m, nil
}

func (m Model) selectItem() (tea.Model, tea.Cmd) {
	if m.view == ViewPlaylists && m.openPlaylist == "" {
		all := m.session.Playlists()
		if i := m.cursors[ViewPlaylists]; i < len(all) {
			m.openPlaylist = all[i].ID
			m.cursors[ViewPlaylists] = 0
		}
		return m, nil
	}
	t, ok := m.selectedTrack()
	if !ok {
		return m, nil
	}
	return m, run(errmsg.OpPlaybackStart, func(ctx context.Context) error {
		return m.session.PlayNow(ctx, t)
	})
}

func (m Model) openPrompt(mode promptMode, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.prompt.Reset()
	m.prompt.Placeholder = placeholder
	return m, m.prompt.Focus()
}

func (m Model) closePrompt() Model {
	m.mode = promptNone
	m.prompt.Blur()
	m.prompt.Reset()
	return m
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.prompt.Value())

	switch m.keys.Resolve(msg.String(), "prompt") {
	case keymap.ActionCancel:
		return m.closePrompt(), nil
	case keymap.ActionSubmit:
		mode := m.mode
		m = m.closePrompt()
		if value == "" {
			return m, nil
		}
		if mode == promptPlaylist {
			m.session.CreatePlaylist(value, "")
			m.status = "Created playlist " + value
			return m, nil
		}
		return m, search(errmsg.OpSearch, value, m.session.Search)
	case keymap.ActionDeepSearch:
		if m.mode != promptSearch {
			break
		}
		m = m.closePrompt()
		if value == "" {
			return m, nil
		}
		m.status = "Searching online for " + value
		return m, search(errmsg.OpDeepSearch, value, m.session.DeepSearch)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func search(op errmsg.Op, q string, fn func(ctx context.Context, q string) ([]library.Track, error)) tea.Cmd {
	return func() tea.Msg {
		tracks, err := fn(context.Background(), q)
		return resultsMsg{label: q, tracks: tracks, err: err, op: op}
	}
}

func (m *Model) setView(v View) {
	m.view = v
	m.help = false
	m.clampCursors()
}

// tracks returns the tracks listed by the current view. The playlist index
// lists no tracks.
func (m Model) tracks() []library.Track {
	switch m.view {
	case ViewQueue:
		return m.session.Queue()
	case ViewLibrary:
		return m.session.Library()
	case ViewLikes:
		return m.session.Likes()
	case ViewPlaylists:
		if m.openPlaylist == "" {
			return nil
		}
		return m.session.PlaylistTracks(m.openPlaylist)
	case ViewResults:
		return m.results
	}
	return nil
}

func (m Model) length() int {
	if m.view == ViewPlaylists && m.openPlaylist == "" {
		return len(m.session.Playlists())
	}
	return len(m.tracks())
}

func (m Model) selectedTrack() (library.Track, bool) {
	tracks := m.tracks()
	i := m.cursors[m.view]
	if i < 0 || i >= len(tracks) {
		return library.Track{}, false
	}
	return tracks[i], true
}

func (m *Model) moveCursor(delta int) {
	n := m.length()
	if n == 0 {
		m.cursors[m.view] = 0
		return
	}
	m.cursors[m.view] = min(max(m.cursors[m.view]+delta, 0), n-1)
}

func (m *Model) clampCursors() {
	if n := m.length(); m.cursors[m.view] >= n {
		m.cursors[m.view] = max(n-1, 0)
	}
}
