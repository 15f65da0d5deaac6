package keymap

// Binding ties keys to an action within a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "list", "queue", "playlists", "prompt"
}

// Bindings contains all key bindings.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionSearch, []string{"/"}, "Search", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},
	{ActionViewQueue, []string{"1"}, "Queue", "global"},
	{ActionViewLibrary, []string{"2"}, "Library", "global"},
	{ActionViewLikes, []string{"3"}, "Likes", "global"},
	{ActionViewPlaylists, []string{"4"}, "Playlists", "global"},
	{ActionViewResults, []string{"5"}, "Search results", "global"},
	{ActionNextView, []string{"tab"}, "Next view", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionNextTrack, []string{"pgdown", "N"}, "Next track", "playback"},
	{ActionSeekForward, []string{"shift+right", "L"}, "Seek +5s", "playback"},
	{ActionSeekBack, []string{"shift+left", "H"}, "Seek -5s", "playback"},

	// Lists
	{ActionMoveDown, []string{"j", "down"}, "Move down", "list"},
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionJumpStart, []string{"g", "home"}, "First item", "list"},
	{ActionJumpEnd, []string{"G", "end"}, "Last item", "list"},
	{ActionSelect, []string{"enter"}, "Play now", "list"},
	{ActionAdd, []string{"a"}, "Add to queue", "list"},
	{ActionToggleLike, []string{"f"}, "Like/unlike", "list"},
	{ActionBack, []string{"esc", "backspace"}, "Back", "list"},

	// Queue
	{ActionDelete, []string{"d", "delete"}, "Remove from queue", "queue"},

	// Playlists
	{ActionSelect, []string{"enter"}, "Open playlist", "playlists"},
	{ActionNewPlaylist, []string{"n"}, "New playlist", "playlists"},

	// Prompt
	{ActionSubmit, []string{"enter"}, "Search library", "prompt"},
	{ActionDeepSearch, []string{"ctrl+o"}, "Search online", "prompt"},
	{ActionCancel, []string{"esc"}, "Cancel", "prompt"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
