// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit   Action = "quit"
	ActionSearch Action = "search"
	ActionHelp   Action = "help"

	// View switching
	ActionViewQueue     Action = "view_queue"
	ActionViewLibrary   Action = "view_library"
	ActionViewLikes     Action = "view_likes"
	ActionViewPlaylists Action = "view_playlists"
	ActionViewResults   Action = "view_results"
	ActionNextView      Action = "next_view"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionNextTrack   Action = "next_track"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Navigation actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionBack      Action = "back"

	// List actions
	ActionSelect     Action = "select"      // enter - play now / open playlist
	ActionAdd        Action = "add"         // a - add to queue
	ActionToggleLike Action = "toggle_like" // f
	ActionDelete     Action = "delete"      // d - remove from queue

	// Playlist management actions
	ActionNewPlaylist Action = "new_playlist" // n

	// Search prompt actions
	ActionDeepSearch Action = "deep_search" // ctrl+enter / tab
	ActionSubmit     Action = "submit"
	ActionCancel     Action = "cancel"
)
