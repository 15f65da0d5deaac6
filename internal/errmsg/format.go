// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryLoad Op = "load library"
	OpSearch      Op = "search library"
	OpDeepSearch  Op = "search online"
	OpTrackEdit   Op = "edit track"

	// Playlist operations
	OpPlaylistCreate Op = "create playlist"
	OpPlaylistLoad   Op = "load playlist"

	// Queue operations
	OpQueueLoad   Op = "load queue"
	OpQueueAdd    Op = "add to queue"
	OpQueueRemove Op = "remove from queue"
	OpQueueNext   Op = "skip track"

	// Likes
	OpLikeToggle Op = "update likes"

	// Playback operations
	OpPlaybackLoad  Op = "load track"
	OpPlaybackStart Op = "start playback"
	OpPlaybackPause Op = "pause playback"
	OpPlaybackSeek  Op = "seek"

	// Cache and sync
	OpCacheOpen   Op = "open audio cache"
	OpPushConnect Op = "connect to server"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
