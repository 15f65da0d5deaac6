//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLibraryLoad,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpLibraryLoad,
			err:      errors.New("connection refused"),
			expected: "Failed to load library: connection refused",
		},
		{
			name:     "queue operation",
			op:       OpQueueAdd,
			err:      errors.New("status 500"),
			expected: "Failed to add to queue: status 500",
		},
		{
			name:     "playlist operation",
			op:       OpPlaylistCreate,
			err:      errors.New("already exists"),
			expected: "Failed to create playlist: already exists",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackLoad,
			context:  "Intro",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpPlaybackLoad,
			context:  "Intro",
			err:      errors.New("timed out"),
			expected: "Failed to load track 'Intro': timed out",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpPlaybackLoad,
			context:  "",
			err:      errors.New("timed out"),
			expected: "Failed to load track: timed out",
		},
		{
			name:     "search with query context",
			op:       OpDeepSearch,
			context:  "daft punk",
			err:      errors.New("status 502"),
			expected: "Failed to search online 'daft punk': status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpLibraryLoad, OpSearch, OpDeepSearch, OpTrackEdit,
		OpPlaylistCreate, OpPlaylistLoad,
		OpQueueLoad, OpQueueAdd, OpQueueRemove, OpQueueNext,
		OpLikeToggle,
		OpPlaybackLoad, OpPlaybackStart, OpPlaybackPause, OpPlaybackSeek,
		OpCacheOpen, OpPushConnect,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
