// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/library"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// NowPlayingTimeout is how long a track change notification stays up (ms).
const NowPlayingTimeout int32 = 4000

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical

	// Category is the freedesktop category hint, empty for none.
	Category string
	// Transient notifications bypass the server's history.
	Transient bool
	// Silent asks the server not to play its notification sound.
	Silent bool
}

// CategoryMusic marks track change notifications.
const CategoryMusic = "x-gnome.music"

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// NowPlaying builds the notification shown when t starts playing.
func NowPlaying(t library.Track) Notification {
	n := Notification{
		Title:     t.Title,
		Icon:      "audio-x-generic",
		Timeout:   NowPlayingTimeout,
		Urgency:   UrgencyLow,
		Category:  CategoryMusic,
		Transient: true,
		Silent:    true,
	}
	if n.Title == "" {
		n.Title = t.ID
	}
	if t.Artist != "" {
		n.Body = t.Artist
	}
	if t.Duration > 0 {
		d := int(t.Duration)
		length := fmt.Sprintf("%d:%02d", d/60, d%60)
		if n.Body == "" {
			n.Body = length
		} else {
			n.Body += " · " + length
		}
	}
	return n
}

// nopNotifier drops everything. It stands in when no notification server
// is reachable.
type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (nopNotifier) Close(uint32) error                  { return nil }

// Announcer shows one track change notification at a time, replacing the
// previous one.
type Announcer struct {
	notifier Notifier

	mu     sync.Mutex
	lastID uint32
}

// NewAnnouncer wraps n. A nil notifier disables announcements.
func NewAnnouncer(n Notifier) *Announcer {
	return &Announcer{notifier: n}
}

// Announce shows the now playing notification for t. Failures are logged.
func (a *Announcer) Announce(t library.Track) {
	if a == nil || a.notifier == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	n := NowPlaying(t)
	n.ReplacesID = a.lastID
	id, err := a.notifier.Notify(n)
	if err != nil {
		log.Debug().Err(err).Str("track", t.ID).Msg("now playing notification failed")
		return
	}
	a.lastID = id
}

// Dismiss closes the current now playing notification, if any.
func (a *Announcer) Dismiss() {
	if a == nil || a.notifier == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastID == 0 {
		return
	}
	if err := a.notifier.Close(a.lastID); err != nil {
		log.Debug().Err(err).Uint32("id", a.lastID).Msg("close notification failed")
	}
	a.lastID = 0
}
