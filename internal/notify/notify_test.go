package notify

import (
	"errors"
	"testing"

	"github.com/llehouerou/ripple/internal/library"
)

func TestUrgencyValues(t *testing.T) {
	// Verify urgency constants match D-Bus spec
	if UrgencyLow != 0 {
		t.Errorf("UrgencyLow = %d, want 0", UrgencyLow)
	}
	if UrgencyNormal != 1 {
		t.Errorf("UrgencyNormal = %d, want 1", UrgencyNormal)
	}
	if UrgencyCritical != 2 {
		t.Errorf("UrgencyCritical = %d, want 2", UrgencyCritical)
	}
}

func TestNowPlaying(t *testing.T) {
	tests := []struct {
		name      string
		track     library.Track
		wantTitle string
		wantBody  string
	}{
		{
			name:      "full track",
			track:     library.Track{ID: "a", Title: "Intro", Artist: "The XX", Duration: 127},
			wantTitle: "Intro",
			wantBody:  "The XX · 2:07",
		},
		{
			name:      "no artist",
			track:     library.Track{ID: "a", Title: "Intro", Duration: 59},
			wantTitle: "Intro",
			wantBody:  "0:59",
		},
		{
			name:      "no duration",
			track:     library.Track{ID: "a", Title: "Intro", Artist: "The XX"},
			wantTitle: "Intro",
			wantBody:  "The XX",
		},
		{
			name:      "untitled falls back to id",
			track:     library.Track{ID: "a"},
			wantTitle: "a",
			wantBody:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NowPlaying(tt.track)
			if n.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", n.Title, tt.wantTitle)
			}
			if n.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", n.Body, tt.wantBody)
			}
			if n.Category != CategoryMusic || !n.Transient || !n.Silent {
				t.Errorf("hints = (%q, %v, %v), want (%q, true, true)", n.Category, n.Transient, n.Silent, CategoryMusic)
			}
			if n.Timeout != NowPlayingTimeout {
				t.Errorf("Timeout = %d, want %d", n.Timeout, NowPlayingTimeout)
			}
		})
	}
}

type recordingNotifier struct {
	sent   []Notification
	closed []uint32
	nextID uint32
	err    error
}

func (r *recordingNotifier) Notify(n Notification) (uint32, error) {
	r.sent = append(r.sent, n)
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	return r.nextID, nil
}

func (r *recordingNotifier) Close(id uint32) error {
	r.closed = append(r.closed, id)
	return nil
}

func TestAnnouncer_ReplacesPrevious(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec)

	a.Announce(library.Track{ID: "a", Title: "One"})
	a.Announce(library.Track{ID: "b", Title: "Two"})

	if len(rec.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(rec.sent))
	}
	if rec.sent[0].ReplacesID != 0 {
		t.Errorf("first ReplacesID = %d, want 0", rec.sent[0].ReplacesID)
	}
	if rec.sent[1].ReplacesID != 1 {
		t.Errorf("second ReplacesID = %d, want 1", rec.sent[1].ReplacesID)
	}
}

func TestAnnouncer_FailureKeepsLastID(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec)

	a.Announce(library.Track{ID: "a"})
	rec.err = errors.New("no server")
	a.Announce(library.Track{ID: "b"})
	rec.err = nil
	a.Announce(library.Track{ID: "c"})

	if got := rec.sent[2].ReplacesID; got != 1 {
		t.Errorf("ReplacesID after failure = %d, want 1", got)
	}
}

func TestAnnouncer_NilNotifier(t *testing.T) {
	var a *Announcer
	a.Announce(library.Track{ID: "a"})

	NewAnnouncer(nil).Announce(library.Track{ID: "a"})
}

func TestAnnouncer_Dismiss(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec)

	a.Dismiss()
	if len(rec.closed) != 0 {
		t.Errorf("Dismiss() before Announce closed %v, want nothing", rec.closed)
	}

	a.Announce(library.Track{ID: "a"})
	a.Dismiss()
	a.Dismiss()
	if len(rec.closed) != 1 || rec.closed[0] != 1 {
		t.Errorf("closed = %v, want [1]", rec.closed)
	}

	a.Announce(library.Track{ID: "b"})
	if got := rec.sent[1].ReplacesID; got != 0 {
		t.Errorf("ReplacesID after Dismiss = %d, want 0", got)
	}

	var nilAnnouncer *Announcer
	nilAnnouncer.Dismiss()
}
