package output

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/playback"
)

// SampleRate is the rate the speaker runs at. Tracks are resampled to it.
const SampleRate beep.SampleRate = 44100

// Fetcher returns the audio bytes of a track.
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Device is a playback.Device backed by the system speaker.
type Device struct {
	fetcher Fetcher
	urls    *playback.URLRegistry

	mu        sync.Mutex
	speakerUp bool
	contexts  map[*graphContext]struct{}
}

// NewDevice creates a device that loads tracks through fetcher and resolves
// transient URLs through urls.
func NewDevice(fetcher Fetcher, urls *playback.URLRegistry) *Device {
	return &Device{
		fetcher:  fetcher,
		urls:     urls,
		contexts: make(map[*graphContext]struct{}),
	}
}

func (d *Device) NewElement() playback.Element {
	return &element{device: d, paused: true, ready: closedReady(errNoSource)}
}

func (d *Device) NewContext() (playback.AudioContext, error) {
	if err := d.initSpeaker(); err != nil {
		return nil, err
	}
	c := &graphContext{device: d}
	d.mu.Lock()
	d.contexts[c] = struct{}{}
	d.mu.Unlock()
	return c, nil
}

// Interrupt marks every open audio graph interrupted, as when the machine
// goes to sleep.
func (d *Device) Interrupt() {
	for _, c := range d.openContexts() {
		c.setState(playback.ContextInterrupted)
	}
}

// Close stops all output.
func (d *Device) Close() {
	for _, c := range d.openContexts() {
		_ = c.Close()
	}
	d.mu.Lock()
	up := d.speakerUp
	d.mu.Unlock()
	if up {
		speaker.Clear()
	}
}

func (d *Device) openContexts() []*graphContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]*graphContext, 0, len(d.contexts))
	for c := range d.contexts {
		result = append(result, c)
	}
	return result
}

func (d *Device) forget(c *graphContext) {
	d.mu.Lock()
	delete(d.contexts, c)
	d.mu.Unlock()
}

// initSpeaker starts the speaker on first use. A failed init is retried on
// the next call.
func (d *Device) initSpeaker() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.speakerUp {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		log.Error().Err(err).Msg("audio output unavailable")
		return fmt.Errorf("init speaker: %w", err)
	}
	d.speakerUp = true
	return nil
}
