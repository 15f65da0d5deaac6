package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/playback"
)

var (
	errNoSource   = errors.New("no source")
	errNotLoaded  = errors.New("source not loaded")
	errBadSource  = errors.New("unsupported source")
	errRevokedURL = errors.New("transient URL revoked")
)

// ready is closed once a source finished loading; err holds the outcome.
type ready struct {
	done chan struct{}
	err  error
}

func newReady() *ready { return &ready{done: make(chan struct{})} }

func closedReady(err error) *ready {
	r := newReady()
	r.finish(err)
	return r
}

func (r *ready) finish(err error) {
	r.err = err
	close(r.done)
}

// element is a media element. Elements routed into a graph decode without
// reaching the speaker; everything else plays through it.
type element struct {
	device *Device

	mu      sync.Mutex
	source  string
	gen     uint64
	ready   *ready
	cancel  context.CancelFunc
	onEnded func()

	// Set once loaded. Guarded by speaker.Lock while queued on the speaker.
	decoded beep.StreamSeekCloser
	format  beep.Format
	graph   *graphStream // stream this element plays, for transient URLs
	ctrl    *beep.Ctrl
	out     beep.Streamer

	routedTo *graphStream // graph pulling this element's output
	paused   bool
	queued   bool
	detached bool
}

func (e *element) SetSource(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.unloadLocked()
	e.source = url
	e.paused = true

	if url == "" || e.detached {
		e.ready = closedReady(errNoSource)
		return
	}

	if playback.IsBlobURL(url) {
		e.ready = closedReady(e.attachGraphLocked(url))
		return
	}

	id, ok := playback.TrackIDFromPath(url)
	if !ok {
		e.ready = closedReady(fmt.Errorf("%w: %s", errBadSource, url))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	r := newReady()
	e.ready = r
	go e.load(ctx, e.gen, id, r)
}

func (e *element) load(ctx context.Context, gen uint64, id string, r *ready) {
	data, err := e.device.fetcher.Fetch(ctx, id)
	if err == nil {
		err = e.decode(gen, data)
	}
	if err != nil && ctx.Err() == nil {
		log.Debug().Err(err).Str("track", id).Msg("element load failed")
	}
	r.finish(err)
}

// memFile is audio held in memory. The mp3 decoder only knows the track
// length, and can only seek, when its input is an io.Seeker.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func (e *element) decode(gen uint64, data []byte) error {
	decoded, format, err := mp3.Decode(memFile{bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		_ = decoded.Close()
		return context.Canceled
	}
	e.decoded = decoded
	e.format = format

	var s beep.Streamer = decoded
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, decoded)
	}
	e.buildLocked(s)
	return nil
}

func (e *element) attachGraphLocked(url string) error {
	stream, ok := e.device.urls.Resolve(url)
	if !ok {
		return errRevokedURL
	}
	gs, ok := stream.(*graphStream)
	if !ok {
		return fmt.Errorf("%w: %s", errBadSource, url)
	}
	e.graph = gs
	e.buildLocked(gs)
	return nil
}

// buildLocked wraps s in the pause control and the end-of-track callback.
// The callback runs on the speaker goroutine, which holds the speaker lock,
// so it must not take e.mu inline.
func (e *element) buildLocked(s beep.Streamer) {
	gen := e.gen
	e.ctrl = &beep.Ctrl{Streamer: s, Paused: e.paused}
	e.out = beep.Seq(e.ctrl, beep.Callback(func() { go e.finished(gen) }))
	if e.routedTo != nil {
		e.routedTo.publish(e.out)
	}
}

func (e *element) finished(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.detached {
		e.mu.Unlock()
		return
	}
	e.paused = true
	fn := e.onEnded
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// unloadLocked stops output and drops the decoded source.
func (e *element) unloadLocked() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.ctrl != nil {
		if e.queued {
			speaker.Lock()
			e.ctrl.Streamer = nil
			speaker.Unlock()
		} else {
			e.ctrl.Streamer = nil
		}
	}
	if e.routedTo != nil {
		e.routedTo.publish(nil)
	}
	if e.decoded != nil {
		_ = e.decoded.Close()
	}
	e.decoded = nil
	e.graph = nil
	e.ctrl = nil
	e.out = nil
	e.queued = false
}

func (e *element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func (e *element) WaitReady(ctx context.Context) error {
	e.mu.Lock()
	r := e.ready
	e.mu.Unlock()

	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *element) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.out == nil {
		return errNotLoaded
	}
	if e.routedTo != nil {
		// Pulled by the graph stream; only the pause control matters.
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
		e.paused = false
		return nil
	}
	if err := e.device.initSpeaker(); err != nil {
		return err
	}

	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	if !e.queued {
		speaker.Play(e.out)
		e.queued = true
	}
	e.paused = false
	return nil
}

func (e *element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
	if e.ctrl == nil {
		return
	}
	e.withOutputLocked(func() { e.ctrl.Paused = true })
}

func (e *element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *element) CurrentTime() time.Duration {
	e.mu.Lock()
	if g := e.graph; g != nil {
		e.mu.Unlock()
		return g.source.CurrentTime()
	}
	defer e.mu.Unlock()
	if e.decoded == nil {
		return 0
	}
	var pos time.Duration
	e.withOutputLocked(func() { pos = e.format.SampleRate.D(e.decoded.Position()) })
	return pos
}

func (e *element) SetCurrentTime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.decoded == nil {
		return
	}
	length := e.decoded.Len()
	if length <= 0 {
		log.Warn().Dur("position", d).Msg("seek on source of unknown length")
		return
	}
	n := min(max(e.format.SampleRate.N(d), 0), length-1)
	e.withOutputLocked(func() {
		if err := e.decoded.Seek(n); err != nil {
			log.Warn().Err(err).Dur("position", d).Msg("seek failed")
		}
	})
}

func (e *element) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *element) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unloadLocked()
	e.source = ""
	e.paused = true
	e.detached = true
	e.ready = closedReady(errNoSource)
}

// withOutputLocked runs fn holding the speaker lock when the element's
// output may be read by the speaker goroutine.
func (e *element) withOutputLocked(fn func()) {
	if e.queued || e.routedTo != nil {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

// routeTo makes g pull this element's output instead of the speaker.
func (e *element) routeTo(g *graphStream) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routedTo = g
	if e.out != nil {
		g.publish(e.out)
	}
}
