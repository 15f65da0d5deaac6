// Package playback owns the single sounding output element and the audio
// graph used to keep playback alive on platforms that halt plain elements.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrSuperseded is returned by a load that a newer load or a cleanup replaced.
	ErrSuperseded = errors.New("load superseded")
	// ErrNothingLoaded is returned when playing with no loaded track.
	ErrNothingLoaded = errors.New("no track loaded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine closed")
)

const (
	DefaultReadyTimeout = 15 * time.Second
	DefaultRetryDelay   = 500 * time.Millisecond
	DefaultSettleDelay  = 100 * time.Millisecond
)

// Options configures an Engine.
type Options struct {
	Strategy     Strategy // StrategyAuto sniffs UserAgent on every load
	UserAgent    string
	ReadyTimeout time.Duration // wait for a source to become playable
	RetryDelay   time.Duration // pause before the single play retry
	SettleDelay  time.Duration // wait after cleanup before the next load
}

func (o Options) withDefaults() Options {
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultReadyTimeout
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	return o
}

// SavedPosition is a playback snapshot taken when the graph is halted.
type SavedPosition struct {
	SourceURL   string
	CurrentTime time.Duration
}

// Engine plays one track at a time.
//
// Callers should await CleanupCurrentAudio before loading a different track.
// Overlapping loads are still safe: the last LoadTrack wins and the resources
// of earlier ones are released.
type Engine struct {
	mu sync.Mutex

	device  Device
	visible Element
	urls    *URLRegistry
	opts    Options

	state    State
	route    Route
	strategy Strategy
	trackID  string
	hidden   Element
	audio    AudioContext
	blobURL  string
	saved    *SavedPosition

	loadGen    uint64
	cancelLoad context.CancelFunc

	subsMu sync.RWMutex
	subs   []*Subscription
	closed bool

	// sleep waits d or until ctx is done. Replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine whose visible element comes from device.
func NewEngine(device Device, urls *URLRegistry, opts Options) *Engine {
	e := &Engine{
		device: device,
		urls:   urls,
		opts:   opts.withDefaults(),
		sleep:  sleepContext,
	}
	e.visible = device.NewElement()
	visible := e.visible
	visible.OnEnded(func() { e.handleEnded(visible) })
	return e
}

// LoadTrack loads the track with the given ID and waits until it can play.
// Returns false without error for an empty ID, and ErrSuperseded when a newer
// load or a cleanup replaced this one before it became playable.
func (e *Engine) LoadTrack(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	e.mu.Lock()
	if e.isClosed() {
		e.mu.Unlock()
		return false, ErrClosed
	}

	gen := e.supersedeLocked()
	loadCtx, cancel := context.WithTimeout(ctx, e.opts.ReadyTimeout)
	e.cancelLoad = cancel

	e.releaseLocked()
	src := StreamPath(id)
	strategy := e.selectStrategy()

	var restore *SavedPosition
	if e.saved != nil && e.saved.SourceURL == src {
		restore = e.saved
	}
	e.saved = nil
	e.trackID = id
	e.setStateLocked(StateLoading)

	var wait Element
	var err error
	if strategy == StrategyGraph {
		wait, err = e.prepareGraphLocked(src)
	} else {
		if e.audio != nil {
			e.closeAudioLocked(TriggerReset)
		}
		e.visible.SetSource(src)
		wait = e.visible
	}
	e.strategy = strategy

	if err != nil {
		e.failLoadLocked(id, err)
		e.cancelLoad = nil
		e.mu.Unlock()
		cancel()
		return false, fmt.Errorf("load %s: %w", id, err)
	}
	e.mu.Unlock()

	log.Debug().Str("track", id).Stringer("strategy", strategy).Msg("loading track")
	err = wait.WaitReady(loadCtx)

	e.mu.Lock()
	defer e.mu.Unlock()
	cancel()

	if gen != e.loadGen {
		log.Debug().Str("track", id).Msg("load superseded")
		return false, ErrSuperseded
	}
	e.cancelLoad = nil

	if err != nil {
		e.failLoadLocked(id, err)
		return false, fmt.Errorf("load %s: %w", id, err)
	}

	if restore != nil {
		wait.SetCurrentTime(restore.CurrentTime)
		log.Debug().Str("track", id).Dur("position", restore.CurrentTime).Msg("restored position")
	}
	if strategy == StrategyGraph {
		e.route = e.route.Next(TriggerReady)
	}
	e.setStateLocked(StateReady)
	return true, nil
}

// PlayLoadedTrack starts the loaded track, resuming a halted audio graph
// first. A failed play is retried once after the retry delay. A track that
// is still loading is not playable yet and returns ErrNothingLoaded.
func (e *Engine) PlayLoadedTrack(ctx context.Context) error {
	e.mu.Lock()
	if !e.state.IsLoaded() {
		e.mu.Unlock()
		return ErrNothingLoaded
	}
	gen := e.loadGen
	audio := e.audio
	hidden := e.hidden
	trackID := e.trackID
	e.mu.Unlock()

	if audio != nil && audio.State() != ContextRunning {
		if err := audio.Resume(ctx); err != nil {
			log.Warn().Err(err).Str("track", trackID).Msg("resume audio context failed")
		}
	}

	err := e.playOnce(ctx, hidden)
	if err != nil {
		log.Warn().Err(err).Str("track", trackID).Msg("play failed, retrying")
		if serr := e.sleep(ctx, e.opts.RetryDelay); serr != nil {
			return serr
		}
		err = e.playOnce(ctx, hidden)
	}
	if err != nil {
		log.Error().Err(err).Str("track", trackID).Msg("play failed")
		e.emitError(ErrorEvent{Operation: "play", TrackID: trackID, Err: err})
		return fmt.Errorf("play %s: %w", trackID, err)
	}

	e.mu.Lock()
	if gen == e.loadGen {
		e.setStateLocked(StatePlaying)
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) playOnce(ctx context.Context, hidden Element) error {
	if hidden != nil {
		if err := hidden.Play(ctx); err != nil {
			return err
		}
	}
	return e.visible.Play(ctx)
}

// PauseLoadedTrack pauses playback and snapshots the position the same way a
// platform interruption does.
func (e *Engine) PauseLoadedTrack() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.IsLoaded() {
		return
	}
	e.visible.Pause()
	if e.hidden != nil {
		e.hidden.Pause()
	}
	if e.state == StatePlaying {
		e.setStateLocked(StatePaused)
	}

	if e.strategy != StrategyGraph || e.audio == nil {
		return
	}
	e.snapshotLocked()
	trigger := TriggerPause
	if e.audio.State().Halted() {
		trigger = TriggerSuspended
	}
	e.route = e.route.Next(trigger)
}

// Seek moves the sounding element to position d.
func (e *Engine) Seek(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if el := e.soundingLocked(); el != nil {
		el.SetCurrentTime(d)
	}
}

// Position returns the current position of the sounding element.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if el := e.soundingLocked(); el != nil {
		return el.CurrentTime()
	}
	return 0
}

// CleanupCurrentAudio stops and releases the current track, then waits the
// settle delay so the platform can release its output.
func (e *Engine) CleanupCurrentAudio(ctx context.Context) error {
	e.mu.Lock()
	e.supersedeLocked()
	e.releaseLocked()
	e.saved = nil
	if e.strategy == StrategyGraph {
		e.route = e.route.Next(TriggerCleanup)
	}
	e.trackID = ""
	e.setStateLocked(StateEmpty)
	e.mu.Unlock()

	return e.sleep(ctx, e.opts.SettleDelay)
}

// TrackState reports whether the loaded track is paused.
// loaded is false when nothing is loaded or the track is still loading.
func (e *Engine) TrackState() (paused, loaded bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsLoaded() {
		return false, false
	}
	return e.visible.Paused(), true
}

// State returns the playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Route returns the audio graph route.
func (e *Engine) Route() Route {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.route
}

// TrackID returns the ID of the loaded or loading track.
func (e *Engine) TrackID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trackID
}

// Saved returns the current interruption snapshot, if any.
func (e *Engine) Saved() *SavedPosition {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saved == nil {
		return nil
	}
	saved := *e.saved
	return &saved
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	if e.closed {
		sub.close()
		return sub
	}
	e.subs = append(e.subs, sub)
	return sub
}

// Close releases every resource and ends all subscriptions.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.supersedeLocked()
	e.releaseLocked()
	if e.audio != nil {
		e.closeAudioLocked(TriggerReset)
	}
	e.visible.Detach()
	e.setStateLocked(StateEmpty)
	e.mu.Unlock()

	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	return nil
}

func (e *Engine) isClosed() bool {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	return e.closed
}

func (e *Engine) selectStrategy() Strategy {
	if e.opts.Strategy != StrategyAuto {
		return e.opts.Strategy
	}
	return SniffStrategy(e.opts.UserAgent)
}

// supersedeLocked invalidates any in-flight load and returns the new generation.
func (e *Engine) supersedeLocked() uint64 {
	e.loadGen++
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	return e.loadGen
}

// releaseLocked pauses, revokes the transient URL, strips the visible source
// and detaches the hidden element. The audio graph survives.
func (e *Engine) releaseLocked() {
	e.visible.Pause()
	if e.blobURL != "" {
		e.urls.Revoke(e.blobURL)
		e.blobURL = ""
	}
	if e.visible.Source() != "" {
		e.visible.SetSource("")
	}
	if e.hidden != nil {
		e.hidden.Pause()
		e.hidden.SetSource("")
		e.hidden.Detach()
		e.hidden = nil
	}
}

func (e *Engine) prepareGraphLocked(src string) (Element, error) {
	rebuild := e.audio == nil || e.route.NeedsRebuild()
	if rebuild && e.audio != nil {
		e.closeAudioLocked(TriggerReset)
	}
	e.route = e.route.Next(TriggerLoad)

	if rebuild {
		audio, err := e.device.NewContext()
		if err != nil {
			return nil, fmt.Errorf("create audio context: %w", err)
		}
		e.audio = audio
		audio.OnStateChange(func(s ContextState) { e.handleContextState(audio, s) })
		log.Debug().Msg("audio graph built")
	}

	hidden := e.device.NewElement()
	hidden.OnEnded(func() { e.handleEnded(hidden) })
	hidden.SetSource(src)

	stream, err := e.audio.Route(hidden)
	if err != nil {
		hidden.SetSource("")
		hidden.Detach()
		return nil, fmt.Errorf("route hidden element: %w", err)
	}

	e.hidden = hidden
	e.blobURL = e.urls.Create(stream)
	e.visible.SetSource(e.blobURL)
	return hidden, nil
}

// closeAudioLocked closes the audio graph. Close errors are logged only.
func (e *Engine) closeAudioLocked(t Trigger) {
	if err := e.audio.Close(); err != nil {
		log.Warn().Err(err).Msg("close audio context failed")
	}
	e.audio = nil
	e.route = e.route.Next(t)
}

func (e *Engine) failLoadLocked(id string, err error) {
	log.Error().Err(err).Str("track", id).Msg("load failed")
	e.releaseLocked()
	if e.audio != nil {
		e.closeAudioLocked(TriggerLoadFailed)
	}
	e.trackID = ""
	e.setStateLocked(StateEmpty)
	e.emitError(ErrorEvent{Operation: "load", TrackID: id, Err: err})
}

func (e *Engine) snapshotLocked() {
	if e.hidden == nil || e.hidden.Source() == "" {
		return
	}
	e.saved = &SavedPosition{
		SourceURL:   e.hidden.Source(),
		CurrentTime: e.hidden.CurrentTime(),
	}
}

func (e *Engine) handleContextState(audio AudioContext, s ContextState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if audio != e.audio || !s.Halted() {
		return
	}
	e.snapshotLocked()
	e.route = e.route.Next(TriggerSuspended)

	ev := InterruptEvent{State: s, TrackID: e.trackID}
	if e.saved != nil {
		ev.Position = e.saved.CurrentTime
	}
	log.Info().Stringer("state", s).Str("track", e.trackID).Msg("audio context halted")
	e.emit(func(sub *Subscription) { sub.sendInterrupt(ev) })
}

func (e *Engine) handleEnded(el Element) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if el != e.soundingLocked() || e.trackID == "" {
		return
	}
	e.setStateLocked(StatePaused)
	ev := EndedEvent{TrackID: e.trackID}
	e.emit(func(sub *Subscription) { sub.sendEnded(ev) })
}

// soundingLocked returns the element that decodes the current source.
func (e *Engine) soundingLocked() Element {
	if e.hidden != nil {
		return e.hidden
	}
	if e.visible.Source() == "" {
		return nil
	}
	return e.visible
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	ev := StateChange{Previous: e.state, Current: s, TrackID: e.trackID}
	e.state = s
	e.emit(func(sub *Subscription) { sub.sendState(ev) })
}

func (e *Engine) emitError(ev ErrorEvent) {
	e.emit(func(sub *Subscription) { sub.sendError(ev) })
}

func (e *Engine) emit(send func(*Subscription)) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		send(sub)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
