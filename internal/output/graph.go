package output

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/ripple/internal/playback"
)

var errContextClosed = errors.New("audio context closed")

// graphContext routes hidden elements into streams that a visible element
// plays. Suspending it suspends the speaker.
type graphContext struct {
	device *Device

	mu        sync.Mutex
	state     playback.ContextState
	callbacks []func(playback.ContextState)
	streams   []*graphStream
}

func (c *graphContext) State() playback.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *graphContext) Route(el playback.Element) (playback.MediaStream, error) {
	hidden, ok := el.(*element)
	if !ok {
		return nil, errBadSource
	}

	c.mu.Lock()
	if c.state == playback.ContextClosed {
		c.mu.Unlock()
		return nil, errContextClosed
	}
	g := &graphStream{id: uuid.NewString(), ctx: c, source: hidden}
	c.streams = append(c.streams, g)
	c.mu.Unlock()

	hidden.routeTo(g)
	return g, nil
}

func (c *graphContext) Resume(context.Context) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case playback.ContextClosed:
		return errContextClosed
	case playback.ContextRunning:
		return nil
	}
	if err := speaker.Resume(); err != nil {
		return err
	}
	c.setState(playback.ContextRunning)
	return nil
}

// Suspend halts output until Resume.
func (c *graphContext) Suspend() error {
	if err := speaker.Suspend(); err != nil {
		return err
	}
	c.setState(playback.ContextSuspended)
	return nil
}

func (c *graphContext) OnStateChange(fn func(playback.ContextState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, fn)
}

// Close disconnects every routed stream. State callbacks do not run.
func (c *graphContext) Close() error {
	c.mu.Lock()
	if c.state == playback.ContextClosed {
		c.mu.Unlock()
		return errContextClosed
	}
	c.state = playback.ContextClosed
	streams := c.streams
	c.streams = nil
	c.mu.Unlock()

	for _, g := range streams {
		g.publish(nil)
	}
	c.device.forget(c)
	return nil
}

func (c *graphContext) setState(s playback.ContextState) {
	c.mu.Lock()
	if c.state == s || c.state == playback.ContextClosed {
		c.mu.Unlock()
		return
	}
	c.state = s
	callbacks := slices.Clone(c.callbacks)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(s)
	}
}

func (c *graphContext) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == playback.ContextRunning
}

// graphStream is the destination stream of a routed element. It is read by
// the speaker goroutine; src is guarded by the speaker lock.
type graphStream struct {
	id     string
	ctx    *graphContext
	source *element
	src    beep.Streamer
}

func (g *graphStream) StreamID() string { return g.id }

func (g *graphStream) publish(s beep.Streamer) {
	speaker.Lock()
	g.src = s
	speaker.Unlock()
}

// Stream plays silence while the context is halted or nothing is routed.
func (g *graphStream) Stream(samples [][2]float64) (int, bool) {
	if g.src == nil || !g.ctx.running() {
		clear(samples)
		return len(samples), true
	}
	n, ok := g.src.Stream(samples)
	if !ok {
		g.src = nil
	}
	return n, ok
}

func (g *graphStream) Err() error { return nil }
