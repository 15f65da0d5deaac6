// internal/playback/mock.go
package playback

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var errNoSource = errors.New("no source")

// MockDevice is a test double for Device. It records every element and
// context it creates.
type MockDevice struct {
	mu       sync.Mutex
	elements []*MockElement
	contexts []*MockContext

	// Hold makes WaitReady block for src until MockElement.MakeReady.
	Hold func(src string) bool
	// LoadErr fails WaitReady for src when it returns an error.
	LoadErr func(src string) error
	// ContextErr fails NewContext.
	ContextErr error
	// CloseErr is returned by Close on every new context.
	CloseErr error
}

// NewMockDevice creates a device whose elements become ready immediately.
func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

func (d *MockDevice) NewElement() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := &MockElement{device: d, paused: true, ready: closedChan()}
	d.elements = append(d.elements, el)
	return el
}

func (d *MockDevice) NewContext() (AudioContext, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ContextErr != nil {
		return nil, d.ContextErr
	}
	c := &MockContext{CloseErr: d.CloseErr}
	d.contexts = append(d.contexts, c)
	return c, nil
}

// Elements returns every element created so far, visible element first.
func (d *MockDevice) Elements() []*MockElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockElement(nil), d.elements...)
}

// Visible returns the first element created, the engine's visible element.
func (d *MockDevice) Visible() *MockElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.elements) == 0 {
		return nil
	}
	return d.elements[0]
}

// Last returns the most recently created element.
func (d *MockDevice) Last() *MockElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.elements) == 0 {
		return nil
	}
	return d.elements[len(d.elements)-1]
}

// Contexts returns every context created so far.
func (d *MockDevice) Contexts() []*MockContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockContext(nil), d.contexts...)
}

func (d *MockDevice) hooks() (hold func(string) bool, loadErr func(string) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Hold, d.LoadErr
}

// MockElement is a test double for Element.
type MockElement struct {
	device *MockDevice

	mu        sync.Mutex
	source    string
	paused    bool
	position  time.Duration
	onEnded   func()
	detached  bool
	ready     chan struct{}
	playErrs  []error
	playCalls int
	sources   []string
}

func (e *MockElement) SetSource(url string) {
	hold, _ := e.device.hooks()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = url
	e.paused = true
	e.position = 0
	e.sources = append(e.sources, url)
	if url != "" && hold != nil && hold(url) {
		e.ready = make(chan struct{})
		return
	}
	e.ready = closedChan()
}

func (e *MockElement) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func (e *MockElement) WaitReady(ctx context.Context) error {
	_, loadErr := e.device.hooks()

	e.mu.Lock()
	src := e.source
	ready := e.ready
	e.mu.Unlock()

	if src == "" {
		return errNoSource
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	if loadErr != nil {
		if err := loadErr(src); err != nil {
			return err
		}
	}
	return nil
}

// MakeReady releases a WaitReady held by MockDevice.Hold.
func (e *MockElement) MakeReady() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ready:
	default:
		close(e.ready)
	}
}

func (e *MockElement) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playCalls++
	if len(e.playErrs) > 0 {
		err := e.playErrs[0]
		e.playErrs = e.playErrs[1:]
		if err != nil {
			return err
		}
	}
	if e.source == "" {
		return errNoSource
	}
	e.paused = false
	return nil
}

// FailPlay queues errors returned by the next Play calls, in order.
func (e *MockElement) FailPlay(errs ...error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playErrs = append(e.playErrs, errs...)
}

// PlayCalls returns how many times Play was called.
func (e *MockElement) PlayCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playCalls
}

func (e *MockElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

func (e *MockElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *MockElement) CurrentTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *MockElement) SetCurrentTime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = d
}

func (e *MockElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

// End simulates the element reaching the end of its source.
func (e *MockElement) End() {
	e.mu.Lock()
	e.paused = true
	fn := e.onEnded
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (e *MockElement) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

// Detached reports whether Detach was called.
func (e *MockElement) Detached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detached
}

// Sources returns every source assigned, in order.
func (e *MockElement) Sources() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.sources...)
}

// MockContext is a test double for AudioContext. Close never fires state
// callbacks.
type MockContext struct {
	mu          sync.Mutex
	state       ContextState
	callbacks   []func(ContextState)
	routed      int
	closed      bool
	resumeCalls int

	ResumeErr error
	CloseErr  error
}

func (c *MockContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *MockContext) Route(Element) (MediaStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("context closed")
	}
	c.routed++
	return mockStream(fmt.Sprintf("stream-%d", c.routed)), nil
}

func (c *MockContext) Resume(context.Context) error {
	c.mu.Lock()
	c.resumeCalls++
	if c.ResumeErr != nil {
		c.mu.Unlock()
		return c.ResumeErr
	}
	c.mu.Unlock()
	c.SetState(ContextRunning)
	return nil
}

// ResumeCalls returns how many times Resume was called.
func (c *MockContext) ResumeCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumeCalls
}

func (c *MockContext) OnStateChange(fn func(ContextState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, fn)
}

// SetState moves the context to s and runs the state callbacks.
func (c *MockContext) SetState(s ContextState) {
	c.mu.Lock()
	c.state = s
	callbacks := slices.Clone(c.callbacks)
	c.mu.Unlock()
	for _, fn := range callbacks {
		fn(s)
	}
}

// Interrupt simulates the platform interrupting the context.
func (c *MockContext) Interrupt() { c.SetState(ContextInterrupted) }

func (c *MockContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.state = ContextClosed
	return c.CloseErr
}

// Closed reports whether Close was called.
func (c *MockContext) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type mockStream string

func (s mockStream) StreamID() string { return string(s) }

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
