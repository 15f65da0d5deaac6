package output

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/playback"
)

type tone struct{ left int }

func (s *tone) Stream(samples [][2]float64) (int, bool) {
	if s.left <= 0 {
		return 0, false
	}
	n := min(len(samples), s.left)
	for i := range samples[:n] {
		samples[i] = [2]float64{1, 1}
	}
	s.left -= n
	return n, true
}

func (s *tone) Err() error { return nil }

func TestGraphStream_SilentWhenHalted(t *testing.T) {
	c := &graphContext{state: playback.ContextSuspended}
	g := &graphStream{ctx: c, src: &tone{left: 10}}
	buf := make([][2]float64, 4)

	n, ok := g.Stream(buf)

	assert.True(t, ok)
	assert.Equal(t, 4, n)
	assert.Equal(t, [2]float64{0, 0}, buf[0])
}

func TestGraphStream_PullsSourceWhenRunning(t *testing.T) {
	c := &graphContext{state: playback.ContextRunning}
	g := &graphStream{ctx: c, src: &tone{left: 6}}
	buf := make([][2]float64, 4)

	n, ok := g.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	assert.Equal(t, [2]float64{1, 1}, buf[0])

	n, ok = g.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = g.Stream(buf)
	assert.False(t, ok, "exhausted source ends the stream")
}

func TestGraphContext_StateCallbacks(t *testing.T) {
	c := &graphContext{device: NewDevice(nil, playback.NewURLRegistry())}
	var got []playback.ContextState
	c.OnStateChange(func(s playback.ContextState) { got = append(got, s) })

	c.setState(playback.ContextInterrupted)
	c.setState(playback.ContextInterrupted)
	require.NoError(t, c.Close())
	c.setState(playback.ContextRunning)

	assert.Equal(t, []playback.ContextState{playback.ContextInterrupted}, got)
	assert.Equal(t, playback.ContextClosed, c.State())
}

func TestGraphContext_ClosedRejectsRoutes(t *testing.T) {
	d := NewDevice(nil, playback.NewURLRegistry())
	c := &graphContext{device: d}
	require.NoError(t, c.Close())

	_, err := c.Route(d.NewElement())
	assert.ErrorIs(t, err, errContextClosed)
	assert.ErrorIs(t, c.Close(), errContextClosed)
	assert.ErrorIs(t, c.Resume(context.Background()), errContextClosed)
}

func TestDevice_InterruptHaltsOpenGraphs(t *testing.T) {
	d := NewDevice(nil, playback.NewURLRegistry())
	c := &graphContext{device: d}
	d.contexts[c] = struct{}{}
	closed := &graphContext{device: d}
	d.contexts[closed] = struct{}{}
	require.NoError(t, closed.Close())

	d.Interrupt()

	assert.Equal(t, playback.ContextInterrupted, c.State())
	assert.Equal(t, playback.ContextClosed, closed.State())
	assert.Len(t, d.openContexts(), 1)
}
