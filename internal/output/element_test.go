package output

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/playback"
)

type fetchFunc func(ctx context.Context, id string) ([]byte, error)

func (f fetchFunc) Fetch(ctx context.Context, id string) ([]byte, error) { return f(ctx, id) }

func waitReady(t *testing.T, el playback.Element) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return el.WaitReady(ctx)
}

func TestElement_NoSource(t *testing.T) {
	d := NewDevice(fetchFunc(nil), playback.NewURLRegistry())
	el := d.NewElement()

	assert.ErrorIs(t, waitReady(t, el), errNoSource)
	assert.ErrorIs(t, el.Play(context.Background()), errNotLoaded)
	assert.True(t, el.Paused())
	assert.Equal(t, time.Duration(0), el.CurrentTime())
}

func TestElement_FetchError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDevice(fetchFunc(func(context.Context, string) ([]byte, error) { return nil, boom }), playback.NewURLRegistry())
	el := d.NewElement()

	el.SetSource(playback.StreamPath("a"))

	assert.ErrorIs(t, waitReady(t, el), boom)
	assert.Equal(t, "/audio/stream/a", el.Source())
}

func TestElement_DecodeError(t *testing.T) {
	d := NewDevice(fetchFunc(func(context.Context, string) ([]byte, error) {
		return []byte("definitely not mp3"), nil
	}), playback.NewURLRegistry())
	el := d.NewElement()

	el.SetSource(playback.StreamPath("a"))

	assert.ErrorContains(t, waitReady(t, el), "decode")
}

func TestElement_FetchReceivesTrackID(t *testing.T) {
	got := make(chan string, 1)
	d := NewDevice(fetchFunc(func(_ context.Context, id string) ([]byte, error) {
		got <- id
		return nil, errors.New("stop")
	}), playback.NewURLRegistry())
	el := d.NewElement()

	el.SetSource(playback.StreamPath("with space"))
	_ = waitReady(t, el)

	assert.Equal(t, "with space", <-got)
}

func TestElement_SetSourceCancelsFetch(t *testing.T) {
	canceled := make(chan struct{})
	d := NewDevice(fetchFunc(func(ctx context.Context, _ string) ([]byte, error) {
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	}), playback.NewURLRegistry())
	el := d.NewElement()

	el.SetSource(playback.StreamPath("a"))
	el.SetSource("")

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("fetch was not canceled")
	}
	assert.ErrorIs(t, waitReady(t, el), errNoSource)
}

func TestElement_BadSource(t *testing.T) {
	d := NewDevice(fetchFunc(nil), playback.NewURLRegistry())
	el := d.NewElement()

	el.SetSource("/elsewhere/a")

	assert.ErrorIs(t, waitReady(t, el), errBadSource)
}

func TestElement_RevokedBlobURL(t *testing.T) {
	d := NewDevice(fetchFunc(nil), playback.NewURLRegistry())
	el := d.NewElement()

	el.SetSource("blob:gone")

	assert.ErrorIs(t, waitReady(t, el), errRevokedURL)
}

func TestElement_BlobURLResolvesGraphStream(t *testing.T) {
	urls := playback.NewURLRegistry()
	d := NewDevice(fetchFunc(nil), urls)
	c := &graphContext{device: d}
	hidden := d.NewElement()
	stream, err := c.Route(hidden)
	require.NoError(t, err)
	visible := d.NewElement()

	visible.SetSource(urls.Create(stream))

	assert.NoError(t, waitReady(t, visible))
}

func TestElement_DetachIsFinal(t *testing.T) {
	d := NewDevice(fetchFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("unused")
	}), playback.NewURLRegistry())
	el := d.NewElement()

	el.Detach()
	el.SetSource(playback.StreamPath("a"))

	assert.ErrorIs(t, waitReady(t, el), errNoSource)
}

func TestElement_DecodesAndSeeksMP3(t *testing.T) {
	data, err := os.ReadFile("testdata/tone.mp3")
	require.NoError(t, err)
	d := NewDevice(fetchFunc(func(context.Context, string) ([]byte, error) {
		return data, nil
	}), playback.NewURLRegistry())

	// Routed into a graph so the test never opens the speaker.
	c := &graphContext{device: d, state: playback.ContextRunning}
	hidden := d.NewElement()
	stream, err := c.Route(hidden)
	require.NoError(t, err)

	hidden.SetSource(playback.StreamPath("a"))
	require.NoError(t, waitReady(t, hidden))

	el := hidden.(*element)
	length := el.decoded.Len()
	require.Positive(t, length, "decoder must know the track length")

	require.NoError(t, hidden.Play(context.Background()))
	assert.False(t, hidden.Paused())

	buf := make([][2]float64, 100)
	n, ok := stream.(*graphStream).Stream(buf)
	require.True(t, ok)
	assert.Equal(t, 100, n)
	assert.Equal(t, SampleRate.D(100), hidden.CurrentTime())

	// Whole 10ms steps convert to samples exactly.
	target := time.Duration(length/2/441) * 10 * time.Millisecond
	hidden.SetCurrentTime(target)
	assert.Equal(t, target, hidden.CurrentTime())

	hidden.SetCurrentTime(-time.Second)
	assert.Equal(t, time.Duration(0), hidden.CurrentTime())

	hidden.SetCurrentTime(time.Hour)
	assert.Equal(t, SampleRate.D(length-1), hidden.CurrentTime())
}
