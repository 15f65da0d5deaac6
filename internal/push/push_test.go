package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// newPushServer serves each connection with the next frame batch, then closes it.
func newPushServer(t *testing.T, batches ...[]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(conns.Add(1)) - 1
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if n >= len(batches) {
			// Hold the last connection open until the client leaves.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		for _, frame := range batches[n] {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &conns
}

type collector struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *collector) handle(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

func (c *collector) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []string
	for _, m := range c.msgs {
		result = append(result, m.Source+"."+m.Action)
	}
	return result
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr bool
	}{
		{"valid", `{"source":"play_queue","action":"push","payload":{"id":"a"}}`, false},
		{"no payload", `{"source":"play_queue","action":"pop"}`, false},
		{"not json", `hello`, true},
		{"missing action", `{"source":"play_queue"}`, true},
		{"missing source", `{"action":"pop"}`, true},
		{"array", `[1,2]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.frame))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://localhost:8000", "ws://localhost:8000/ws"},
		{"https://music.example.com/", "wss://music.example.com/ws"},
		{"ws://already", "ws://already/ws"},
	}
	for _, tt := range tests {
		if got := WebSocketURL(tt.in); got != tt.want {
			t.Errorf("WebSocketURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRun_DropsMalformedFrames(t *testing.T) {
	srv, _ := newPushServer(t, []string{
		`{"source":"play_queue","action":"push","payload":"a"}`,
		`garbage`,
		`{"source":"audio_database","action":"fetch_likes","payload":[]}`,
	})
	c := NewClient(WebSocketURL(srv.URL), Options{})
	var got collector

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, got.handle) }()

	require.Eventually(t, func() bool { return len(got.actions()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"play_queue.push", "audio_database.fetch_likes"}, got.actions())

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_Reconnects(t *testing.T) {
	srv, conns := newPushServer(t,
		[]string{`{"source":"play_queue","action":"pop"}`},
		[]string{`{"source":"play_queue","action":"set_all","payload":[]}`},
	)
	var reconnects []bool
	var mu sync.Mutex
	c := NewClient(WebSocketURL(srv.URL), Options{OnConnect: func(reconnect bool) {
		mu.Lock()
		reconnects = append(reconnects, reconnect)
		mu.Unlock()
	}})
	var delays []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return nil
	}
	var got collector

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx, got.handle) }()

	require.Eventually(t, func() bool { return len(got.actions()) == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reconnects) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"play_queue.pop", "play_queue.set_all"}, got.actions())
	assert.GreaterOrEqual(t, conns.Load(), int32(3))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{false, true, true}, reconnects[:3])
	assert.Equal(t, DefaultReconnectDelay, delays[0])
}

func TestRun_RetriesFailedDial(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws", Options{ReconnectDelay: time.Millisecond})
	var attempts atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		if attempts.Add(1) == 3 {
			cancel()
			return context.Canceled
		}
		return nil
	}

	err := c.Run(ctx, func(Message) { t.Error("no message expected") })

	assert.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDial_Error(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws", Options{})

	_, err := c.Dial(context.Background())

	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformed))
}
