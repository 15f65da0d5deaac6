// Package push receives backend push messages over a WebSocket.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrMalformed is returned for frames that are not push messages.
var ErrMalformed = errors.New("malformed push message")

const (
	DefaultReconnectDelay = 3 * time.Second
	DefaultPingInterval   = 30 * time.Second
	writeTimeout          = 10 * time.Second
)

// Message is a push frame: {source, action, payload}.
type Message struct {
	Source  string          `json:"source"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a frame. Frames without a source or action are malformed.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if m.Source == "" || m.Action == "" {
		return Message{}, fmt.Errorf("%w: missing source or action", ErrMalformed)
	}
	return m, nil
}

// Options configures a Client.
type Options struct {
	ReconnectDelay time.Duration
	PingInterval   time.Duration
	Header         http.Header
	// OnConnect runs after every successful dial, before any message.
	OnConnect func(reconnect bool)
}

// Client consumes a push channel, reconnecting forever.
type Client struct {
	url    string
	opts   Options
	dialer *websocket.Dialer

	// sleep waits d or until ctx is done. Replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client for the WebSocket at url.
func NewClient(url string, opts Options) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	return &Client{
		url:    url,
		opts:   opts,
		dialer: websocket.DefaultDialer,
		sleep:  sleepContext,
	}
}

// WebSocketURL derives the push URL from an http(s) server URL.
func WebSocketURL(serverURL string) string {
	u := strings.TrimRight(serverURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// Dial opens one connection.
func (c *Client) Dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	return conn, nil
}

// Run delivers every message to handle until ctx is done. On connection loss
// it waits the reconnect delay and dials again, indefinitely. Malformed
// frames are logged and dropped.
func (c *Client) Run(ctx context.Context, handle func(Message)) error {
	connected := false
	for {
		conn, err := c.Dial(ctx)
		if err == nil {
			if c.opts.OnConnect != nil {
				c.opts.OnConnect(connected)
			}
			connected = true
			log.Info().Str("url", c.url).Msg("push channel connected")
			err = c.consume(ctx, conn, handle)
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Warn().Err(err).Dur("retry_in", c.opts.ReconnectDelay).Msg("push channel lost")
		if c.sleep(ctx, c.opts.ReconnectDelay) != nil {
			return nil
		}
	}
}

func (c *Client) consume(ctx context.Context, conn *websocket.Conn, handle func(Message)) error {
	defer conn.Close()

	pongWait := c.opts.PingInterval * 2
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(c.opts.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					log.Debug().Err(err).Msg("push ping failed")
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := Decode(data)
		if err != nil {
			log.Warn().Err(err).Int("bytes", len(data)).Msg("dropping push frame")
			continue
		}
		handle(msg)
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
