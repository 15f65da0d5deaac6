package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
	ua     string
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, ua: r.UserAgent()}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "ripple-test"), &calls
}

func writeContent(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"content":`+content+`}`)
}

func TestClient_Search(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeContent(w, `[{"id":"a","title":"Song","artist":"Band","duration":181.5}]`)
	})

	tracks, err := c.Search(context.Background(), "daft punk")

	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "a", tracks[0].ID)
	assert.Equal(t, "Band", tracks[0].Artist)
	assert.InDelta(t, 181.5, tracks[0].Duration, 0.001)

	got := (*calls)[0]
	assert.Equal(t, "/search/", got.path)
	assert.Equal(t, "q=daft+punk", got.query)
	assert.Equal(t, "ripple-test", got.ua)
}

func TestClient_Library_UsesEmptyQuery(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeContent(w, `[]`)
	})

	tracks, err := c.Library(context.Background())

	require.NoError(t, err)
	assert.Empty(t, tracks)
	assert.Equal(t, "/search/", (*calls)[0].path)
	assert.Equal(t, "q=", (*calls)[0].query)
}

func TestClient_GetEndpoints(t *testing.T) {
	tests := []struct {
		name  string
		call  func(c *Client) error
		path  string
		query string
	}{
		{"deep search", func(c *Client) error { _, err := c.DeepSearch(context.Background(), "x"); return err }, "/search/deep", "q=x"},
		{"playlist content", func(c *Client) error { _, err := c.PlaylistContent(context.Background(), "p1"); return err }, "/playlists/content/", "id=p1"},
		{"likes", func(c *Client) error { _, err := c.Likes(context.Background()); return err }, "/playlists/likes", ""},
		{"queue content", func(c *Client) error { _, err := c.QueueContent(context.Background()); return err }, "/queue/content", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				writeContent(w, `[]`)
			})

			require.NoError(t, tt.call(c))
			assert.Equal(t, http.MethodGet, (*calls)[0].method)
			assert.Equal(t, tt.path, (*calls)[0].path)
			assert.Equal(t, tt.query, (*calls)[0].query)
		})
	}
}

func TestClient_Playlists(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeContent(w, `[{"id":"p1","name":"Mix","tracks":["a","b"]}]`)
	})

	got, err := c.Playlists(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mix", got[0].Name)
	assert.Equal(t, []string{"a", "b"}, got[0].TrackIDs)
}

func TestClient_PostEndpoints(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		path string
		body map[string]any
	}{
		{
			"create playlist",
			func(c *Client) error {
				return c.CreatePlaylist(context.Background(), CreatePlaylistRequest{TempID: "tmp-1", Name: "Mix"})
			},
			"/playlists/create",
			map[string]any{"temp_id": "tmp-1", "name": "Mix"},
		},
		{
			"edit track",
			func(c *Client) error {
				return c.EditTrack(context.Background(), EditTrackRequest{ID: "a", Title: "T", Author: "A"})
			},
			"/playlists/edit-track",
			map[string]any{"id": "a", "title": "T", "author": "A", "playlists": []any{}},
		},
		{
			"toggle like",
			func(c *Client) error { return c.ToggleLike(context.Background(), "a") },
			"/audio/toggle_like",
			map[string]any{"id": "a"},
		},
		{
			"queue set first",
			func(c *Client) error { return c.QueueSetFirst(context.Background(), "a") },
			"/queue/set-first",
			map[string]any{"track": "a"},
		},
		{
			"queue push",
			func(c *Client) error { return c.QueuePush(context.Background(), "a") },
			"/queue/push",
			map[string]any{"track": "a"},
		},
		{
			"queue pop",
			func(c *Client) error { return c.QueuePop(context.Background()) },
			"/queue/pop",
			nil,
		},
		{
			"queue remove at",
			func(c *Client) error { return c.QueueRemoveAt(context.Background(), 2) },
			"/queue/remove-at",
			map[string]any{"index": float64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				writeContent(w, `null`)
			})

			require.NoError(t, tt.call(c))
			got := (*calls)[0]
			assert.Equal(t, http.MethodPost, got.method)
			assert.Equal(t, tt.path, got.path)
			assert.Equal(t, tt.body, got.body)
		})
	}
}

func TestClient_Stream(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ID3audio"))
	})

	data, err := c.Stream(context.Background(), "a b")

	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), data)
	assert.Equal(t, "/audio/stream/a b", (*calls)[0].path)
}

func TestClient_Stream_NotReady(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Stream(context.Background(), "a")

	assert.ErrorIs(t, err, ErrNotReady)
}

func TestClient_StatusError(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Playlists(context.Background())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "/playlists", se.Path)
	assert.Equal(t, "boom", se.Body)
	assert.NotErrorIs(t, err, ErrNotReady)
}

func TestClient_ServiceUnavailableOutsideStream(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.QueuePop(context.Background())

	var se *StatusError
	assert.True(t, errors.As(err, &se))
}

func TestClient_MalformedBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":`)
	})

	_, err := c.Likes(context.Background())

	assert.ErrorContains(t, err, "decode response")
}

func TestClient_CanceledContext(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeContent(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "x")

	assert.ErrorIs(t, err, context.Canceled)
}
