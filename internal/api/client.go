package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/llehouerou/ripple/internal/playback"
)

const maxErrorBody = 512

// Client provides access to the backend API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a new API client for the backend at baseURL.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the backend URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search returns the tracks matching q.
func (c *Client) Search(ctx context.Context, q string) (Tracks, error) {
	return getContent[Tracks](ctx, c, "/search/", url.Values{"q": {q}})
}

// DeepSearch searches remote sources for q. Results arrive as push messages;
// the response holds whatever the backend already knows.
func (c *Client) DeepSearch(ctx context.Context, q string) (Tracks, error) {
	return getContent[Tracks](ctx, c, "/search/deep", url.Values{"q": {q}})
}

// Library returns every known track.
func (c *Client) Library(ctx context.Context) (Tracks, error) {
	return c.Search(ctx, "")
}

// Playlists lists the playlists with their track IDs.
func (c *Client) Playlists(ctx context.Context) ([]PlaylistInfo, error) {
	return getContent[[]PlaylistInfo](ctx, c, "/playlists", nil)
}

// PlaylistContent returns the tracks of a playlist.
func (c *Client) PlaylistContent(ctx context.Context, id string) (Tracks, error) {
	return getContent[Tracks](ctx, c, "/playlists/content/", url.Values{"id": {id}})
}

// Likes returns the liked tracks.
func (c *Client) Likes(ctx context.Context) (Tracks, error) {
	return getContent[Tracks](ctx, c, "/playlists/likes", nil)
}

// CreatePlaylist asks the backend to create a playlist.
func (c *Client) CreatePlaylist(ctx context.Context, req CreatePlaylistRequest) error {
	return c.post(ctx, "/playlists/create", req)
}

// EditTrack updates a track's title, author and playlist membership.
func (c *Client) EditTrack(ctx context.Context, req EditTrackRequest) error {
	if req.Playlists == nil {
		req.Playlists = []string{}
	}
	return c.post(ctx, "/playlists/edit-track", req)
}

// ToggleLike flips the like state of a track.
func (c *Client) ToggleLike(ctx context.Context, id string) error {
	return c.post(ctx, "/audio/toggle_like", idRequest{ID: id})
}

// Stream downloads the audio of a track. Returns ErrNotReady while the
// backend is still preparing it.
func (c *Client) Stream(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, playback.StreamPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return data, nil
}

// QueueSetFirst replaces the head of the backend queue.
func (c *Client) QueueSetFirst(ctx context.Context, trackID string) error {
	return c.post(ctx, "/queue/set-first", trackRequest{Track: trackID})
}

// QueuePush appends a track to the backend queue.
func (c *Client) QueuePush(ctx context.Context, trackID string) error {
	return c.post(ctx, "/queue/push", trackRequest{Track: trackID})
}

// QueuePop removes the head of the backend queue.
func (c *Client) QueuePop(ctx context.Context) error {
	return c.post(ctx, "/queue/pop", nil)
}

// QueueRemoveAt removes the queue entry at index.
func (c *Client) QueueRemoveAt(ctx context.Context, index int) error {
	return c.post(ctx, "/queue/remove-at", indexRequest{Index: index})
}

// QueueContent returns the backend queue in order.
func (c *Client) QueueContent(ctx context.Context) (Tracks, error) {
	return getContent[Tracks](ctx, c, "/queue/content", nil)
}

func getContent[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var zero T
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var result envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return result.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.do(ctx, http.MethodPost, path, payload, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do executes a request and maps error statuses. The caller closes the body
// of a successful response.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	payload []byte,
	headers map[string]string,
) (*http.Response, error) {
	body := io.Reader(http.NoBody)
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable && method == http.MethodGet &&
		strings.HasPrefix(path, playback.StreamPathPrefix) {
		resp.Body.Close()
		return nil, ErrNotReady
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}
	return resp, nil
}
