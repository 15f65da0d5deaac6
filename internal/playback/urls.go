package playback

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// BlobURLPrefix prefixes every transient URL.
const BlobURLPrefix = "blob:"

// URLRegistry mints transient URLs for media streams. A URL stays resolvable
// until revoked.
type URLRegistry struct {
	mu      sync.Mutex
	streams map[string]MediaStream
}

// NewURLRegistry creates an empty registry.
func NewURLRegistry() *URLRegistry {
	return &URLRegistry{streams: make(map[string]MediaStream)}
}

// Create registers s and returns its URL.
func (r *URLRegistry) Create(s MediaStream) string {
	u := BlobURLPrefix + uuid.NewString()
	r.mu.Lock()
	r.streams[u] = s
	r.mu.Unlock()
	return u
}

// Revoke forgets u. Unknown URLs are ignored.
func (r *URLRegistry) Revoke(u string) {
	r.mu.Lock()
	delete(r.streams, u)
	r.mu.Unlock()
}

// Resolve returns the stream registered under u.
func (r *URLRegistry) Resolve(u string) (MediaStream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[u]
	return s, ok
}

// Len returns the number of live URLs.
func (r *URLRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// IsBlobURL reports whether u was minted by a registry.
func IsBlobURL(u string) bool {
	return strings.HasPrefix(u, BlobURLPrefix)
}
