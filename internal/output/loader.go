// Package output plays tracks through the system audio device.
package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/api"
	"github.com/llehouerou/ripple/internal/blobcache"
)

// Streamer downloads the audio of a track.
type Streamer interface {
	Stream(ctx context.Context, id string) ([]byte, error)
}

// Loader fetches audio through the blob cache. A nil cache disables caching.
type Loader struct {
	cache  *blobcache.Cache
	remote Streamer
}

// NewLoader creates a loader reading through cache from remote.
func NewLoader(cache *blobcache.Cache, remote Streamer) *Loader {
	return &Loader{cache: cache, remote: remote}
}

// Fetch returns the audio of id, from the cache when present. Fetched audio
// is stored in the cache.
func (l *Loader) Fetch(ctx context.Context, id string) ([]byte, error) {
	if l.cache != nil {
		entry, err := l.cache.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("track", id).Msg("blob cache read failed")
		} else if entry != nil && len(entry.Blob) > 0 {
			log.Debug().Str("track", id).Msg("blob cache hit")
			return entry.Blob, nil
		}
	}

	data, err := l.remote.Stream(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	l.store(ctx, id, data)
	return data, nil
}

// Prefetch downloads id into the cache unless it is already there. Audio the
// backend is still preparing is skipped without error.
func (l *Loader) Prefetch(ctx context.Context, id string) error {
	if l.cache == nil {
		return nil
	}
	ok, err := l.cache.Contains(ctx, id)
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", id, err)
	}
	if ok {
		return nil
	}

	data, err := l.remote.Stream(ctx, id)
	if errors.Is(err, api.ErrNotReady) {
		log.Debug().Str("track", id).Msg("prefetch skipped, audio not ready")
		return nil
	}
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", id, err)
	}
	l.store(ctx, id, data)
	return nil
}

func (l *Loader) store(ctx context.Context, id string, data []byte) {
	if l.cache == nil {
		return
	}
	dataset := map[string]string{"type": "audio/mpeg"}
	if err := l.cache.Set(ctx, id, dataset, data); err != nil {
		log.Warn().Err(err).Str("track", id).Msg("blob cache write failed")
	}
}
