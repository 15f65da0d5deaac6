package playback

import (
	"net/url"
	"strings"
)

// StreamPathPrefix is the backend path audio is streamed from.
const StreamPathPrefix = "/audio/stream/"

// StreamPath returns the source URL of a track.
func StreamPath(id string) string {
	return StreamPathPrefix + url.PathEscape(id)
}

// TrackIDFromPath extracts the track ID from a StreamPath URL.
func TrackIDFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, StreamPathPrefix)
	if !ok || rest == "" {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

// Strategy selects how a track reaches the output.
type Strategy int

const (
	// StrategyAuto sniffs the user agent on every load.
	StrategyAuto Strategy = iota
	// StrategyDirect plays the stream URL on the visible element.
	StrategyDirect
	// StrategyGraph decodes on a hidden element routed through an audio
	// graph into a stream the visible element plays. Platforms that halt
	// elements not driven by a user gesture keep graph output alive.
	StrategyGraph
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyDirect:
		return "direct"
	case StrategyGraph:
		return "graph"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a configured strategy name. Unknown names select auto.
func ParseStrategy(name string) Strategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "direct":
		return StrategyDirect
	case "graph":
		return StrategyGraph
	default:
		return StrategyAuto
	}
}

var iosBrowserMarkers = []string{"CriOS", "FxiOS", "EdgiOS", "OPiOS"}

// SniffStrategy picks the graph strategy for iOS Safari, direct otherwise.
func SniffStrategy(userAgent string) Strategy {
	ios := strings.Contains(userAgent, "iPhone") ||
		strings.Contains(userAgent, "iPad") ||
		strings.Contains(userAgent, "iPod")
	if !ios || !strings.Contains(userAgent, "Safari") {
		return StrategyDirect
	}
	for _, marker := range iosBrowserMarkers {
		if strings.Contains(userAgent, marker) {
			return StrategyDirect
		}
	}
	return StrategyGraph
}
