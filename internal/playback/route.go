package playback

// Route is the lifecycle of the audio graph used by the graph strategy.
//
//	          load                ready
//	Fresh ─────────▶ Rebuilding ─────────▶ Active
//	  ▲                 │   ▲                │
//	  │ load failed     │   │ load           │ suspended
//	  │ reset           │   │                ▼
//	  └─────────────────┴───┴───────────  Interrupted
//
// Transitions:
//   - Fresh       → Rebuilding  (load: no graph yet, build one)
//   - Rebuilding  → Active      (ready, or cleanup once the graph exists)
//   - Active      → Interrupted (suspended: platform halted the context, or a
//     pause found the context halted)
//   - Interrupted → Rebuilding  (load: tear the graph down and build again)
//   - Rebuilding  → Interrupted (suspended while the new source loads)
//   - any         → Fresh       (load failed, reset)
//
// Every other (route, trigger) pair leaves the route unchanged.
type Route int

const (
	RouteFresh Route = iota
	RouteActive
	RouteInterrupted
	RouteRebuilding
)

// String returns the route name.
func (r Route) String() string {
	switch r {
	case RouteFresh:
		return "Fresh"
	case RouteActive:
		return "Active"
	case RouteInterrupted:
		return "Interrupted"
	case RouteRebuilding:
		return "Rebuilding"
	default:
		return "Unknown"
	}
}

// Trigger is an event that can move the route.
type Trigger int

const (
	TriggerLoad Trigger = iota
	TriggerReady
	TriggerLoadFailed
	TriggerSuspended
	TriggerPause
	TriggerCleanup
	TriggerReset
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerLoad:
		return "load"
	case TriggerReady:
		return "ready"
	case TriggerLoadFailed:
		return "load_failed"
	case TriggerSuspended:
		return "suspended"
	case TriggerPause:
		return "pause"
	case TriggerCleanup:
		return "cleanup"
	case TriggerReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Next returns the route after t.
func (r Route) Next(t Trigger) Route {
	switch t {
	case TriggerLoadFailed, TriggerReset:
		return RouteFresh
	case TriggerLoad:
		if r == RouteActive {
			return RouteActive
		}
		return RouteRebuilding
	case TriggerReady, TriggerCleanup:
		if r == RouteRebuilding {
			return RouteActive
		}
		return r
	case TriggerSuspended:
		if r == RouteFresh {
			return RouteFresh
		}
		return RouteInterrupted
	case TriggerPause:
		return r
	}
	return r
}

// NeedsRebuild reports whether the next load must build a new graph.
func (r Route) NeedsRebuild() bool {
	return r == RouteFresh || r == RouteInterrupted
}
