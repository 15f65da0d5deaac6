package playback

import "testing"

func TestRoute_Next(t *testing.T) {
	tests := []struct {
		from    Route
		trigger Trigger
		want    Route
	}{
		{RouteFresh, TriggerLoad, RouteRebuilding},
		{RouteRebuilding, TriggerReady, RouteActive},
		{RouteRebuilding, TriggerCleanup, RouteActive},
		{RouteRebuilding, TriggerLoad, RouteRebuilding},
		{RouteRebuilding, TriggerSuspended, RouteInterrupted},
		{RouteActive, TriggerLoad, RouteActive},
		{RouteActive, TriggerReady, RouteActive},
		{RouteActive, TriggerSuspended, RouteInterrupted},
		{RouteActive, TriggerPause, RouteActive},
		{RouteActive, TriggerCleanup, RouteActive},
		{RouteInterrupted, TriggerLoad, RouteRebuilding},
		{RouteInterrupted, TriggerReady, RouteInterrupted},
		{RouteInterrupted, TriggerPause, RouteInterrupted},
		{RouteFresh, TriggerSuspended, RouteFresh},
		{RouteFresh, TriggerReady, RouteFresh},
		{RouteActive, TriggerLoadFailed, RouteFresh},
		{RouteRebuilding, TriggerLoadFailed, RouteFresh},
		{RouteInterrupted, TriggerReset, RouteFresh},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.trigger.String(), func(t *testing.T) {
			if got := tt.from.Next(tt.trigger); got != tt.want {
				t.Errorf("%v.Next(%v) = %v, want %v", tt.from, tt.trigger, got, tt.want)
			}
		})
	}
}

func TestRoute_NeedsRebuild(t *testing.T) {
	tests := []struct {
		route Route
		want  bool
	}{
		{RouteFresh, true},
		{RouteInterrupted, true},
		{RouteActive, false},
		{RouteRebuilding, false},
	}

	for _, tt := range tests {
		if got := tt.route.NeedsRebuild(); got != tt.want {
			t.Errorf("%v.NeedsRebuild() = %v, want %v", tt.route, got, tt.want)
		}
	}
}

func TestState_IsLoaded(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateEmpty, false},
		{StateLoading, false},
		{StateReady, true},
		{StatePlaying, true},
		{StatePaused, true},
	}

	for _, tt := range tests {
		if got := tt.state.IsLoaded(); got != tt.want {
			t.Errorf("%v.IsLoaded() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestContextState_Halted(t *testing.T) {
	if !ContextSuspended.Halted() || !ContextInterrupted.Halted() {
		t.Error("suspended and interrupted should be halted")
	}
	if ContextRunning.Halted() || ContextClosed.Halted() {
		t.Error("running and closed should not be halted")
	}
}
