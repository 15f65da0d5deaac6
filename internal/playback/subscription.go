package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	Interrupted  <-chan InterruptEvent
	Ended        <-chan EndedEvent
	Error        <-chan ErrorEvent
	Done         <-chan struct{}

	stateCh     chan StateChange
	interruptCh chan InterruptEvent
	endedCh     chan EndedEvent
	errorCh     chan ErrorEvent
	doneCh      chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:     make(chan StateChange, eventBufferSize),
		interruptCh: make(chan InterruptEvent, eventBufferSize),
		endedCh:     make(chan EndedEvent, eventBufferSize),
		errorCh:     make(chan ErrorEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Interrupted = s.interruptCh
	s.Ended = s.endedCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// Sends never block; events are dropped when a subscriber falls behind.

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendInterrupt(e InterruptEvent) {
	select {
	case s.interruptCh <- e:
	default:
	}
}

func (s *Subscription) sendEnded(e EndedEvent) {
	select {
	case s.endedCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
