package shutdown

import (
	"context"
	"sync"
	"time"

	"fastpull/internal/app/latch"
)

// Reason is the terminal cause of a run
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonSucceeded   Reason = "succeeded"
	ReasonTimedOut    Reason = "timed_out"
	ReasonInterrupted Reason = "interrupted"
	ReasonFailed      Reason = "failed"
)

// Shutdown fans a single stop decision out to every producer of one run.
// Trigger may be called any number of times from any goroutine; the first reason wins.
type Shutdown struct {
	ready  *latch.Latch
	cancel *latch.Latch

	ctx        context.Context
	cancelFunc context.CancelFunc

	mu      sync.Mutex
	reason  Reason
	readyAt time.Time
}

// New creates a shutdown coordinator whose context derives from parent
func New(parent context.Context) *Shutdown {
	ctx, cancel := context.WithCancel(parent)

	return &Shutdown{
		ready:      latch.New(),
		cancel:     latch.New(),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Context is cancelled once Trigger runs or the parent ends
func (s *Shutdown) Context() context.Context {
	return s.ctx
}

// Ready is the one-shot readiness signal
func (s *Shutdown) Ready() *latch.Latch {
	return s.ready
}

// Cancel is the one-shot stop-producing signal
func (s *Shutdown) Cancel() *latch.Latch {
	return s.cancel
}

// MarkReady records the first readiness time and sets the ready signal
func (s *Shutdown) MarkReady(at time.Time) bool {
	s.mu.Lock()
	if s.readyAt.IsZero() && !s.cancel.IsSet() {
		s.readyAt = at
	}
	s.mu.Unlock()

	return s.ready.Set()
}

// ReadyAt returns the time a probe observed readiness, if any
func (s *Shutdown) ReadyAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readyAt, !s.readyAt.IsZero()
}

// Trigger stops every producer: sets cancel, cancels the context and releases ready waiters.
// It reports whether this call decided the reason.
func (s *Shutdown) Trigger(reason Reason) bool {
	s.mu.Lock()
	first := s.reason == ReasonNone
	if first {
		s.reason = reason
	}
	s.mu.Unlock()

	s.cancel.Set()
	s.cancelFunc()
	s.ready.Set()

	return first
}

// Reason returns the reason given to the first Trigger call
func (s *Shutdown) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reason
}

// Stopped reports whether Trigger has run
func (s *Shutdown) Stopped() bool {
	return s.cancel.IsSet()
}
