package latch

import (
	"sync"
	"time"
)

// Latch is a one-shot signal: it moves from unset to set exactly once and never resets
type Latch struct {
	once sync.Once
	done chan struct{}
}

// New creates an unset latch
func New() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Set releases every waiter; subsequent calls are no-ops. It reports whether this call set the latch
func (l *Latch) Set() bool {
	set := false

	l.once.Do(func() {
		close(l.done)
		set = true
	})

	return set
}

// IsSet reports whether the latch has been set
func (l *Latch) IsSet() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the latch is set
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the latch is set or timeout elapses, reporting whether it was set
func (l *Latch) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		return l.IsSet()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.done:
		return true
	case <-timer.C:
		return false
	}
}
