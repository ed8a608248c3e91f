package phase

import (
	"sync"
	"time"
)

// Durations holds the unit create and start times; each is write-once and safe for concurrent use
type Durations struct {
	mu      sync.RWMutex
	created time.Time
	started time.Time
}

// MarkCreated records when unit creation was issued
func (d *Durations) MarkCreated(at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.created.IsZero() {
		return false
	}

	d.created = at

	return true
}

// MarkStarted records when the unit task started
func (d *Durations) MarkStarted(at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started.IsZero() {
		return false
	}

	d.started = at

	return true
}

// Created returns the creation time if known
func (d *Durations) Created() (time.Time, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.created, !d.created.IsZero()
}

// Started returns the task start time if known
func (d *Durations) Started() (time.Time, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.started, !d.started.IsZero()
}

// StartupDuration returns create-to-start seconds once both endpoints are known
func (d *Durations) StartupDuration() (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.created.IsZero() || d.started.IsZero() {
		return 0, false
	}

	return d.started.Sub(d.created).Seconds(), true
}
