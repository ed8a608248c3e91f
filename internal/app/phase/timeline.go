package phase

import "time"

// Entry is one phase of a timeline snapshot; Elapsed is nil when the phase was never observed
type Entry struct {
	Name    string   `json:"name"`
	Elapsed *float64 `json:"elapsed"`
}

// Timeline maps phase names to seconds since the baseline; each value is written at most once.
// It has a single writer and is not safe for concurrent use.
type Timeline struct {
	names  []string
	values map[string]float64
}

// NewTimeline creates a timeline tracking the given phases, all unset
func NewTimeline(names []string) *Timeline {
	tl := &Timeline{
		names:  make([]string, 0, len(names)),
		values: make(map[string]float64, len(names)),
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}

		seen[name] = true
		tl.names = append(tl.names, name)
	}

	return tl
}

// RecordIfAbsent stores elapsed for a known, unset phase and reports whether the write happened
func (tl *Timeline) RecordIfAbsent(name string, elapsed float64) bool {
	if !tl.known(name) {
		return false
	}

	if _, ok := tl.values[name]; ok {
		return false
	}

	tl.values[name] = elapsed

	return true
}

// Get returns the recorded value of a phase
func (tl *Timeline) Get(name string) (float64, bool) {
	v, ok := tl.values[name]
	return v, ok
}

// Has reports whether a phase has been recorded
func (tl *Timeline) Has(name string) bool {
	_, ok := tl.values[name]
	return ok
}

// Names returns the tracked phases in order
func (tl *Timeline) Names() []string {
	out := make([]string, len(tl.names))
	copy(out, tl.names)

	return out
}

// Count returns the number of recorded phases
func (tl *Timeline) Count() int {
	return len(tl.values)
}

// Snapshot returns the timeline in phase order
func (tl *Timeline) Snapshot() []Entry {
	entries := make([]Entry, 0, len(tl.names))

	for _, name := range tl.names {
		entry := Entry{Name: name}
		if v, ok := tl.values[name]; ok {
			elapsed := v
			entry.Elapsed = &elapsed
		}

		entries = append(entries, entry)
	}

	return entries
}

func (tl *Timeline) known(name string) bool {
	for _, n := range tl.names {
		if n == name {
			return true
		}
	}

	return false
}

// Elapsed returns seconds between the baseline and at
func Elapsed(baseline, at time.Time) float64 {
	return at.Sub(baseline).Seconds()
}
