package phase

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"fastpull/internal/app/errors"
	"fastpull/internal/config"
)

// Pattern matches a lower-cased log line either by substring or by glob
type Pattern struct {
	raw  string
	glob glob.Glob
}

// NewPattern compiles a pattern, treating a "glob:" prefix as a whole-line glob
func NewPattern(raw string) (Pattern, error) {
	raw = strings.ToLower(raw)

	expr, ok := strings.CutPrefix(raw, config.GlobPrefix)
	if !ok {
		return Pattern{raw: raw}, nil
	}

	g, err := glob.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: '%s'", errors.ErrInvalidGlobPattern, raw)
	}

	return Pattern{raw: raw, glob: g}, nil
}

// Match reports whether an already lower-cased line satisfies the pattern
func (p Pattern) Match(line string) bool {
	if p.glob != nil {
		return p.glob.Match(line)
	}

	return strings.Contains(line, p.raw)
}

func (p Pattern) String() string {
	return p.raw
}

// Phase is one row of a table
type Phase struct {
	Name     string
	Patterns []Pattern
}

// Table is the immutable ordered phase table of one workload
type Table struct {
	workload  string
	readiness bool
	phases    []Phase
}

// NewTable compiles the phase table of a workload
func NewTable(w *config.Workload) (*Table, error) {
	if len(w.Phases) == 0 {
		return nil, errors.ErrWorkloadPhasesRequired
	}

	t := &Table{
		workload:  w.Name,
		readiness: w.Readiness,
		phases:    make([]Phase, 0, len(w.Phases)),
	}

	for _, p := range w.Phases {
		if p.Name == "" {
			return nil, errors.ErrPhaseNameRequired
		}

		if len(p.Patterns) == 0 {
			return nil, fmt.Errorf("%w: '%s'", errors.ErrPhasePatternsRequired, p.Name)
		}

		compiled := make([]Pattern, 0, len(p.Patterns))

		for _, raw := range p.Patterns {
			pattern, err := NewPattern(raw)
			if err != nil {
				return nil, err
			}

			compiled = append(compiled, pattern)
		}

		t.phases = append(t.phases, Phase{Name: p.Name, Patterns: compiled})
	}

	return t, nil
}

// Workload returns the name of the workload the table belongs to
func (t *Table) Workload() string {
	return t.workload
}

// Readiness reports whether the workload exposes a readiness endpoint
func (t *Table) Readiness() bool {
	return t.readiness
}

// Phases returns the detectable phase names in table order
func (t *Table) Phases() []string {
	names := make([]string, len(t.phases))
	for i, p := range t.phases {
		names[i] = p.Name
	}

	return names
}

// TimelineNames returns every phase the timeline tracks: first_log, the table, then server_ready for readiness workloads
func (t *Table) TimelineNames() []string {
	names := make([]string, 0, len(t.phases)+2)
	names = append(names, config.PhaseFirstLog)
	names = append(names, t.Phases()...)

	if t.readiness {
		names = append(names, config.PhaseServerReady)
	}

	return names
}

// SuccessPhase is the phase whose presence marks a successful run
func (t *Table) SuccessPhase() string {
	if t.readiness {
		return config.PhaseServerReady
	}

	return config.PhaseFirstLog
}
