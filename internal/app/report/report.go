package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fastpull/internal/app/errors"
	"fastpull/internal/app/phase"
	"fastpull/internal/app/shutdown"
)

// Process exit codes derived from a run outcome
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// Report is the final record of one benchmark run
type Report struct {
	RunID                    string        `json:"run_id"`
	Application              string        `json:"application"`
	Snapshotter              string        `json:"snapshotter"`
	Image                    string        `json:"image"`
	Container                string        `json:"container"`
	Timestamp                time.Time     `json:"timestamp"`
	Outcome                  string        `json:"outcome"`
	Successful               bool          `json:"successful"`
	Phases                   []phase.Entry `json:"phases"`
	ContainerStartupDuration *float64      `json:"container_startup_duration"`
	HealthReadyTime          *float64      `json:"health_ready_time"`
	SupportsHealthPolling    bool          `json:"supports_health_polling"`
	TotalTime                float64       `json:"total_time"`
	Error                    string        `json:"error,omitempty"`
}

// Phase returns the elapsed seconds of a recorded phase
func (r *Report) Phase(name string) (float64, bool) {
	for _, e := range r.Phases {
		if e.Name == name && e.Elapsed != nil {
			return *e.Elapsed, true
		}
	}

	return 0, false
}

// ExitCode maps the outcome to a process exit status.
// Workloads without a readiness contract always run to their timeout, so for them a
// timeout with the success phase recorded still counts as success.
func (r *Report) ExitCode() int {
	switch shutdown.Reason(r.Outcome) {
	case shutdown.ReasonSucceeded:
		return ExitSuccess
	case shutdown.ReasonInterrupted:
		return ExitInterrupted
	case shutdown.ReasonTimedOut:
		if !r.SupportsHealthPolling && r.Successful {
			return ExitSuccess
		}

		return ExitFailure
	default:
		return ExitFailure
	}
}

// WriteJSON stores the report as indented JSON at path
func WriteJSON(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToWriteReport, err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("%w '%s': %w", errors.ErrFailedToWriteReport, path, err)
	}

	return nil
}

// Step is the time spent between two consecutive recorded phases
type Step struct {
	From    string
	To      string
	Seconds float64
}

// Breakdown returns the gaps between consecutive recorded phases in timeline order
func Breakdown(r *Report) []Step {
	var (
		steps []Step
		prev  *phase.Entry
	)

	for i := range r.Phases {
		e := &r.Phases[i]
		if e.Elapsed == nil {
			continue
		}

		if prev != nil {
			steps = append(steps, Step{From: prev.Name, To: e.Name, Seconds: *e.Elapsed - *prev.Elapsed})
		}

		prev = e
	}

	return steps
}
