package monitor

//go:generate mockgen -source=monitor.go -destination=monitor_mock.go -package=monitor

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/phase"
	"fastpull/internal/app/queue"
	"fastpull/internal/app/shutdown"
	"fastpull/internal/app/source"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// FSM states
const (
	AwaitingFirstLog = "awaiting_first_log"
	Monitoring       = "monitoring"
	Stopping         = "stopping"
	Done             = "done"
)

// FSM events
const (
	FirstLine = "first_line"
	Stop      = "stop"
	Finish    = "finish"
)

// FSM callbacks
const (
	OnMonitoring = "enter_monitoring"
	OnStopping   = "enter_stopping"
)

// Prober polls the readiness endpoint of a unit until it answers or the run stops
type Prober interface {
	Run(url string, limit time.Duration, sd *shutdown.Shutdown) bool
}

// Run is the state of one benchmark execution handed to the monitoring loop
type Run struct {
	Table     *phase.Table
	Timeline  *phase.Timeline
	Baseline  time.Time
	Timeout   time.Duration
	HealthURL string
	Logs      *queue.Queue[source.Record]
	Shutdown  *shutdown.Shutdown
}

// Result is the terminal state of a monitoring loop
type Result struct {
	Reason shutdown.Reason
	// Successful is set when the workload's success phase was recorded
	Successful bool
}

// Monitor drives the timeline of a run from its log queue and readiness signal
type Monitor interface {
	Run(ctx context.Context, run *Run) Result
}

type monitor struct {
	prober   Prober
	pollWait time.Duration
	bus      bus.Bus
	log      logger.Logger
}

// NewMonitor creates the monitoring loop
func NewMonitor(cfg *config.Config, prober Prober, b bus.Bus, log logger.Logger) Monitor {
	return &monitor{
		prober:   prober,
		pollWait: cfg.Monitor.PollWait,
		bus:      b,
		log:      log.WithComponent("MONITOR"),
	}
}

// Run drains log lines until the unit is ready, the timeout elapses or ctx is cancelled.
// Cancelling ctx ends the run as interrupted.
func (m *monitor) Run(ctx context.Context, run *Run) Result {
	l := &loop{monitor: m, run: run}
	l.fsm = l.newFSM()

	deadline := time.Now().Add(run.Timeout)

	m.log.Info().Msgf("Monitoring %s logs (timeout %s)", run.Table.Workload(), run.Timeout)

	// wakes the bounded wait as soon as the unit turns ready
	wake, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-run.Shutdown.Ready().Done():
			cancel()
		case <-wake.Done():
		}
	}()

	for {
		if reason, stop := l.stopReason(ctx, deadline); stop {
			l.fire(Stop, reason)
			break
		}

		wait := min(m.pollWait, time.Until(deadline))

		rec, ok := run.Logs.Pop(wake, wait)
		if ok {
			l.handle(rec)
		}
	}

	l.fire(Finish)

	return Result{
		Reason:     l.reason,
		Successful: run.Timeline.Has(run.Table.SuccessPhase()),
	}
}

type loop struct {
	*monitor

	run    *Run
	fsm    *fsm.FSM
	reason shutdown.Reason
}

func (l *loop) newFSM() *fsm.FSM {
	return fsm.NewFSM(
		AwaitingFirstLog,
		fsm.Events{
			{Name: FirstLine, Src: []string{AwaitingFirstLog}, Dst: Monitoring},
			{Name: Stop, Src: []string{AwaitingFirstLog, Monitoring}, Dst: Stopping},
			{Name: Finish, Src: []string{Stopping}, Dst: Done},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				l.log.Debug().Msgf("STATE %s → %s (trigger: %s)", e.Src, e.Dst, e.Event)
				l.bus.Publish(bus.Message{
					Type:     bus.EventStateChanged,
					Data:     bus.StateChanged{From: e.Src, To: e.Dst},
					Critical: true,
				})
			},
			OnMonitoring: func(ctx context.Context, e *fsm.Event) {
				l.armProbe()
			},
			OnStopping: func(ctx context.Context, e *fsm.Event) {
				reason, _ := e.Args[0].(shutdown.Reason)
				l.stop(reason)
			},
		},
	)
}

func (l *loop) fire(event string, args ...interface{}) {
	if err := l.fsm.Event(context.Background(), event, args...); err != nil {
		l.log.Error().Err(err).Msgf("Invalid transition '%s' from '%s'", event, l.fsm.Current())
	}
}

// stopReason evaluates, in priority order, interruption, an external stop, readiness and the deadline
func (l *loop) stopReason(ctx context.Context, deadline time.Time) (shutdown.Reason, bool) {
	sd := l.run.Shutdown

	switch {
	case ctx.Err() != nil:
		return shutdown.ReasonInterrupted, true
	case sd.Stopped():
		return sd.Reason(), true
	case l.run.Table.Readiness() && sd.Ready().IsSet():
		return shutdown.ReasonSucceeded, true
	case !time.Now().Before(deadline):
		return shutdown.ReasonTimedOut, true
	}

	return shutdown.ReasonNone, false
}

func (l *loop) handle(rec source.Record) {
	tl := l.run.Timeline
	elapsed := phase.Elapsed(l.run.Baseline, rec.Time)

	l.bus.Publish(bus.Message{
		Type: bus.EventLogLine,
		Data: bus.LogLine{Elapsed: elapsed, Line: rec.Payload},
	})

	if l.fsm.Is(AwaitingFirstLog) {
		l.record(config.PhaseFirstLog, elapsed)
		l.fire(FirstLine)
	}

	name, ok := phase.Detect(rec.Payload, l.run.Table, tl)
	if !ok {
		return
	}

	l.record(name, elapsed)
}

func (l *loop) record(name string, elapsed float64) {
	if !l.run.Timeline.RecordIfAbsent(name, elapsed) {
		return
	}

	l.log.Info().Msgf("Phase %s at %.3fs", name, elapsed)
	l.bus.Publish(bus.Message{
		Type:     bus.EventPhaseDetected,
		Data:     bus.PhaseDetected{Name: name, Elapsed: elapsed},
		Critical: true,
	})
}

func (l *loop) armProbe() {
	if !l.run.Table.Readiness() || l.run.HealthURL == "" {
		return
	}

	l.bus.Publish(bus.Message{
		Type:     bus.EventProbeArmed,
		Data:     bus.ProbeArmed{URL: l.run.HealthURL},
		Critical: true,
	})

	go l.prober.Run(l.run.HealthURL, l.run.Timeout, l.run.Shutdown)
}

func (l *loop) stop(reason shutdown.Reason) {
	sd := l.run.Shutdown

	if at, ok := sd.ReadyAt(); ok {
		l.record(config.PhaseServerReady, phase.Elapsed(l.run.Baseline, at))
	}

	if !sd.Trigger(reason) {
		reason = sd.Reason()
	}

	l.reason = reason

	l.log.Info().Msgf("Stopping: %s", reason)
}
