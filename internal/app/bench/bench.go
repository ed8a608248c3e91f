package bench

//go:generate mockgen -source=bench.go -destination=bench_mock.go -package=bench

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/lifecycle"
	"fastpull/internal/app/monitor"
	"fastpull/internal/app/phase"
	"fastpull/internal/app/preflight"
	"fastpull/internal/app/report"
	"fastpull/internal/app/shutdown"
	"fastpull/internal/app/source"
	"fastpull/internal/app/telemetry"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// Runner executes one benchmark run from cleanup to teardown
type Runner interface {
	Run(ctx context.Context, opts Options) (*report.Report, error)
}

type runner struct {
	cfg        *config.Config
	factory    phase.Factory
	controller lifecycle.Controller
	monitor    monitor.Monitor
	preflight  preflight.Preflight
	telemetry  telemetry.Reporter
	bus        bus.Bus
	log        logger.Logger
}

// NewRunner creates a benchmark runner
func NewRunner(
	cfg *config.Config,
	factory phase.Factory,
	controller lifecycle.Controller,
	monitor monitor.Monitor,
	preflight preflight.Preflight,
	telemetry telemetry.Reporter,
	b bus.Bus,
	log logger.Logger,
) Runner {
	return &runner{
		cfg:        cfg,
		factory:    factory,
		controller: controller,
		monitor:    monitor,
		preflight:  preflight,
		telemetry:  telemetry,
		bus:        b,
		log:        log.WithComponent("BENCH"),
	}
}

// execution is the state owned by a single run
type execution struct {
	id        string
	opts      Options
	workload  *config.Workload
	table     *phase.Table
	unit      lifecycle.Unit
	timeline  *phase.Timeline
	durations *phase.Durations
	sd        *shutdown.Shutdown
	started   time.Time
	baseline  time.Time
}

// Run benchmarks the workload named in opts. Cancelling ctx interrupts the run;
// teardown still happens. A report is returned for every run that got past validation.
func (r *runner) Run(ctx context.Context, opts Options) (*report.Report, error) {
	ex, err := r.prepare(opts)
	if err != nil {
		return nil, err
	}

	r.log.Info().Msgf("Image: %s, snapshotter: %s, port: %d", ex.opts.Image, ex.opts.Snapshotter, ex.opts.Port)
	r.bus.Publish(bus.Message{
		Type: bus.EventRunStarted,
		Data: bus.RunStarted{
			RunID:       ex.id,
			Workload:    ex.workload.Name,
			Image:       ex.opts.Image,
			Snapshotter: ex.opts.Snapshotter,
			Container:   ex.unit.Name,
		},
		Critical: true,
	})

	// teardown must outlive an interrupt
	cleanupCtx := context.WithoutCancel(ctx)

	r.cleanup(ctx, cleanupCtx, ex)

	ex.sd = shutdown.New(ctx)
	ex.started = time.Now()

	events := source.NewEvents(
		source.NewCommandStream(r.controller.EventsCommand()),
		r.cfg.Monitor.Backoff,
		r.cfg.Monitor.PollWait,
		r.bus,
		r.log,
	)
	go events.Read(ex.sd.Context())

	wait(ctx, r.cfg.Monitor.EventsSettle)

	ex.baseline = time.Now()
	ex.durations.MarkCreated(ex.baseline)

	r.bus.Publish(bus.Message{
		Type:     bus.EventContainerCreated,
		Data:     bus.ContainerCreated{Container: ex.unit.Name},
		Critical: true,
	})

	if err := r.controller.Start(ctx, ex.unit); err != nil {
		return r.abort(ctx, cleanupCtx, ex, err)
	}

	wait(ctx, r.cfg.Monitor.StartupSettle)

	go func() {
		if err := events.Process(ex.sd.Context(), ex.durations); err != nil {
			r.log.Error().Err(err).Msg("Lifecycle events not processed")
		}
	}()

	logs := source.NewLogs(r.logStream(ex), r.cfg.Monitor.Backoff, r.log)
	go logs.Run(ex.sd.Context())

	result := r.monitor.Run(ctx, &monitor.Run{
		Table:     ex.table,
		Timeline:  ex.timeline,
		Baseline:  ex.baseline,
		Timeout:   ex.opts.Timeout,
		HealthURL: source.HealthURL(ex.opts.Port, ex.workload.HealthPath),
		Logs:      logs.Queue(),
		Shutdown:  ex.sd,
	})

	r.teardown(cleanupCtx, ex)

	rep := r.report(ex, result.Reason, result.Successful, nil)
	r.finish(rep)

	return rep, nil
}

func (r *runner) prepare(opts Options) (*execution, error) {
	w, err := r.cfg.Workload(opts.Workload)
	if err != nil {
		return nil, err
	}

	opts, err = opts.resolve(w)
	if err != nil {
		return nil, err
	}

	env, err := lifecycle.LoadEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	table, err := r.factory.Table(w.Name)
	if err != nil {
		return nil, err
	}

	return &execution{
		id:       uuid.NewString(),
		opts:     opts,
		workload: w,
		table:    table,
		unit: lifecycle.Unit{
			Name:           opts.Container,
			Image:          opts.Image,
			Snapshotter:    opts.Snapshotter,
			Port:           opts.Port,
			ContainerPort:  w.ContainerPort,
			ModelMountPath: opts.ModelMountPath,
			Env:            env,
		},
		timeline:  phase.NewTimeline(table.TimelineNames()),
		durations: &phase.Durations{},
	}, nil
}

// cleanup removes leftovers of a previous run with the same container name
func (r *runner) cleanup(ctx, cleanupCtx context.Context, ex *execution) {
	if killed, err := r.preflight.Cleanup(ctx, ex.unit.Name); err == nil && len(killed) > 0 {
		r.log.Info().Msgf("Killed %d stale log followers", len(killed))
	}

	if err := r.controller.Remove(cleanupCtx, ex.unit); err != nil {
		r.log.Warn().Err(err).Msg("Could not remove existing container")
	}

	if err := r.controller.ResetSnapshotter(cleanupCtx, ex.unit.Snapshotter); err != nil {
		r.log.Warn().Err(err).Msg("Could not reset snapshotter")
	}
}

func (r *runner) logStream(ex *execution) source.Stream {
	if ex.opts.LogFile != "" {
		return source.NewFileStream(ex.opts.LogFile, r.cfg.Monitor.PollWait)
	}

	return source.NewCommandStream(r.controller.LogsCommand(ex.unit))
}

// abort ends a run whose unit could not be started
func (r *runner) abort(ctx, cleanupCtx context.Context, ex *execution, err error) (*report.Report, error) {
	reason := shutdown.ReasonFailed
	if ctx.Err() != nil {
		reason = shutdown.ReasonInterrupted
	}

	ex.sd.Trigger(reason)

	r.log.Error().Err(err).Msg("Failed to start container")

	r.teardown(cleanupCtx, ex)

	rep := r.report(ex, ex.sd.Reason(), false, err)
	if reason == shutdown.ReasonFailed {
		r.telemetry.CaptureError(err, tags(rep))
	}

	r.finish(rep)

	return rep, err
}

func (r *runner) teardown(ctx context.Context, ex *execution) {
	r.bus.Publish(bus.Message{
		Type:     bus.EventTeardown,
		Data:     bus.Teardown{Container: ex.unit.Name},
		Critical: true,
	})

	if err := r.controller.Stop(ctx, ex.unit); err != nil {
		r.log.Warn().Err(err).Msg("Could not stop container cleanly")
	}

	if ex.opts.KeepImage {
		r.log.Info().Msg("Keeping image as requested")
		return
	}

	if err := r.controller.RemoveImage(ctx, ex.unit); err != nil {
		r.log.Warn().Err(err).Msg("Could not remove image")
	}

	if err := r.controller.ResetSnapshotter(ctx, ex.unit.Snapshotter); err != nil {
		r.log.Warn().Err(err).Msg("Could not reset snapshotter")
	}
}

func (r *runner) report(ex *execution, reason shutdown.Reason, successful bool, err error) *report.Report {
	rep := &report.Report{
		RunID:                 ex.id,
		Application:           ex.workload.Name,
		Snapshotter:           ex.opts.Snapshotter,
		Image:                 ex.opts.Image,
		Container:             ex.unit.Name,
		Timestamp:             ex.started,
		Outcome:               string(reason),
		Successful:            successful,
		Phases:                ex.timeline.Snapshot(),
		SupportsHealthPolling: ex.table.Readiness(),
		TotalTime:             time.Since(ex.started).Seconds(),
	}

	if startup, ok := ex.durations.StartupDuration(); ok {
		rep.ContainerStartupDuration = &startup
	}

	if at, ok := ex.sd.ReadyAt(); ok && !ex.baseline.IsZero() {
		ready := phase.Elapsed(ex.baseline, at)
		rep.HealthReadyTime = &ready
	}

	if err != nil {
		rep.Error = err.Error()
	}

	return rep
}

func (r *runner) finish(rep *report.Report) {
	r.log.Info().Msgf("Run %s finished: %s in %.3fs", rep.RunID, rep.Outcome, rep.TotalTime)

	r.bus.Publish(bus.Message{
		Type:     bus.EventRunFinished,
		Data:     bus.RunFinished{Outcome: rep.Outcome, Total: rep.TotalTime},
		Critical: true,
	})

	if rep.ExitCode() == report.ExitFailure && rep.Error == "" {
		r.telemetry.CaptureMessage("benchmark "+rep.Outcome, tags(rep))
	}
}

func tags(rep *report.Report) map[string]string {
	return map[string]string{
		"workload":    rep.Application,
		"snapshotter": rep.Snapshotter,
		"run_id":      rep.RunID,
	}
}

// wait sleeps for d unless ctx ends first
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
