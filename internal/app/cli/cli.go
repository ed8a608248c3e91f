package cli

//go:generate mockgen -source=cli.go -destination=cli_mock.go -package=cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fastpull/internal/app/bench"
	"fastpull/internal/app/bus"
	"fastpull/internal/app/errors"
	"fastpull/internal/app/report"
	"fastpull/internal/app/shutdown"
	"fastpull/internal/app/telemetry"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

const (
	printerDrain = time.Second
	flushTimeout = 2 * time.Second
)

// CLI defines the interface for cli operations
type CLI interface {
	Execute() (int, error)
}

// cli represents the command-line interface for the application
type cli struct {
	cfg       *config.Config
	opts      *Options
	runner    bench.Runner
	printer   Printer
	bus       bus.Bus
	telemetry telemetry.Reporter
	out       io.Writer
	log       logger.Logger
}

// NewCLI creates a new cli instance
func NewCLI(
	cfg *config.Config,
	opts *Options,
	runner bench.Runner,
	printer Printer,
	b bus.Bus,
	reporter telemetry.Reporter,
	log logger.Logger,
) CLI {
	return &cli{
		cfg:       cfg,
		opts:      opts,
		runner:    runner,
		printer:   printer,
		bus:       b,
		telemetry: reporter,
		out:       os.Stdout,
		log:       log.WithComponent("CLI"),
	}
}

// Execute runs the parsed command and returns the process exit code
func (c *cli) Execute() (int, error) {
	switch c.opts.Type {
	case CommandBench:
		return c.handleBench()
	case CommandWorkloads:
		c.log.Debug().Msg("Listing workloads")
		fmt.Fprint(c.out, RenderWorkloads(c.cfg))

		return report.ExitSuccess, nil
	case CommandVersion:
		fmt.Fprintln(c.out, RenderTitle())

		return report.ExitSuccess, nil
	default:
		fmt.Fprint(c.out, RenderHelp())

		return report.ExitSuccess, nil
	}
}

// handleBench runs one benchmark and prints its summary
func (c *cli) handleBench() (int, error) {
	defer c.telemetry.Flush(flushTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSignals := c.watchSignals(ctx, cancel)
	defer stopSignals()

	followCtx, stopFollow := context.WithCancel(context.Background())
	done := c.printer.Follow(followCtx)

	rep, err := c.runner.Run(ctx, c.opts.Bench)

	c.drain(done)
	stopFollow()

	if rep == nil {
		c.log.Error().Err(err).Msg("Benchmark did not run")
		fmt.Fprintf(c.out, "%s %v\n%s\n", errorStyle.Render("Error:"), err, RenderHint())

		return report.ExitFailure, err
	}

	fmt.Fprint(c.out, report.Summary(rep))

	code := rep.ExitCode()

	if c.opts.OutputJSON != "" {
		if werr := report.WriteJSON(c.opts.OutputJSON, rep); werr != nil {
			c.log.Error().Err(werr).Msg("Report not saved")
			fmt.Fprintf(c.out, "%s %v\n", errorStyle.Render("Error:"), werr)

			if code == report.ExitSuccess {
				code = report.ExitFailure
			}

			if err == nil {
				err = werr
			}
		} else {
			fmt.Fprintf(c.out, "\nResults saved to: %s\n", c.opts.OutputJSON)
		}
	}

	if err == nil {
		err = outcomeError(rep)
	}

	return code, err
}

// watchSignals cancels the run on SIGINT or SIGTERM; teardown still happens inside the runner
func (c *cli) watchSignals(ctx context.Context, cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			c.bus.Publish(bus.Message{
				Type:     bus.EventSignal,
				Data:     bus.Signal{Name: sig.String()},
				Critical: true,
			})
			c.log.Warn().Msgf("Received signal %s, interrupting run", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return func() {
		signal.Stop(sigChan)
	}
}

// drain gives the printer a moment to flush notices still in flight
func (c *cli) drain(done <-chan struct{}) {
	timer := time.NewTimer(printerDrain)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		c.log.Debug().Msg("Printer did not finish in time")
	}
}

// outcomeError maps a non-zero exit to its sentinel
func outcomeError(rep *report.Report) error {
	switch rep.ExitCode() {
	case report.ExitSuccess:
		return nil
	case report.ExitInterrupted:
		return errors.ErrBenchmarkInterrupted
	}

	if rep.Outcome == string(shutdown.ReasonTimedOut) {
		return errors.ErrBenchmarkTimedOut
	}

	return errors.ErrBenchmarkUnsuccessful
}
