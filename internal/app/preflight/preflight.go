package preflight

//go:generate mockgen -source=preflight.go -destination=preflight_mock.go -package=preflight

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/worker"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// Result represents a process killed during preflight
type Result struct {
	Name string
	PID  int32
}

// Preflight removes followers left behind by an interrupted run of the same container
type Preflight interface {
	Cleanup(ctx context.Context, container string) ([]Result, error)
}

// entry holds information about a running process
type entry struct {
	name    string
	cmdline []string
	pid     int32
}

type scanFunc func() ([]entry, error)
type killFunc func(pid int32, timeout time.Duration) error

type preflight struct {
	binary      string
	killTimeout time.Duration
	scan        scanFunc
	kill        killFunc
	bus         bus.Bus
	pool        worker.Pool
	log         logger.Logger
}

// NewPreflight creates a new Preflight instance
func NewPreflight(cfg *config.Config, b bus.Bus, pool worker.Pool, log logger.Logger) Preflight {
	return &preflight{
		binary:      cfg.Runtime.Binary,
		killTimeout: cfg.Preflight.KillTimeout,
		scan:        scan,
		kill:        kill,
		bus:         b,
		pool:        pool,
		log:         log.WithComponent("PREFLIGHT"),
	}
}

// Cleanup kills every "<runtime> logs -f <container>" process still running
func (p *preflight) Cleanup(ctx context.Context, container string) ([]Result, error) {
	if container == "" {
		return nil, nil
	}

	processes, err := p.scan()
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to scan processes")
		p.complete(0)

		return nil, nil
	}

	ownPID := int32(os.Getpid()) // #nosec G115 -- PID fits in int32

	var (
		mu      sync.Mutex
		results []Result
	)

	for _, proc := range processes {
		if proc.pid == ownPID || !follows(proc.cmdline, p.binary, container) {
			continue
		}

		err := p.pool.Go(ctx, func() {
			p.log.Info().Msgf("Killing stale follower '%s' (PID: %d)", proc.name, proc.pid)

			p.bus.Publish(bus.Message{
				Type: bus.EventPreflightKill,
				Data: bus.PreflightKill{Name: proc.name, PID: int(proc.pid)},
			})

			if err := p.kill(proc.pid, p.killTimeout); err != nil {
				p.log.Warn().Err(err).Msgf("Failed to kill process %d", proc.pid)
			}

			mu.Lock()
			results = append(results, Result{Name: proc.name, PID: proc.pid})
			mu.Unlock()
		})
		if err != nil {
			p.log.Warn().Err(err).Msg("Context cancelled, stopping preflight kills")
			break
		}
	}

	p.pool.Wait()
	p.complete(len(results))

	return results, nil
}

func (p *preflight) complete(killed int) {
	p.bus.Publish(bus.Message{
		Type:     bus.EventPreflightComplete,
		Data:     bus.PreflightComplete{Killed: killed},
		Critical: true,
	})
}

// follows reports whether cmdline is "[sudo] <binary> [flags] logs [flags] <container>"
func follows(cmdline []string, binary, container string) bool {
	if len(cmdline) == 0 || cmdline[len(cmdline)-1] != container {
		return false
	}

	seenBinary := false

	for _, arg := range cmdline[:len(cmdline)-1] {
		switch {
		case filepath.Base(arg) == binary:
			seenBinary = true
		case arg == "logs" && seenBinary:
			return true
		}
	}

	return false
}

func scan() ([]entry, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, err
	}

	results := make([]entry, 0, len(processes))

	for _, p := range processes {
		cmdline, err := p.CmdlineSlice()
		if err != nil || len(cmdline) == 0 {
			continue
		}

		name, _ := p.Name()
		results = append(results, entry{
			name:    name,
			cmdline: cmdline,
			pid:     p.Pid,
		})
	}

	return results, nil
}

func kill(pid int32, timeout time.Duration) error {
	if err := syscall.Kill(-int(pid), syscall.SIGTERM); err != nil {
		if err := syscall.Kill(int(pid), syscall.SIGTERM); err != nil {
			return nil
		}
	}

	deadline := time.After(timeout)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			_ = syscall.Kill(-int(pid), syscall.SIGKILL)
			_ = syscall.Kill(int(pid), syscall.SIGKILL)

			return nil
		case <-ticker.C:
			if err := syscall.Kill(int(pid), 0); err != nil {
				return nil
			}
		}
	}
}
