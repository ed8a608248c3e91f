package lifecycle

//go:generate mockgen -source=lifecycle.go -destination=lifecycle_mock.go -package=lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fastpull/internal/app/errors"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// runtime messages meaning the requested state already holds
var alreadyGone = []string{
	"no such container",
	"not found",
	"not running",
}

// Controller creates, stops and removes the benchmarked unit
type Controller interface {
	Start(ctx context.Context, u Unit) error
	Stop(ctx context.Context, u Unit) error
	Remove(ctx context.Context, u Unit) error
	RemoveImage(ctx context.Context, u Unit) error
	ResetSnapshotter(ctx context.Context, snapshotter string) error
	EventsCommand() []string
	LogsCommand(u Unit) []string
}

type controller struct {
	cmds          *Commands
	exec          Executor
	stopTimeout   time.Duration
	removeTimeout time.Duration
	settle        time.Duration
	log           logger.Logger

	mu      sync.Mutex
	stopped map[string]bool
}

// NewController creates a nerdctl-backed lifecycle controller
func NewController(cfg *config.Config, exec Executor, log logger.Logger) Controller {
	return &controller{
		cmds:          NewCommands(cfg),
		exec:          exec,
		stopTimeout:   cfg.Runtime.StopTimeout,
		removeTimeout: cfg.Runtime.RemoveTimeout,
		settle:        cfg.Runtime.Settle,
		log:           log.WithComponent("LIFECYCLE"),
		stopped:       make(map[string]bool),
	}
}

// Start issues the detached run command and returns once the runtime accepted it
func (c *controller) Start(ctx context.Context, u Unit) error {
	if u.Name == "" {
		return errors.ErrUnitNameRequired
	}

	argv := c.cmds.Run(u)
	c.log.Info().Msgf("Running command: %s", strings.Join(argv, " "))

	out, err := c.exec.Run(ctx, argv, 0)
	if err != nil {
		return fmt.Errorf("%w '%s': %w: %s", errors.ErrFailedToStartUnit, u.Name, err, out)
	}

	c.mu.Lock()
	delete(c.stopped, u.Name)
	c.mu.Unlock()

	return nil
}

// Stop stops then removes the unit; calls after the first one for the same name are no-ops
func (c *controller) Stop(ctx context.Context, u Unit) error {
	c.mu.Lock()
	if c.stopped[u.Name] {
		c.mu.Unlock()
		c.log.Debug().Msgf("Unit '%s' already stopped", u.Name)

		return nil
	}
	c.stopped[u.Name] = true
	c.mu.Unlock()

	c.log.Info().Msgf("Stopping unit '%s'", u.Name)

	var stopErr error

	out, err := c.exec.Run(ctx, c.cmds.Stop(u.Snapshotter, u.Name), c.stopTimeout)
	if err != nil && !gone(out) {
		stopErr = fmt.Errorf("%w '%s': %w", errors.ErrFailedToStopUnit, u.Name, err)
		c.log.Warn().Err(err).Msgf("Could not stop unit cleanly: %s", out)
	}

	c.pause(ctx)

	out, err = c.exec.Run(ctx, c.cmds.Remove(u.Snapshotter, u.Name, false), c.removeTimeout)
	if err != nil && !gone(out) {
		c.log.Warn().Err(err).Msgf("Could not remove unit: %s", out)

		if stopErr == nil {
			stopErr = fmt.Errorf("%w '%s': %w", errors.ErrFailedToRemoveUnit, u.Name, err)
		}
	}

	c.pause(ctx)

	return stopErr
}

// Remove force-removes a leftover unit with the same name
func (c *controller) Remove(ctx context.Context, u Unit) error {
	out, err := c.exec.Run(ctx, c.cmds.Remove(u.Snapshotter, u.Name, true), c.removeTimeout)
	if err != nil && !gone(out) {
		return fmt.Errorf("%w '%s': %w: %s", errors.ErrFailedToRemoveUnit, u.Name, err, out)
	}

	return nil
}

// RemoveImage deletes the unit's image so the next run pulls it again, falling back to the image ID
func (c *controller) RemoveImage(ctx context.Context, u Unit) error {
	c.log.Info().Msgf("Removing image %s", u.Image)

	out, err := c.exec.Run(ctx, c.cmds.RemoveImage(u.Snapshotter, u.Image), c.removeTimeout)
	if err == nil {
		return nil
	}

	c.log.Debug().Msgf("Removing by reference failed (%s), trying image ID", out)

	ids, idErr := c.exec.Run(ctx, c.cmds.ImageIDs(u.Snapshotter, u.Image), c.stopTimeout)
	id, _, _ := strings.Cut(ids, "\n")

	if idErr != nil || strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w '%s': %w: %s", errors.ErrFailedToRemoveImage, u.Image, err, out)
	}

	id = strings.TrimSpace(id)

	out, err = c.exec.Run(ctx, c.cmds.RemoveImage(u.Snapshotter, id), c.removeTimeout)
	if err != nil {
		return fmt.Errorf("%w '%s' (id %s): %w: %s", errors.ErrFailedToRemoveImage, u.Image, id, err, out)
	}

	c.log.Info().Msgf("Image removed using ID %s", id)

	return nil
}

// ResetSnapshotter clears lazily-loaded state for snapshotters that keep it outside the image store
func (c *controller) ResetSnapshotter(ctx context.Context, snapshotter string) error {
	if snapshotter != config.SnapshotterSOCI {
		return nil
	}

	c.log.Info().Msg("Resetting SOCI snapshotter state")

	if out, err := c.exec.Run(ctx, c.cmds.ClearSOCIState(), c.stopTimeout); err != nil {
		c.log.Warn().Err(err).Msgf("Could not remove SOCI state directory: %s", out)
	}

	if out, err := c.exec.Run(ctx, c.cmds.RestartSOCI(), c.stopTimeout); err != nil {
		return fmt.Errorf("restart %s: %w: %s", config.SOCIService, err, out)
	}

	c.pause(ctx)

	return nil
}

// EventsCommand returns the runtime event stream command line
func (c *controller) EventsCommand() []string {
	return c.cmds.Events()
}

// LogsCommand returns the command line following a unit's output
func (c *controller) LogsCommand(u Unit) []string {
	return c.cmds.Logs(u.Snapshotter, u.Name)
}

func (c *controller) pause(ctx context.Context) {
	if c.settle <= 0 {
		return
	}

	timer := time.NewTimer(c.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func gone(output string) bool {
	lower := strings.ToLower(output)
	for _, msg := range alreadyGone {
		if strings.Contains(lower, msg) {
			return true
		}
	}

	return false
}
