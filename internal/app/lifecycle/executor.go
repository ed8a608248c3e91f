package lifecycle

//go:generate mockgen -source=executor.go -destination=executor_mock.go -package=lifecycle

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"fastpull/internal/config/logger"
)

const killGrace = time.Second

// Executor runs a short-lived command and returns its combined output
type Executor interface {
	Run(ctx context.Context, argv []string, timeout time.Duration) (string, error)
}

type executor struct {
	log logger.Logger
}

// NewExecutor creates an executor that runs commands in their own process group
func NewExecutor(log logger.Logger) Executor {
	return &executor{log: log.WithComponent("EXEC")}
}

// Run executes argv; a zero timeout only bounds the call by ctx
func (e *executor) Run(ctx context.Context, argv []string, timeout time.Duration) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = killGrace
	cmd.Cancel = func() error {
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}

		return nil
	}

	e.log.Debug().Msgf("Running: %s", strings.Join(argv, " "))

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output, fmt.Errorf("%w: %w", ctxErr, err)
		}

		return output, err
	}

	return output, nil
}
