package app

import (
	"context"
	"os"

	"go.uber.org/fx"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/cli"
	"fastpull/internal/config/logger"
)

// App represents the main application container
type App struct {
	cli  cli.CLI
	bus  bus.Bus
	log  logger.Logger
	exit func(int)
	done chan struct{}
}

// NewApp creates a new application instance with its dependencies
func NewApp(cli cli.CLI, b bus.Bus, log logger.Logger) *App {
	return &App{
		cli:  cli,
		bus:  b,
		log:  log,
		exit: os.Exit,
		done: make(chan struct{}),
	}
}

// Run executes the command and exits the process with its code
func (a *App) Run() {
	exitCode := a.execute()

	a.bus.Close()
	close(a.done)

	a.exit(exitCode)
}

// execute runs the CLI and returns exit code - extracted for testing
func (a *App) execute() int {
	exitCode, err := a.cli.Execute()
	if err != nil {
		a.log.Debug().Err(err).Msgf("Command finished with exit code %d", exitCode)
	}

	return exitCode
}

// Register registers the application's lifecycle hooks with fx
func Register(lifecycle fx.Lifecycle, app *App) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-app.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
