package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"fastpull/internal/app"
	"fastpull/internal/app/cli"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// main is the entry point for the application
func main() {
	runApp(os.Args[1:])
}

// runApp parses arguments, loads the configuration and starts the fx application
func runApp(args []string) {
	opts, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	application := createApp(cfg, opts)
	application.Run()
}

// loadConfig wraps config.Load for easier testing
func loadConfig(path string) (*config.Config, error) {
	return config.Load(path)
}

// createApp creates the FX application with the given config and parsed options
func createApp(cfg *config.Config, opts *cli.Options) *fx.App {
	return fx.New(
		fx.WithLogger(createFxLogger(cfg)),
		fx.Supply(cfg, opts),
		app.Module,
	)
}

// createFxLogger returns an FX logger based on the config
func createFxLogger(cfg *config.Config) func() fxevent.Logger {
	return func() fxevent.Logger {
		if cfg.Logging.Level == logger.DebugLevel {
			return &fxevent.ConsoleLogger{W: os.Stderr}
		}

		return fxevent.NopLogger
	}
}
