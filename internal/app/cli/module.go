package cli

import "go.uber.org/fx"

// Module provides the command-line interface and its console printer
var Module = fx.Module("cli",
	fx.Provide(
		NewPrinter,
		NewCLI,
	),
)
