package telemetry

import "go.uber.org/fx"

// Module provides the error reporter
var Module = fx.Module("telemetry",
	fx.Provide(NewReporter),
)
