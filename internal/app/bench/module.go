package bench

import "go.uber.org/fx"

// Module provides the benchmark runner
var Module = fx.Module("bench",
	fx.Provide(NewRunner),
)
