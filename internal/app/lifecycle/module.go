package lifecycle

import "go.uber.org/fx"

// Module provides the lifecycle controller and its dependencies
var Module = fx.Module("lifecycle",
	fx.Provide(
		NewExecutor,
		NewController,
	),
)
