package phase

import "go.uber.org/fx"

// Module provides the fx dependency injection options for the phase package
var Module = fx.Options(
	fx.Provide(NewFactory),
)
