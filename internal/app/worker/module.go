package worker

import "go.uber.org/fx"

// Module provides the worker pool
var Module = fx.Module("worker",
	fx.Provide(NewWorkerPool),
)
