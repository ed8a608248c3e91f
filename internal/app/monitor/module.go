package monitor

import (
	"go.uber.org/fx"

	"fastpull/internal/app/source"
)

// Module provides the monitoring loop
var Module = fx.Module("monitor",
	fx.Provide(
		func(p *source.Probe) Prober { return p },
		NewMonitor,
	),
)
