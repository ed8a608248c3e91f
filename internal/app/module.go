package app

import (
	"go.uber.org/fx"

	"fastpull/internal/app/bench"
	"fastpull/internal/app/bus"
	"fastpull/internal/app/cli"
	"fastpull/internal/app/lifecycle"
	"fastpull/internal/app/monitor"
	"fastpull/internal/app/phase"
	"fastpull/internal/app/preflight"
	"fastpull/internal/app/source"
	"fastpull/internal/app/telemetry"
	"fastpull/internal/app/worker"
	"fastpull/internal/config/logger"
)

var Module = fx.Options(
	logger.Module,
	bus.Module,
	phase.Module,
	source.Module,
	monitor.Module,
	lifecycle.Module,
	worker.Module,
	preflight.Module,
	telemetry.Module,
	bench.Module,
	cli.Module,
	fx.Provide(NewApp),
	fx.Invoke(Register),
)
