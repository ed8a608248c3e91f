package errors

import (
	"errors"
)

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")

	ErrWorkloadNotFound       = errors.New("workload not found")
	ErrWorkloadPhasesRequired = errors.New("workload requires at least one phase")
	ErrWorkloadHealthRequired = errors.New("readiness workload requires health_path")
	ErrPhaseNameRequired      = errors.New("phase name is required")
	ErrPhasePatternsRequired  = errors.New("phase requires at least one pattern")
	ErrReservedPhaseName      = errors.New("phase name is reserved")
	ErrDuplicatePhase         = errors.New("duplicate phase name")
	ErrInvalidGlobPattern     = errors.New("invalid glob pattern")
	ErrInvalidProbeInterval   = errors.New("probe interval must be positive")
	ErrInvalidProbeTimeout    = errors.New("probe request timeout must be positive")
	ErrInvalidMonitorWait     = errors.New("monitor poll wait must be positive")
	ErrInvalidLogsBuffer      = errors.New("logs buffer must be positive")
	ErrInvalidWorkers         = errors.New("preflight workers must be positive")
	ErrInvalidSnapshotter     = errors.New("invalid snapshotter")
	ErrImageRequired          = errors.New("image is required (use --image or --registry with --repo)")
	ErrRegistryRequired       = errors.New("--repo requires --registry")
	ErrInvalidPort            = errors.New("port must be between 1 and 65535")
	ErrRuntimeBinaryRequired  = errors.New("runtime binary is required")
	ErrFailedToReadEnvFile    = errors.New("failed to read env file")
	ErrUnitNameRequired       = errors.New("unit name is required")
	ErrFailedToStartUnit      = errors.New("failed to start unit")
	ErrFailedToStopUnit       = errors.New("failed to stop unit")
	ErrFailedToRemoveUnit     = errors.New("failed to remove unit")
	ErrFailedToRemoveImage    = errors.New("failed to remove image")
	ErrFailedToStartCommand   = errors.New("failed to start command")
	ErrFailedToOpenStream     = errors.New("failed to open stream")
	ErrFailedToCreateRequest  = errors.New("failed to create request")
	ErrFailedToWatchFile      = errors.New("failed to watch file")
	ErrFailedToWriteReport    = errors.New("failed to write report")
	ErrFailedToInitTelemetry  = errors.New("failed to initialize telemetry")
	ErrBaselineNotSet         = errors.New("baseline is not set")
	ErrBenchmarkInterrupted   = errors.New("benchmark interrupted")
	ErrBenchmarkTimedOut      = errors.New("benchmark timed out")
	ErrBenchmarkUnsuccessful  = errors.New("benchmark did not reach its success phase")
	ErrWorkloadRequired       = errors.New("workload name is required")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
