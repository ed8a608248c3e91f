package config

import "time"

// app constants
const (
	AppName        = "fastpull"
	AppDescription = "container startup benchmark for inference servers"

	DefaultConfigFile = "fastpull.yaml"

	LogLevel  = "info"
	LogFormat = "console"

	Version = "0.3.0"
)

// phase constants
const (
	PhaseFirstLog    = "first_log"
	PhaseServerReady = "server_ready"

	GlobPrefix = "glob:"
)

// probe constants
const (
	ProbeInterval       = 100 * time.Millisecond
	ProbeRequestTimeout = 5 * time.Second
	ProbeDefaultCap     = 20 * time.Minute
)

// monitor constants
const (
	MonitorPollWait = 1 * time.Second
	FollowBackoff   = 100 * time.Millisecond
	DefaultTimeout  = 20 * time.Minute

	EventsSettle  = 500 * time.Millisecond
	StartupSettle = 2 * time.Second

	LogsBufferSize = 1024
)

// preflight constants
const (
	PreflightWorkers     = 4
	PreflightKillTimeout = 5 * time.Second
)

// runtime constants
const (
	RuntimeBinary = "nerdctl"
	EventsBinary  = "ctr"

	StopTimeout    = 30 * time.Second
	RemoveTimeout  = 60 * time.Second
	TeardownSettle = 2 * time.Second

	DefaultPort          = 8080
	DefaultContainerPort = 8000
	DefaultGPUs          = "all"
)

// snapshotter constants
const (
	SnapshotterNydus     = "nydus"
	SnapshotterOverlayFS = "overlayfs"
	SnapshotterNative    = "native"
	SnapshotterSOCI      = "soci"
	SnapshotterEStargz   = "estargz"
	SnapshotterStargz    = "stargz"

	DefaultSnapshotter = SnapshotterNydus

	SOCIStateDir = "/var/lib/soci-snapshotter-grpc/"
	SOCIService  = "soci-snapshotter-grpc.service"
)

// Snapshotters lists the accepted --snapshotter values
var Snapshotters = []string{
	SnapshotterNydus,
	SnapshotterOverlayFS,
	SnapshotterNative,
	SnapshotterSOCI,
	SnapshotterEStargz,
}
