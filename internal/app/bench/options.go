package bench

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"fastpull/internal/app/errors"
	"fastpull/internal/config"
)

// Options are the per-run settings given on the command line
type Options struct {
	Workload       string
	Image          string
	Snapshotter    string
	Container      string
	Port           int
	ModelMountPath string
	EnvFile        string
	LogFile        string
	KeepImage      bool
	Timeout        time.Duration
}

// ContainerName returns the default container name of a workload
func ContainerName(workload string) string {
	return workload + "-timing-test"
}

// resolve validates opts and fills unset values from the workload
func (o Options) resolve(w *config.Workload) (Options, error) {
	if strings.TrimSpace(o.Image) == "" {
		return o, errors.ErrImageRequired
	}

	if o.Snapshotter == "" {
		o.Snapshotter = config.DefaultSnapshotter
	}

	if !slices.Contains(config.Snapshotters, o.Snapshotter) {
		return o, fmt.Errorf("%w '%s' (expected one of %s)", errors.ErrInvalidSnapshotter, o.Snapshotter, strings.Join(config.Snapshotters, ", "))
	}

	if o.Port == 0 {
		o.Port = w.Port
	}

	if o.Port < 1 || o.Port > 65535 {
		return o, errors.ErrInvalidPort
	}

	if o.Container == "" {
		o.Container = ContainerName(w.Name)
	}

	if o.Timeout <= 0 {
		o.Timeout = w.Timeout
	}

	o.Workload = w.Name

	return o, nil
}
