package lifecycle

import (
	"fmt"
	"maps"
	"slices"

	"fastpull/internal/config"
)

// Unit describes the container a benchmark run creates
type Unit struct {
	Name           string
	Image          string
	Snapshotter    string
	Port           int
	ContainerPort  int
	ModelMountPath string
	Env            map[string]string
}

// Commands builds the runtime command lines for a configured host
type Commands struct {
	binary    string
	events    string
	sudo      bool
	namespace string
	gpus      string
}

// NewCommands creates a command builder from the runtime settings
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{
		binary:    cfg.Runtime.Binary,
		events:    cfg.Runtime.EventsBinary,
		sudo:      cfg.Runtime.Sudo,
		namespace: cfg.Runtime.Namespace,
		gpus:      cfg.Runtime.GPUs,
	}
}

// RuntimeSnapshotter maps a benchmark snapshotter to the name nerdctl expects
func RuntimeSnapshotter(snapshotter string) string {
	if snapshotter == config.SnapshotterEStargz {
		return config.SnapshotterStargz
	}

	return snapshotter
}

// Run returns the detached create-and-start command of a unit
func (c *Commands) Run(u Unit) []string {
	args := []string{
		"run",
		"--name", u.Name,
	}

	if c.gpus != "" {
		args = append(args, "--gpus", c.gpus)
	}

	args = append(args, "--detach", "--publish", fmt.Sprintf("%d:%d", u.Port, u.ContainerPort))

	if u.ModelMountPath != "" {
		args = append(args,
			"--volume", u.ModelMountPath+"/huggingface:/workspace/huggingface",
			"--volume", u.ModelMountPath+"/hf-xet-cache:/workspace/hf-xet-cache",
		)
	}

	for _, key := range slices.Sorted(maps.Keys(u.Env)) {
		args = append(args, "--env", key+"="+u.Env[key])
	}

	args = append(args, u.Image)

	return c.runtime(u.Snapshotter, args...)
}

// Stop returns the stop command of a named unit
func (c *Commands) Stop(snapshotter, name string) []string {
	return c.runtime(snapshotter, "stop", name)
}

// Remove returns the remove command of a named unit
func (c *Commands) Remove(snapshotter, name string, force bool) []string {
	if force {
		return c.runtime(snapshotter, "rm", "-f", name)
	}

	return c.runtime(snapshotter, "rm", name)
}

// RemoveImage returns the image removal command
func (c *Commands) RemoveImage(snapshotter, ref string) []string {
	return c.runtime(snapshotter, "rmi", ref)
}

// ImageIDs returns the command listing IDs of a local image
func (c *Commands) ImageIDs(snapshotter, image string) []string {
	return c.runtime(snapshotter, "images", "--format", "{{.ID}}", image)
}

// Logs returns the command following the combined output of a unit
func (c *Commands) Logs(snapshotter, name string) []string {
	return c.runtime(snapshotter, "logs", "-f", name)
}

// Events returns the command streaming runtime lifecycle events
func (c *Commands) Events() []string {
	return c.privileged(c.events, "events")
}

// ClearSOCIState returns the command wiping the SOCI snapshotter state directory
func (c *Commands) ClearSOCIState() []string {
	return c.privileged("rm", "-rf", config.SOCIStateDir)
}

// RestartSOCI returns the command restarting the SOCI snapshotter service
func (c *Commands) RestartSOCI() []string {
	return c.privileged("systemctl", "restart", config.SOCIService)
}

func (c *Commands) runtime(snapshotter string, args ...string) []string {
	global := []string{}

	if c.namespace != "" {
		global = append(global, "--namespace", c.namespace)
	}

	if snapshotter != "" {
		global = append(global, "--snapshotter", RuntimeSnapshotter(snapshotter))
	}

	return c.privileged(c.binary, append(global, args...)...)
}

func (c *Commands) privileged(binary string, args ...string) []string {
	argv := make([]string, 0, len(args)+2)

	if c.sudo {
		argv = append(argv, "sudo")
	}

	argv = append(argv, binary)

	return append(argv, args...)
}
