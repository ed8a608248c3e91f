package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fastpull/internal/app/bench"
	"fastpull/internal/app/errors"
	"fastpull/internal/config"
)

// CommandType represents the type of CLI command
type CommandType int

// Command type values
const (
	CommandHelp CommandType = iota
	CommandBench
	CommandWorkloads
	CommandVersion
)

// DefaultTag is the image tag used with --repo when --tag is not given
const DefaultTag = "latest"

// Options contains the parsed command-line arguments
type Options struct {
	Type       CommandType
	ConfigPath string
	Bench      bench.Options
	Registry   string
	Repo       string
	Tag        string
	Region     string
	OutputJSON string
}

// rootFlags holds flag values for the root command
type rootFlags struct {
	version bool
}

// Parse parses command-line args and returns an Options struct
func Parse(args []string) (*Options, error) {
	result := &Options{Type: CommandHelp}

	var flags rootFlags

	root := buildRootCommand(result, &flags)
	root.AddCommand(
		buildBenchCommand(result),
		buildWorkloadsCommand(result),
		buildVersionCommand(result),
	)

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	if flags.version {
		result.Type = CommandVersion
	}

	if result.Type == CommandBench {
		if err := result.resolveImage(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// buildRootCommand creates the root cobra command
func buildRootCommand(result *Options, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Time the startup of inference server containers",
		Long: `fastpull measures how long a containerized inference server takes to become
useful: container start, first log line, every loading phase and HTTP readiness.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandHelp
		},
	}

	cmd.PersistentFlags().StringVarP(&result.ConfigPath, "config", "c", "", "Path to the configuration file (default "+config.DefaultConfigFile+")")
	cmd.Flags().BoolVarP(&flags.version, "version", "v", false, "Show version information")

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		result.Type = CommandHelp
	})

	return cmd
}

// buildBenchCommand creates the bench subcommand
func buildBenchCommand(result *Options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:     "bench <workload>",
		Aliases: []string{"b"},
		Short:   "Benchmark the startup of a workload",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.ErrWorkloadRequired
			}

			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandBench
			result.Bench.Workload = args[0]
			result.Bench.Timeout = timeout
		},
	}

	f := cmd.Flags()
	f.StringVar(&result.Bench.Image, "image", "", "Full container image to test")
	f.StringVar(&result.Repo, "repo", "", "Repository name; the image is built from --registry, --repo and --tag")
	f.StringVar(&result.Registry, "registry", "", "Registry host for --repo; {region} is replaced by --region")
	f.StringVar(&result.Tag, "tag", DefaultTag, "Image tag base; the snapshotter suffix is appended")
	f.StringVar(&result.Region, "region", "us-east-1", "Region substituted into --registry")
	f.StringVar(&result.Bench.Container, "container-name", "", "Name of the test container (default <workload>-timing-test)")
	f.StringVar(&result.Bench.Snapshotter, "snapshotter", config.DefaultSnapshotter, "Snapshotter: "+strings.Join(config.Snapshotters, ", "))
	f.IntVarP(&result.Bench.Port, "port", "p", 0, "Local port to publish (default from workload)")
	f.StringVar(&result.Bench.ModelMountPath, "model-mount-path", "", "Local directory mounted for model storage")
	f.StringVar(&result.Bench.EnvFile, "env-file", "", "File of KEY=VALUE pairs passed to the container")
	f.StringVar(&result.Bench.LogFile, "log-file", "", "Follow this file instead of the container logs")
	f.StringVarP(&result.OutputJSON, "output-json", "o", "", "Write the report to this JSON file")
	f.BoolVar(&result.Bench.KeepImage, "keep-image", false, "Don't remove the image after the run")
	f.DurationVar(&timeout, "timeout", 0, "Monitoring timeout (default from workload)")

	cmd.MarkFlagsMutuallyExclusive("image", "repo")

	return cmd
}

// buildWorkloadsCommand creates the workloads subcommand
func buildWorkloadsCommand(result *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "workloads",
		Aliases: []string{"w", "list"},
		Short:   "List configured workloads and their phases",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandWorkloads
		},
	}
}

// buildVersionCommand creates the version subcommand
func buildVersionCommand(result *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandVersion
		},
	}
}

// resolveImage builds the image reference from --registry, --repo and --tag when --image is not set
func (o *Options) resolveImage() error {
	if o.Bench.Image != "" || o.Repo == "" {
		return nil
	}

	if o.Registry == "" {
		return errors.ErrRegistryRequired
	}

	o.Bench.Image = ImageRef(o.Registry, o.Repo, o.Tag, o.Region, o.Bench.Snapshotter)

	return nil
}

// ImageRef returns <registry>/<repo>:<tag>[-<snapshotter>]. Plain layer snapshotters use the base tag.
func ImageRef(registry, repo, tag, region, snapshotter string) string {
	registry = strings.TrimSuffix(strings.ReplaceAll(registry, "{region}", region), "/")

	if tag == "" {
		tag = DefaultTag
	}

	if snapshotter == "" {
		snapshotter = config.DefaultSnapshotter
	}

	if snapshotter != config.SnapshotterOverlayFS && snapshotter != config.SnapshotterNative {
		tag = fmt.Sprintf("%s-%s", tag, snapshotter)
	}

	return fmt.Sprintf("%s/%s:%s", registry, repo, tag)
}
