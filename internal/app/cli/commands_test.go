package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastpull/internal/app/errors"
	"fastpull/internal/config"
)

func Test_Parse(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, o *Options)
		error error
	}{
		{
			name: "no arguments shows help",
			args: []string{},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, CommandHelp, o.Type)
			},
		},
		{
			name: "help flag",
			args: []string{"--help"},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, CommandHelp, o.Type)
			},
		},
		{
			name: "version flag",
			args: []string{"-v"},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, CommandVersion, o.Type)
			},
		},
		{
			name: "version command",
			args: []string{"version"},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, CommandVersion, o.Type)
			},
		},
		{
			name: "workloads command with config",
			args: []string{"--config", "custom.yaml", "workloads"},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, CommandWorkloads, o.Type)
				assert.Equal(t, "custom.yaml", o.ConfigPath)
			},
		},
		{
			name: "bench with image and defaults",
			args: []string{"bench", "vllm", "--image", "ghcr.io/acme/vllm:1"},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, CommandBench, o.Type)
				assert.Equal(t, "vllm", o.Bench.Workload)
				assert.Equal(t, "ghcr.io/acme/vllm:1", o.Bench.Image)
				assert.Equal(t, config.DefaultSnapshotter, o.Bench.Snapshotter)
				assert.Zero(t, o.Bench.Port)
				assert.Zero(t, o.Bench.Timeout)
				assert.False(t, o.Bench.KeepImage)
			},
		},
		{
			name: "bench with every flag",
			args: []string{
				"bench", "sglang",
				"--image", "img",
				"--snapshotter", "soci",
				"--container-name", "c1",
				"--port", "9000",
				"--model-mount-path", "/mnt/ssd",
				"--env-file", ".env",
				"--log-file", "/tmp/server.log",
				"--output-json", "out.json",
				"--keep-image",
				"--timeout", "90s",
			},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "sglang", o.Bench.Workload)
				assert.Equal(t, config.SnapshotterSOCI, o.Bench.Snapshotter)
				assert.Equal(t, "c1", o.Bench.Container)
				assert.Equal(t, 9000, o.Bench.Port)
				assert.Equal(t, "/mnt/ssd", o.Bench.ModelMountPath)
				assert.Equal(t, ".env", o.Bench.EnvFile)
				assert.Equal(t, "/tmp/server.log", o.Bench.LogFile)
				assert.Equal(t, "out.json", o.OutputJSON)
				assert.True(t, o.Bench.KeepImage)
				assert.Equal(t, 90*time.Second, o.Bench.Timeout)
			},
		},
		{
			name: "bench builds image from repo",
			args: []string{"bench", "vllm", "--registry", "123.dkr.ecr.{region}.amazonaws.com", "--repo", "vllm-app", "--region", "eu-west-1"},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "123.dkr.ecr.eu-west-1.amazonaws.com/vllm-app:latest-nydus", o.Bench.Image)
			},
		},
		{
			name:  "bench without workload",
			args:  []string{"bench"},
			error: errors.ErrWorkloadRequired,
		},
		{
			name:  "repo without registry",
			args:  []string{"bench", "vllm", "--repo", "vllm-app"},
			error: errors.ErrRegistryRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Parse(tt.args)
			if tt.error != nil {
				assert.ErrorIs(t, err, tt.error)
				return
			}

			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func Test_Parse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "image and repo together", args: []string{"bench", "vllm", "--image", "img", "--repo", "r", "--registry", "reg"}},
		{name: "unknown command", args: []string{"deploy"}},
		{name: "unknown flag", args: []string{"bench", "vllm", "--fast"}},
		{name: "bad timeout", args: []string{"bench", "vllm", "--timeout", "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.Error(t, err)
		})
	}
}

func Test_ImageRef(t *testing.T) {
	tests := []struct {
		name        string
		registry    string
		tag         string
		snapshotter string
		expected    string
	}{
		{name: "lazy snapshotter suffix", registry: "reg.io", tag: "v1", snapshotter: "soci", expected: "reg.io/app:v1-soci"},
		{name: "overlayfs uses base tag", registry: "reg.io/", tag: "v1", snapshotter: "overlayfs", expected: "reg.io/app:v1"},
		{name: "native uses base tag", registry: "reg.io", tag: "v1", snapshotter: "native", expected: "reg.io/app:v1"},
		{name: "defaults", registry: "reg.{region}.io", expected: "reg.us-east-1.io/app:latest-nydus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ImageRef(tt.registry, "app", tt.tag, "us-east-1", tt.snapshotter))
		})
	}
}
