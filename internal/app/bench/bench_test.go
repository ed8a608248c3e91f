package bench

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/errors"
	"fastpull/internal/app/lifecycle"
	"fastpull/internal/app/monitor"
	"fastpull/internal/app/phase"
	"fastpull/internal/app/preflight"
	"fastpull/internal/app/report"
	"fastpull/internal/app/shutdown"
	"fastpull/internal/app/source"
	"fastpull/internal/app/telemetry"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

const taskStartScript = `sleep 0.2; echo 'default /tasks/start {"container_id":"c"}'; sleep 5`

type harness struct {
	cfg        *config.Config
	controller *lifecycle.MockController
	preflight  *preflight.MockPreflight
	reporter   *telemetry.MockReporter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := config.DefaultConfig()
	cfg.Monitor.PollWait = 20 * time.Millisecond
	cfg.Monitor.Backoff = 20 * time.Millisecond
	cfg.Monitor.EventsSettle = 50 * time.Millisecond
	cfg.Monitor.StartupSettle = 10 * time.Millisecond
	cfg.Probe.Interval = 50 * time.Millisecond
	cfg.Probe.RequestTimeout = time.Second
	cfg.Workloads["plain"] = &config.Workload{
		Timeout: time.Second,
		Phases: []config.Phase{
			{Name: "sglang_init", Patterns: []string{"starting sglang"}},
			{Name: "weights_download", Patterns: []string{"load weight begin"}},
		},
	}
	cfg.Workloads["served"] = &config.Workload{
		Readiness:  true,
		HealthPath: "health",
		Timeout:    10 * time.Second,
		Phases: []config.Phase{
			{Name: "sglang_init", Patterns: []string{"starting sglang"}},
		},
	}
	cfg.ApplyDefaults()

	return &harness{
		cfg:        cfg,
		controller: lifecycle.NewMockController(ctrl),
		preflight:  preflight.NewMockPreflight(ctrl),
		reporter:   telemetry.NewMockReporter(ctrl),
	}
}

func (h *harness) runner() Runner {
	log := logger.NewNop()
	probe := source.NewProbe(h.cfg, source.NewHealthCheck(), log)
	m := monitor.NewMonitor(h.cfg, probe, bus.NoOp(), log)

	return NewRunner(h.cfg, phase.NewFactory(h.cfg), h.controller, m, h.preflight, h.reporter, bus.NoOp(), log)
}

// expectSetup registers the calls every run makes before the unit starts
func (h *harness) expectSetup() {
	h.preflight.EXPECT().Cleanup(gomock.Any(), gomock.Any()).Return(nil, nil)
	h.controller.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil)
	h.controller.EXPECT().EventsCommand().Return(script(taskStartScript))
}

func script(s string) []string {
	return []string{"sh", "-c", s}
}

func Test_Runner_RejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		error error
	}{
		{name: "unknown workload", opts: Options{Workload: "nope", Image: "img"}, error: errors.ErrWorkloadNotFound},
		{name: "missing image", opts: Options{Workload: "plain"}, error: errors.ErrImageRequired},
		{name: "bad snapshotter", opts: Options{Workload: "plain", Image: "img", Snapshotter: "zfs"}, error: errors.ErrInvalidSnapshotter},
		{name: "missing env file", opts: Options{Workload: "plain", Image: "img", EnvFile: "/nonexistent/.env"}, error: errors.ErrFailedToReadEnvFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			rep, err := h.runner().Run(context.Background(), tt.opts)

			assert.ErrorIs(t, err, tt.error)
			assert.Nil(t, rep)
		})
	}
}

func Test_Runner_TimesOutWithoutReadiness(t *testing.T) {
	h := newHarness(t)
	h.expectSetup()

	h.controller.EXPECT().ResetSnapshotter(gomock.Any(), config.SnapshotterNydus).Return(nil).Times(2)
	h.controller.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u lifecycle.Unit) error {
		assert.Equal(t, "plain-timing-test", u.Name)
		assert.Equal(t, "img", u.Image)
		assert.Equal(t, config.DefaultContainerPort, u.ContainerPort)
		return nil
	})
	h.controller.EXPECT().LogsCommand(gomock.Any()).Return(script("echo 'Starting SGLang'; echo 'Load weight begin'; sleep 5"))
	h.controller.EXPECT().Stop(gomock.Any(), gomock.Any()).Return(nil)
	h.controller.EXPECT().RemoveImage(gomock.Any(), gomock.Any()).Return(nil)
	h.reporter.EXPECT().CaptureMessage(gomock.Any(), gomock.Any()).Times(0)

	rep, err := h.runner().Run(context.Background(), Options{Workload: "plain", Image: "img", Timeout: time.Second})
	require.NoError(t, err)

	assert.Equal(t, string(shutdown.ReasonTimedOut), rep.Outcome)
	assert.True(t, rep.Successful)
	assert.False(t, rep.SupportsHealthPolling)
	assert.Equal(t, report.ExitSuccess, rep.ExitCode())
	assert.NotEmpty(t, rep.RunID)

	for _, name := range []string{config.PhaseFirstLog, "sglang_init", "weights_download"} {
		_, ok := rep.Phase(name)
		assert.True(t, ok, name)
	}

	require.NotNil(t, rep.ContainerStartupDuration)
	assert.Greater(t, *rep.ContainerStartupDuration, 0.0)
	assert.Nil(t, rep.HealthReadyTime)
	assert.GreaterOrEqual(t, rep.TotalTime, 1.0)
}

func Test_Runner_SucceedsOnReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	h := newHarness(t)
	h.expectSetup()

	h.controller.EXPECT().ResetSnapshotter(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.controller.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	h.controller.EXPECT().LogsCommand(gomock.Any()).Return(script("echo 'Starting SGLang'; sleep 5"))
	h.controller.EXPECT().Stop(gomock.Any(), gomock.Any()).Return(nil)
	h.controller.EXPECT().RemoveImage(gomock.Any(), gomock.Any()).Times(0)

	start := time.Now()
	rep, err := h.runner().Run(context.Background(), Options{Workload: "served", Image: "img", Port: port, KeepImage: true})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, string(shutdown.ReasonSucceeded), rep.Outcome)
	assert.True(t, rep.Successful)
	assert.True(t, rep.SupportsHealthPolling)
	assert.Equal(t, report.ExitSuccess, rep.ExitCode())

	ready, ok := rep.Phase(config.PhaseServerReady)
	require.True(t, ok)
	require.NotNil(t, rep.HealthReadyTime)
	assert.InDelta(t, ready, *rep.HealthReadyTime, 0.001)
}

func Test_Runner_StartFailure(t *testing.T) {
	h := newHarness(t)
	h.expectSetup()

	startErr := fmt.Errorf("%w 'plain-timing-test': exit status 1", errors.ErrFailedToStartUnit)

	h.controller.EXPECT().ResetSnapshotter(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.controller.EXPECT().Start(gomock.Any(), gomock.Any()).Return(startErr)
	h.controller.EXPECT().LogsCommand(gomock.Any()).Times(0)
	h.controller.EXPECT().Stop(gomock.Any(), gomock.Any()).Return(nil)
	h.reporter.EXPECT().CaptureError(startErr, gomock.Any())
	h.reporter.EXPECT().CaptureMessage(gomock.Any(), gomock.Any()).Times(0)

	rep, err := h.runner().Run(context.Background(), Options{Workload: "plain", Image: "img", KeepImage: true})

	assert.ErrorIs(t, err, errors.ErrFailedToStartUnit)
	require.NotNil(t, rep)
	assert.Equal(t, string(shutdown.ReasonFailed), rep.Outcome)
	assert.False(t, rep.Successful)
	assert.Equal(t, report.ExitFailure, rep.ExitCode())
	assert.Contains(t, rep.Error, "failed to start unit")
	for _, entry := range rep.Phases {
		assert.Nil(t, entry.Elapsed, entry.Name)
	}
}

func Test_Runner_Interrupted(t *testing.T) {
	h := newHarness(t)
	h.expectSetup()

	h.controller.EXPECT().ResetSnapshotter(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	h.controller.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	h.controller.EXPECT().LogsCommand(gomock.Any()).Return(script("echo 'Starting SGLang'; sleep 5"))
	h.controller.EXPECT().Stop(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ lifecycle.Unit) error {
		assert.NoError(t, ctx.Err())
		return nil
	})
	h.controller.EXPECT().RemoveImage(gomock.Any(), gomock.Any()).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(400*time.Millisecond, cancel)

	rep, err := h.runner().Run(ctx, Options{Workload: "plain", Image: "img", Timeout: 10 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, string(shutdown.ReasonInterrupted), rep.Outcome)
	assert.Equal(t, report.ExitInterrupted, rep.ExitCode())
	assert.Less(t, rep.TotalTime, 5.0)
}

func Test_Runner_ReadsLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("Starting SGLang\nLoad weight begin\n"), 0o644))

	h := newHarness(t)
	h.expectSetup()

	h.controller.EXPECT().ResetSnapshotter(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.controller.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	h.controller.EXPECT().LogsCommand(gomock.Any()).Times(0)
	h.controller.EXPECT().Stop(gomock.Any(), gomock.Any()).Return(nil)

	rep, err := h.runner().Run(context.Background(), Options{
		Workload:  "plain",
		Image:     "img",
		LogFile:   path,
		KeepImage: true,
		Timeout:   500 * time.Millisecond,
	})
	require.NoError(t, err)

	_, ok := rep.Phase("weights_download")
	assert.True(t, ok)
	assert.True(t, rep.Successful)
}
