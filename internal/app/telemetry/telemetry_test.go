package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastpull/internal/app/errors"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

type captured struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captured) beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)

	return nil
}

func (c *captured) all() []*sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*sentry.Event(nil), c.events...)
}

func newCapturing(t *testing.T) (Reporter, *captured) {
	t.Helper()

	c := &captured{}
	r, err := newSentryReporter(sentry.ClientOptions{
		Dsn:        "https://public@sentry.example.com/1",
		BeforeSend: c.beforeSend,
	}, logger.NewNop())
	require.NoError(t, err)

	return r, c
}

func Test_NewReporter(t *testing.T) {
	tests := []struct {
		name  string
		dsn   string
		noop  bool
		error error
	}{
		{name: "no dsn", noop: true},
		{name: "valid dsn", dsn: "https://public@sentry.example.com/1"},
		{name: "invalid dsn", dsn: "::not a dsn", error: errors.ErrFailedToInitTelemetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Telemetry.DSN = tt.dsn

			r, err := NewReporter(cfg, logger.NewNop())
			if tt.error != nil {
				assert.ErrorIs(t, err, tt.error)
				return
			}

			require.NoError(t, err)
			_, isNoop := r.(noOpReporter)
			assert.Equal(t, tt.noop, isNoop)
		})
	}
}

func Test_Sentry_CaptureError(t *testing.T) {
	r, c := newCapturing(t)

	r.CaptureError(errors.ErrFailedToStartUnit, map[string]string{"workload": "vllm"})
	r.CaptureError(nil, nil)
	r.Flush(time.Second)

	events := c.all()
	require.Len(t, events, 1)
	assert.Equal(t, "vllm", events[0].Tags["workload"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, errors.ErrFailedToStartUnit.Error(), events[0].Exception[0].Value)
}

func Test_Sentry_CaptureMessage(t *testing.T) {
	r, c := newCapturing(t)

	r.CaptureMessage("benchmark timed_out", map[string]string{"snapshotter": "nydus"})
	r.Flush(time.Second)

	events := c.all()
	require.Len(t, events, 1)
	assert.Equal(t, "benchmark timed_out", events[0].Message)
	assert.Equal(t, sentry.LevelWarning, events[0].Level)
	assert.Equal(t, "nydus", events[0].Tags["snapshotter"])
}

func Test_NoOp(t *testing.T) {
	r := NoOp()

	r.CaptureError(errors.ErrFailedToStartUnit, nil)
	r.CaptureMessage("x", nil)
	assert.True(t, r.Flush(time.Millisecond))
}
