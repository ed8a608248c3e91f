package bus

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Logs.Buffer = 10

	return cfg
}

func Test_Bus_PublishSubscribe(t *testing.T) {
	b := New(testConfig(), nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)

	b.Publish(Message{
		Type:     EventPhaseDetected,
		Data:     PhaseDetected{Name: "weights_loaded", Elapsed: 20.5},
		Critical: true,
	})

	select {
	case msg := <-ch:
		assert.Equal(t, EventPhaseDetected, msg.Type)
		assert.False(t, msg.Timestamp.IsZero())

		data, ok := msg.Data.(PhaseDetected)
		assert.True(t, ok)
		assert.Equal(t, "weights_loaded", data.Name)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected message")
	}
}

func Test_Bus_MultipleSubscribers(t *testing.T) {
	b := New(testConfig(), nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := b.Subscribe(ctx)
	ch2 := b.Subscribe(ctx)

	b.Publish(Message{Type: EventStateChanged, Data: StateChanged{From: "awaiting_first_log", To: "monitoring"}})

	for _, ch := range []<-chan Message{ch1, ch2} {
		select {
		case msg := <-ch:
			assert.Equal(t, EventStateChanged, msg.Type)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Expected message on subscriber")
		}
	}
}

func Test_Bus_Unsubscribe_OnContextCancel(t *testing.T) {
	b := New(testConfig(), nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "Channel should be closed after context cancel")
	case <-time.After(time.Second):
		t.Fatal("Channel was not closed")
	}
}

func Test_Bus_Close(t *testing.T) {
	b := New(testConfig(), nil)

	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok, "Channel should be closed")

	b.Publish(Message{Type: EventTeardown})

	late := b.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok, "Subscribing after close yields a closed channel")
}

func Test_Bus_NonCriticalDroppedWhenFull(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logs.Buffer = 1

	b := New(cfg, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)

	b.Publish(Message{Type: EventLogLine, Data: LogLine{Line: "a"}})
	b.Publish(Message{Type: EventLogLine, Data: LogLine{Line: "b"}})

	msg := <-ch
	assert.Equal(t, "a", msg.Data.(LogLine).Line)

	select {
	case <-ch:
		t.Fatal("second non-critical message should be dropped")
	case <-time.After(20 * time.Millisecond):
	}
}

func Test_Bus_CriticalMessage_BlockingSubscriber(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logs.Buffer = 1

	b := New(cfg, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)

	b.Publish(Message{Type: EventLogLine, Critical: false})
	b.Publish(Message{Type: EventPhaseDetected, Critical: true})

	received := 0
	timeout := time.After(200 * time.Millisecond)

loop:
	for {
		select {
		case <-ch:
			received++
			if received >= 2 {
				break loop
			}
		case <-timeout:
			break loop
		}
	}

	assert.Equal(t, 2, received)
}

func Test_Bus_Publish_LogsNotices(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = logger.JSONFormat

	var buf bytes.Buffer

	b := New(cfg, logger.NewLoggerWithOutput(cfg, &buf))
	defer b.Close()

	b.Publish(Message{Type: EventSignal, Data: Signal{Name: "interrupt"}})
	b.Publish(Message{Type: EventLogLine, Data: LogLine{Line: "very noisy"}})

	assert.Contains(t, buf.String(), "signal {signal: interrupt}")
	assert.NotContains(t, buf.String(), "very noisy")
}

func Test_NoOp(t *testing.T) {
	b := NoOp()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)

	b.Publish(Message{Type: EventRunStarted})

	select {
	case <-ch:
		t.Fatal("NoOp should not deliver messages")
	case <-time.After(10 * time.Millisecond):
	}

	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	b.Close()
}

func Test_FormatData(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		contains string
	}{
		{name: "RunStarted", data: RunStarted{RunID: "abc", Workload: "vllm"}, contains: "vllm"},
		{name: "PreflightKill", data: PreflightKill{Name: "nerdctl", PID: 42}, contains: "pid: 42"},
		{name: "PreflightComplete", data: PreflightComplete{Killed: 2}, contains: "killed: 2"},
		{name: "ContainerCreated", data: ContainerCreated{Container: "bench"}, contains: "bench"},
		{name: "ContainerStarted", data: ContainerStarted{Elapsed: 1.5, Startup: 1.25}, contains: "startup: 1.250"},
		{name: "ProbeArmed", data: ProbeArmed{URL: "http://localhost:8080/health"}, contains: "/health"},
		{name: "PhaseDetected", data: PhaseDetected{Name: "first_log", Elapsed: 3}, contains: "first_log"},
		{name: "StateChanged", data: StateChanged{From: "monitoring", To: "stopping"}, contains: "stopping"},
		{name: "Signal", data: Signal{Name: "terminated"}, contains: "terminated"},
		{name: "Teardown", data: Teardown{Container: "bench"}, contains: "bench"},
		{name: "RunFinished", data: RunFinished{Outcome: "timed_out"}, contains: "timed_out"},
		{name: "Unknown", data: struct{ Foo string }{Foo: "bar"}, contains: "bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatData(tt.data), tt.contains)
		})
	}
}
