package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// MessageType represents the type of message
type MessageType string

// Event types
const (
	EventRunStarted        MessageType = "run_started"
	EventPreflightKill     MessageType = "preflight_kill"
	EventPreflightComplete MessageType = "preflight_complete"
	EventContainerCreated  MessageType = "container_created"
	EventContainerStarted  MessageType = "container_started"
	EventProbeArmed        MessageType = "probe_armed"
	EventPhaseDetected     MessageType = "phase_detected"
	EventLogLine           MessageType = "log_line"
	EventStateChanged      MessageType = "state_changed"
	EventSignal            MessageType = "signal"
	EventTeardown          MessageType = "teardown"
	EventRunFinished       MessageType = "run_finished"
)

// Message represents a bus message
type Message struct {
	Type      MessageType
	Timestamp time.Time
	Data      interface{}
	Critical  bool
}

// RunStarted describes the run that is about to begin
type RunStarted struct {
	RunID       string
	Workload    string
	Image       string
	Snapshotter string
	Container   string
}

// PreflightKill indicates a stale follower process was killed
type PreflightKill struct {
	Name string
	PID  int
}

// PreflightComplete indicates the preflight scan has finished
type PreflightComplete struct {
	Killed int
}

// ContainerCreated marks the baseline: unit creation was issued
type ContainerCreated struct {
	Container string
}

// ContainerStarted reports the runtime's task start event
type ContainerStarted struct {
	Elapsed float64
	Startup float64
}

// ProbeArmed indicates the health probe began polling
type ProbeArmed struct {
	URL string
}

// PhaseDetected is a newly recorded timeline phase
type PhaseDetected struct {
	Name    string
	Elapsed float64
}

// LogLine is a raw workload log line with its elapsed read time
type LogLine struct {
	Elapsed float64
	Line    string
}

// StateChanged is a monitor state transition
type StateChanged struct {
	From string
	To   string
}

// Signal contains information about a received OS signal
type Signal struct {
	Name string
}

// Teardown indicates the unit is being stopped and removed
type Teardown struct {
	Container string
}

// RunFinished carries the terminal outcome
type RunFinished struct {
	Outcome string
	Total   float64
}

// Bus handles pub/sub messaging
type Bus interface {
	Subscribe(ctx context.Context) <-chan Message
	Publish(msg Message)
	Close()
}

// bus implements the Bus interface with pub/sub messaging
type bus struct {
	cfg         *config.Config
	subscribers []chan Message
	mu          sync.RWMutex
	closed      bool
	log         logger.Logger
}

// New creates a new Bus
func New(cfg *config.Config, log logger.Logger) Bus {
	return &bus{
		cfg:         cfg,
		subscribers: make([]chan Message, 0),
		log:         log,
	}
}

// Subscribe creates a new subscription channel
func (b *bus) Subscribe(ctx context.Context) <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, b.cfg.Logs.Buffer)

	if b.closed {
		close(ch)
		return ch
	}

	b.subscribers = append(b.subscribers, ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(ch)
	}()

	return ch
}

// Publish sends a message to all subscribers; non-critical messages are dropped for slow subscribers
func (b *bus) Publish(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	msg.Timestamp = time.Now()

	if b.log != nil && msg.Type != EventLogLine {
		b.log.Debug().Msgf("%s %s", msg.Type, formatData(msg.Data))
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			if msg.Critical {
				go func(c chan Message, m Message) {
					defer func() { recover() }()

					c <- m
				}(ch, msg)
			}
		}
	}
}

// Close closes all subscriber channels
func (b *bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, ch := range b.subscribers {
		close(ch)
	}

	b.subscribers = nil
}

func (b *bus) unsubscribe(ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)

			close(ch)

			break
		}
	}
}

func formatData(data interface{}) string {
	switch d := data.(type) {
	case RunStarted:
		return fmt.Sprintf("{run: %s, workload: %s, image: %s}", d.RunID, d.Workload, d.Image)
	case PreflightKill:
		return fmt.Sprintf("{pid: %d, name: %s}", d.PID, d.Name)
	case PreflightComplete:
		return fmt.Sprintf("{killed: %d}", d.Killed)
	case ContainerCreated:
		return fmt.Sprintf("{container: %s}", d.Container)
	case ContainerStarted:
		return fmt.Sprintf("{elapsed: %.3f, startup: %.3f}", d.Elapsed, d.Startup)
	case ProbeArmed:
		return fmt.Sprintf("{url: %s}", d.URL)
	case PhaseDetected:
		return fmt.Sprintf("{phase: %s, elapsed: %.3f}", d.Name, d.Elapsed)
	case StateChanged:
		return fmt.Sprintf("{from: %s, to: %s}", d.From, d.To)
	case Signal:
		return fmt.Sprintf("{signal: %s}", d.Name)
	case Teardown:
		return fmt.Sprintf("{container: %s}", d.Container)
	case RunFinished:
		return fmt.Sprintf("{outcome: %s, total: %.3f}", d.Outcome, d.Total)
	default:
		return fmt.Sprintf("%+v", data)
	}
}

// NoOp returns a no-op bus for when messaging is disabled
func NoOp() Bus {
	return &noOpBus{}
}

// noOpBus implements Bus interface with no-op methods for testing
type noOpBus struct{}

func (n *noOpBus) Subscribe(ctx context.Context) <-chan Message {
	ch := make(chan Message)

	go func() {
		<-ctx.Done()
		close(ch)
	}()

	return ch
}

func (n *noOpBus) Publish(msg Message) {}
func (n *noOpBus) Close()              {}
