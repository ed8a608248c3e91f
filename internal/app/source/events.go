package source

import (
	"context"
	"strings"
	"time"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/errors"
	"fastpull/internal/app/phase"
	"fastpull/internal/app/queue"
	"fastpull/internal/config/logger"
)

// TopicTaskStart is the runtime topic emitted when a unit's task starts
const TopicTaskStart = "/tasks/start"

// eventTimeLayout matches the leading "<date> <time> <offset> <zone>" of a ctr events line
const eventTimeLayout = "2006-01-02 15:04:05.999999999 -0700 MST"

// Event is a parsed runtime lifecycle notification
type Event struct {
	Time      time.Time
	Namespace string
	Topic     string
	Payload   string
}

// ParseEvent extracts the timestamp and topic of a lifecycle record.
// The record's read time is used when the line carries no parseable timestamp.
func ParseEvent(rec Record) (Event, bool) {
	fields := strings.Fields(rec.Payload)

	ev := Event{Time: rec.Time}

	topicIdx := -1
	for i, f := range fields {
		if strings.HasPrefix(f, "/") {
			topicIdx = i
			break
		}
	}

	if topicIdx < 0 {
		return Event{}, false
	}

	ev.Topic = fields[topicIdx]

	if topicIdx > 0 {
		ev.Namespace = fields[topicIdx-1]
	}

	if topicIdx+1 < len(fields) {
		ev.Payload = strings.Join(fields[topicIdx+1:], " ")
	}

	if len(fields) >= 4 {
		if t, err := time.Parse(eventTimeLayout, strings.Join(fields[:4], " ")); err == nil {
			ev.Time = t
		}
	}

	return ev, true
}

// Events subscribes to the runtime event stream and derives the unit start time
type Events struct {
	stream   Stream
	queue    *queue.Queue[Record]
	backoff  time.Duration
	pollWait time.Duration
	bus      bus.Bus
	log      logger.Logger
}

// NewEvents creates the lifecycle-event adapter
func NewEvents(stream Stream, backoff, pollWait time.Duration, b bus.Bus, log logger.Logger) *Events {
	return &Events{
		stream:   stream,
		queue:    queue.New[Record](),
		backoff:  backoff,
		pollWait: pollWait,
		bus:      b,
		log:      log.WithComponent("EVENTS"),
	}
}

// Queue exposes the raw record queue
func (e *Events) Queue() *queue.Queue[Record] {
	return e.queue
}

// Read buffers raw records until ctx ends; it may run before the baseline exists
func (e *Events) Read(ctx context.Context) {
	defer guard(e.log, "events reader")

	follow(ctx, e.stream, e.queue, e.backoff, e.log)
}

// Process consumes buffered records and stops after the first task start.
// It must only run once the creation time is recorded.
func (e *Events) Process(ctx context.Context, durations *phase.Durations) error {
	defer guard(e.log, "events processor")

	created, ok := durations.Created()
	if !ok {
		return errors.ErrBaselineNotSet
	}

	for ctx.Err() == nil {
		rec, ok := e.queue.Pop(ctx, e.pollWait)
		if !ok {
			continue
		}

		ev, ok := ParseEvent(rec)
		if !ok || ev.Topic != TopicTaskStart {
			continue
		}

		if !durations.MarkStarted(ev.Time) {
			return nil
		}

		startup, _ := durations.StartupDuration()
		e.log.Info().Str("namespace", ev.Namespace).Msgf("Container task started (startup: %.3fs)", startup)

		e.bus.Publish(bus.Message{
			Type:     bus.EventContainerStarted,
			Data:     bus.ContainerStarted{Elapsed: phase.Elapsed(created, ev.Time), Startup: startup},
			Critical: true,
		})

		return nil
	}

	return nil
}
