package source

import (
	"context"
	"time"

	"fastpull/internal/app/queue"
	"fastpull/internal/config/logger"
)

// Logs follows the workload's combined output into the log queue
type Logs struct {
	stream  Stream
	queue   *queue.Queue[Record]
	backoff time.Duration
	log     logger.Logger
}

// NewLogs creates the log-line adapter
func NewLogs(stream Stream, backoff time.Duration, log logger.Logger) *Logs {
	return &Logs{
		stream:  stream,
		queue:   queue.New[Record](),
		backoff: backoff,
		log:     log.WithComponent("LOGS"),
	}
}

// Queue exposes the log line queue
func (l *Logs) Queue() *queue.Queue[Record] {
	return l.queue
}

// Run follows the stream until ctx ends or the producer exits
func (l *Logs) Run(ctx context.Context) {
	defer guard(l.log, "logs")

	follow(ctx, l.stream, l.queue, l.backoff, l.log)
}
