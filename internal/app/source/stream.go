package source

//go:generate mockgen -source=stream.go -destination=stream_mock.go -package=source

import (
	"context"
	"io"
	"strings"
	"time"

	"fastpull/internal/app/errors"
	"fastpull/internal/app/queue"
	"fastpull/internal/config/logger"
)

// Record is a raw line together with the time it was read
type Record struct {
	Time    time.Time
	Payload string
}

// LineReader yields lines from an external producer.
// ReadLine returns io.EOF when no data is available; Exited tells whether more can ever arrive.
type LineReader interface {
	ReadLine() (string, error)
	Exited() bool
	Close() error
}

// Stream opens a line reader over an external producer
type Stream interface {
	Open(ctx context.Context) (LineReader, error)
}

// follow copies non-empty lines into q until ctx ends, the producer exits or a read fails
func follow(ctx context.Context, stream Stream, q *queue.Queue[Record], backoff time.Duration, log logger.Logger) {
	reader, err := stream.Open(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open stream")
		return
	}

	stop := context.AfterFunc(ctx, func() { reader.Close() })
	defer func() {
		stop()
		reader.Close()
	}()

	for ctx.Err() == nil {
		line, err := reader.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			if errors.Is(err, io.EOF) {
				if reader.Exited() {
					log.Debug().Msg("Producer exited")
					return
				}

				if !sleep(ctx, backoff) {
					return
				}

				continue
			}

			log.Warn().Err(err).Msg("Stream read failed")

			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		q.Push(Record{Time: time.Now(), Payload: line})
	}
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// guard turns a panic in an adapter goroutine into a logged termination
func guard(log logger.Logger, name string) {
	if r := recover(); r != nil {
		log.Error().Msgf("%s adapter panicked: %v", name, r)
	}
}
