package source

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastpull/internal/app/errors"
	"fastpull/internal/app/queue"
	"fastpull/internal/config/logger"
)

func Test_CommandStream_Open(t *testing.T) {
	tests := []struct {
		name  string
		argv  []string
		error error
	}{
		{name: "empty command", argv: nil, error: errors.ErrFailedToOpenStream},
		{name: "missing binary", argv: []string{"/nonexistent/fastpull-binary"}, error: errors.ErrFailedToStartCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewCommandStream(tt.argv).Open(context.Background())

			assert.ErrorIs(t, err, tt.error)
			assert.Nil(t, reader)
		})
	}
}

func Test_CommandStream_CombinedOutput(t *testing.T) {
	q := queue.New[Record]()
	stream := NewCommandStream([]string{"sh", "-c", "echo out; echo err 1>&2; printf tail"})

	follow(context.Background(), stream, q, 10*time.Millisecond, logger.NewNop())

	assert.ElementsMatch(t, []string{"out", "err", "tail"}, drain(q))
}

func Test_CommandStream_CancelKillsProducer(t *testing.T) {
	q := queue.New[Record]()
	stream := NewCommandStream([]string{"sh", "-c", "echo started; exec sleep 30"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		follow(ctx, stream, q, 100*time.Millisecond, logger.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("command follower did not stop promptly")
	}
}

func Test_commandReader_Exited(t *testing.T) {
	reader, err := NewCommandStream([]string{"true"}).Open(context.Background())
	require.NoError(t, err)
	defer reader.Close()

	require.Eventually(t, reader.Exited, 5*time.Second, 10*time.Millisecond)

	_, err = reader.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}
