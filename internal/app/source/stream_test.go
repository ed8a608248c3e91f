package source

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fastpull/internal/app/errors"
	"fastpull/internal/app/queue"
	"fastpull/internal/config/logger"
)

// chanReader blocks on a channel of lines until closed
type chanReader struct {
	lines  chan string
	closed chan struct{}
	once   sync.Once
	exited bool
}

func newChanReader() *chanReader {
	return &chanReader{lines: make(chan string, 16), closed: make(chan struct{})}
}

func (r *chanReader) ReadLine() (string, error) {
	select {
	case line, ok := <-r.lines:
		if !ok {
			r.exited = true
			return "", io.EOF
		}

		return line, nil
	case <-r.closed:
		return "", io.ErrClosedPipe
	}
}

func (r *chanReader) Exited() bool { return r.exited }

func (r *chanReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

type chanStream struct{ reader *chanReader }

func (s *chanStream) Open(ctx context.Context) (LineReader, error) { return s.reader, nil }

func drain(q *queue.Queue[Record]) []string {
	var out []string

	for {
		rec, ok := q.TryPop()
		if !ok {
			return out
		}

		out = append(out, rec.Payload)
	}
}

func Test_follow_PushesTrimmedLines(t *testing.T) {
	reader := newChanReader()
	q := queue.New[Record]()

	reader.lines <- "  first line  "
	reader.lines <- ""
	reader.lines <- "   "
	reader.lines <- "second\r"
	close(reader.lines)

	before := time.Now()
	follow(context.Background(), &chanStream{reader: reader}, q, 10*time.Millisecond, logger.NewNop())

	rec, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, "first line", rec.Payload)
	assert.False(t, rec.Time.Before(before))

	assert.Equal(t, []string{"second"}, drain(q))
}

func Test_follow_RetriesUntilExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := NewMockLineReader(ctrl)
	stream := NewMockStream(ctrl)
	q := queue.New[Record]()

	stream.EXPECT().Open(gomock.Any()).Return(reader, nil)
	gomock.InOrder(
		reader.EXPECT().ReadLine().Return("", io.EOF),
		reader.EXPECT().Exited().Return(false),
		reader.EXPECT().ReadLine().Return("late line", nil),
		reader.EXPECT().ReadLine().Return("", io.EOF),
		reader.EXPECT().Exited().Return(true),
	)
	reader.EXPECT().Close().Return(nil).MinTimes(1)

	follow(context.Background(), stream, q, time.Millisecond, logger.NewNop())

	assert.Equal(t, []string{"late line"}, drain(q))
}

func Test_follow_OpenError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stream := NewMockStream(ctrl)
	stream.EXPECT().Open(gomock.Any()).Return(nil, errors.ErrFailedToOpenStream)

	q := queue.New[Record]()
	follow(context.Background(), stream, q, time.Millisecond, logger.NewNop())

	assert.Equal(t, 0, q.Len())
}

func Test_follow_ReadErrorTerminates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := NewMockLineReader(ctrl)
	stream := NewMockStream(ctrl)

	stream.EXPECT().Open(gomock.Any()).Return(reader, nil)
	reader.EXPECT().ReadLine().Return("", errors.New("broken pipe"))
	reader.EXPECT().Close().Return(nil).MinTimes(1)

	follow(context.Background(), stream, queue.New[Record](), time.Millisecond, logger.NewNop())
}

func Test_follow_StopsPromptlyOnCancel(t *testing.T) {
	reader := newChanReader()
	q := queue.New[Record]()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		follow(ctx, &chanStream{reader: reader}, q, 100*time.Millisecond, logger.NewNop())
		close(done)
	}()

	reader.lines <- "one"

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("follow did not stop within one polling interval")
	}
}

func Test_sleep(t *testing.T) {
	assert.True(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, sleep(ctx, time.Hour))
}

func Test_guard(t *testing.T) {
	assert.NotPanics(t, func() {
		defer guard(logger.NewNop(), "test")
		panic("boom")
	})
}
