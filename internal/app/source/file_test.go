package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastpull/internal/app/errors"
	"fastpull/internal/app/queue"
	"fastpull/internal/config/logger"
)

func Test_FileStream_OpenMissing(t *testing.T) {
	_, err := NewFileStream(filepath.Join(t.TempDir(), "missing.log"), 10*time.Millisecond).Open(context.Background())

	assert.ErrorIs(t, err, errors.ErrFailedToOpenStream)
}

func Test_FileStream_FollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("existing line\npartial"), 0644))

	q := queue.New[Record]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	go func() {
		follow(ctx, NewFileStream(path, 50*time.Millisecond), q, 10*time.Millisecond, logger.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, 2*time.Second, 5*time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)

	_, err = f.WriteString(" completed\nload weight end\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool { return q.Len() == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"existing line", "partial completed", "load weight end"}, drain(q))

	cancel()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("file follower did not stop promptly")
	}
}

func Test_FileStream_StopsWhenRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("only line\n"), 0644))

	q := queue.New[Record]()
	done := make(chan struct{})

	go func() {
		follow(context.Background(), NewFileStream(path, 50*time.Millisecond), q, 10*time.Millisecond, logger.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, os.Remove(path))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("follower kept running after the file was removed")
	}
}
