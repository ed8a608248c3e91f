package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"fastpull/internal/app/errors"
)

// FileStream follows a log file as it grows, like tail -f
type FileStream struct {
	path string
	wait time.Duration
}

// NewFileStream creates a follower for path; each read waits at most wait for new data
func NewFileStream(path string, wait time.Duration) *FileStream {
	return &FileStream{path: path, wait: wait}
}

// Open opens the file and watches it for writes and removal
func (s *FileStream) Open(ctx context.Context) (LineReader, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToOpenStream, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToWatchFile, err)
	}

	if err := watcher.Add(s.path); err != nil {
		watcher.Close()
		file.Close()

		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToWatchFile, err)
	}

	return &fileReader{
		path:    s.path,
		file:    file,
		reader:  bufio.NewReaderSize(file, readerBufferSize),
		watcher: watcher,
		wait:    s.wait,
		closed:  make(chan struct{}),
	}, nil
}

type fileReader struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher
	wait    time.Duration
	pending strings.Builder
	exited  atomic.Bool
	closed  chan struct{}
	once    sync.Once
}

func (r *fileReader) ReadLine() (string, error) {
	deadline := time.Now().Add(r.wait)

	for {
		chunk, err := r.reader.ReadString('\n')
		r.pending.WriteString(chunk)

		if err == nil {
			line := strings.TrimRight(r.pending.String(), "\r\n")
			r.pending.Reset()

			return line, nil
		}

		if !errors.Is(err, io.EOF) {
			return "", err
		}

		if r.exited.Load() {
			if r.pending.Len() > 0 {
				line := r.pending.String()
				r.pending.Reset()

				return line, nil
			}

			return "", io.EOF
		}

		remaining := time.Until(deadline)
		if remaining <= 0 || !r.waitForChange(remaining) {
			return "", io.EOF
		}
	}
}

// waitForChange blocks until the file changes, reporting false on timeout or close
func (r *fileReader) waitForChange(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-r.watcher.Events:
		if !ok {
			r.exited.Store(true)
			return false
		}

		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			r.exited.Store(true)
		}

		// an unlinked file that is still open only reports a chmod
		if ev.Has(fsnotify.Chmod) {
			if _, err := os.Stat(r.path); os.IsNotExist(err) {
				r.exited.Store(true)
			}
		}

		return true
	case _, ok := <-r.watcher.Errors:
		if !ok {
			r.exited.Store(true)
		}

		return false
	case <-timer.C:
		return false
	case <-r.closed:
		return false
	}
}

func (r *fileReader) Exited() bool {
	return r.exited.Load()
}

func (r *fileReader) Close() error {
	var err error

	r.once.Do(func() {
		close(r.closed)
		r.watcher.Close()
		err = r.file.Close()
	})

	return err
}
