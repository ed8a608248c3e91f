package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"fastpull/internal/app/errors"
)

const (
	readerBufferSize = 64 * 1024
	killGrace        = time.Second
)

// CommandStream runs a command and reads its combined stdout and stderr
type CommandStream struct {
	argv []string
}

// NewCommandStream creates a stream over the given argv
func NewCommandStream(argv []string) *CommandStream {
	return &CommandStream{argv: argv}
}

// Argv returns the command line
func (s *CommandStream) Argv() []string {
	return s.argv
}

// Open starts the command in its own process group
func (s *CommandStream) Open(ctx context.Context) (LineReader, error) {
	if len(s.argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", errors.ErrFailedToOpenStream)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToOpenStream, err)
	}

	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = killGrace

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()

		return nil, fmt.Errorf("%w: %s: %w", errors.ErrFailedToStartCommand, strings.Join(s.argv, " "), err)
	}

	r := &commandReader{
		cmd:    cmd,
		pipe:   pr,
		reader: bufio.NewReaderSize(pr, readerBufferSize),
		done:   make(chan struct{}),
	}

	go func() {
		_ = cmd.Wait()
		close(r.done)
		pw.Close()
	}()

	return r, nil
}

type commandReader struct {
	cmd    *exec.Cmd
	pipe   *io.PipeReader
	reader *bufio.Reader
	done   chan struct{}
	once   sync.Once
}

func (r *commandReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}

	if line != "" {
		return line, nil
	}

	if errors.Is(err, io.ErrClosedPipe) {
		return "", io.EOF
	}

	return "", err
}

func (r *commandReader) Exited() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Close terminates the process group, escalating to SIGKILL after a grace period
func (r *commandReader) Close() error {
	r.once.Do(func() {
		r.pipe.Close()

		if r.Exited() {
			return
		}

		pid := r.cmd.Process.Pid
		if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
			_ = r.cmd.Process.Signal(syscall.SIGTERM)
		}

		go func() {
			select {
			case <-r.done:
			case <-time.After(killGrace):
				if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
					_ = r.cmd.Process.Kill()
				}
			}
		}()
	})

	return nil
}
