package e2e

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

const (
	// fake runtime output, one line per benchmark phase of the e2e workloads
	serverLogs = `echo "Starting SGLang"; sleep 0.2; echo "Load weight begin"; sleep 0.2; echo "Load weight end"; exec sleep 60`
	taskStart  = `sleep 0.3; echo "default /tasks/start {\"container_id\":\"e2e\"}"; exec sleep 60`

	configTemplate = `logging:
  level: warn
runtime:
  binary: %[1]s/nerdctl
  events_binary: %[1]s/ctr
  settle: 10ms
monitor:
  poll_wait: 50ms
  backoff: 50ms
  events_settle: 100ms
  startup_settle: 50ms
probe:
  interval: 50ms
workloads:
  echo:
    timeout: 2s
    phases: &phases
      - name: engine_init
        patterns: ["starting sglang"]
      - name: weights_download
        patterns: ["load weight begin"]
      - name: weights_loaded
        patterns: ["load weight end"]
  served:
    readiness: true
    health_path: health
    timeout: 10s
    phases: *phases
`
)

// lockedBuffer is a thread-safe bytes.Buffer for capturing process output
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer with mutex protection
func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

// String returns the buffer contents with mutex protection
func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// Host is a fake container host: nerdctl and ctr scripts plus a config pointing at them
type Host struct {
	Dir    string
	Config string
	calls  string
}

// NewHost writes the fake runtime into a temp dir; runExit is the exit status of "nerdctl run"
func NewHost(t *testing.T, runExit int) *Host {
	t.Helper()

	dir := t.TempDir()
	h := &Host{
		Dir:    dir,
		Config: filepath.Join(dir, "fastpull.yaml"),
		calls:  filepath.Join(dir, "calls.log"),
	}

	nerdctl := fmt.Sprintf(`#!/bin/sh
echo "$@" >> %q
while [ $# -gt 0 ]; do
  case "$1" in
    --namespace|--snapshotter) shift 2 ;;
    *) break ;;
  esac
done
case "$1" in
  run) if [ %d -ne 0 ]; then echo "image not found" >&2; exit %d; fi ;;
  logs) %s ;;
esac
exit 0
`, h.calls, runExit, runExit, serverLogs)

	ctr := fmt.Sprintf("#!/bin/sh\n%s\n", taskStart)

	h.write(t, "nerdctl", nerdctl, 0o755)
	h.write(t, "ctr", ctr, 0o755)
	h.write(t, "fastpull.yaml", fmt.Sprintf(configTemplate, dir), 0o644)

	return h
}

func (h *Host) write(t *testing.T, name, content string, mode os.FileMode) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(h.Dir, name), []byte(content), mode); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// Calls returns every runtime command line the fake nerdctl received
func (h *Host) Calls() []string {
	data, err := os.ReadFile(h.calls)
	if err != nil {
		return nil
	}

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// Called reports whether a runtime subcommand was invoked
func (h *Host) Called(sub string) bool {
	for _, call := range h.Calls() {
		for _, field := range strings.Fields(call) {
			if field == sub {
				return true
			}
		}
	}

	return false
}

// Runner manages a fastpull process for e2e tests
type Runner struct {
	t      *testing.T
	cmd    *exec.Cmd
	stdout *lockedBuffer
	stderr *lockedBuffer
	host   *Host
	done   chan error
}

// NewRunner creates a runner bound to a fake host; the test is skipped without a fastpull binary
func NewRunner(t *testing.T, host *Host) *Runner {
	t.Helper()

	return &Runner{
		t:      t,
		host:   host,
		stdout: &lockedBuffer{},
		stderr: &lockedBuffer{},
	}
}

func binary(t *testing.T) string {
	t.Helper()

	bin := os.Getenv("FASTPULL_BIN")
	if bin == "" {
		bin = "fastpull"
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		t.Skipf("fastpull binary not available: %v", err)
	}

	return path
}

// Start launches fastpull bench with the host config
func (r *Runner) Start(args ...string) error {
	argv := append([]string{"--config", r.host.Config}, args...)

	r.cmd = exec.Command(binary(r.t), argv...)
	r.cmd.Dir = r.host.Dir
	r.cmd.Stdout = r.stdout
	r.cmd.Stderr = r.stderr

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start fastpull: %w", err)
	}

	r.done = make(chan error, 1)

	go func() {
		r.done <- r.cmd.Wait()
	}()

	return nil
}

// Wait blocks until the process exits or timeout passes
func (r *Runner) Wait(timeout time.Duration) error {
	select {
	case <-r.done:
		return nil
	case <-time.After(timeout):
		r.cmd.Process.Kill()
		<-r.done

		return fmt.Errorf("process did not exit within %s, killed\nOutput:\n%s", timeout, r.Output())
	}
}

// Interrupt sends SIGINT like a user pressing ctrl+c
func (r *Runner) Interrupt() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}

	if err := r.cmd.Process.Signal(syscall.SIGINT); err != nil {
		return fmt.Errorf("failed to send SIGINT: %w", err)
	}

	return nil
}

// WaitForLog blocks until pattern appears in stdout or timeout
func (r *Runner) WaitForLog(pattern string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for log pattern %q\nOutput:\n%s", pattern, r.Output())
		case <-ticker.C:
			if strings.Contains(r.Output(), pattern) {
				return nil
			}
		}
	}
}

// Output returns current stdout content
func (r *Runner) Output() string {
	return r.stdout.String()
}

// Stderr returns current stderr content
func (r *Runner) Stderr() string {
	return r.stderr.String()
}

// ExitCode returns process exit code (after Wait)
func (r *Runner) ExitCode() int {
	if r.cmd == nil || r.cmd.ProcessState == nil {
		return -1
	}

	return r.cmd.ProcessState.ExitCode()
}
