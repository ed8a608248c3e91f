package cli

//go:generate mockgen -source=printer.go -destination=printer_mock.go -package=cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"fastpull/internal/app/bus"
	"fastpull/internal/app/shutdown"
	"fastpull/internal/config"
)

const minLineWidth = 40

// Printer renders run notices from the bus as they are published
type Printer interface {
	Follow(ctx context.Context) <-chan struct{}
}

type printer struct {
	bus    bus.Bus
	out    io.Writer
	styled bool
	width  int

	mu sync.Mutex
}

// NewPrinter creates a printer writing to stdout, styled only when stdout is a terminal
func NewPrinter(b bus.Bus) Printer {
	styled := term.IsTerminal(os.Stdout.Fd())

	width := 0
	if styled {
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w >= minLineWidth {
			width = w
		}
	}

	return newPrinter(b, os.Stdout, styled, width)
}

func newPrinter(b bus.Bus, out io.Writer, styled bool, width int) *printer {
	return &printer{
		bus:    b,
		out:    out,
		styled: styled,
		width:  width,
	}
}

// Follow subscribes before returning so no notice of the run is missed.
// The returned channel closes after the run finished notice or when ctx ends.
func (p *printer) Follow(ctx context.Context) <-chan struct{} {
	msgs := p.bus.Subscribe(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for msg := range msgs {
			p.print(msg)

			if msg.Type == bus.EventRunFinished {
				return
			}
		}
	}()

	return done
}

func (p *printer) print(msg bus.Message) {
	line, ok := p.format(msg)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, line)
}

func (p *printer) format(msg bus.Message) (string, bool) {
	switch d := msg.Data.(type) {
	case bus.RunStarted:
		return fmt.Sprintf("%s %s with image %s (snapshotter %s, container %s, run %s)",
			p.render(headlineLarge.UnsetMarginTop(), "▶"), d.Workload, d.Image, d.Snapshotter, d.Container, d.RunID), true
	case bus.PreflightKill:
		return p.render(warnStyle, "!") + fmt.Sprintf(" killed stale follower %s (pid %d)", d.Name, d.PID), true
	case bus.ContainerCreated:
		return p.mark(0, "CONTAINER CREATE (run issued)"), true
	case bus.ContainerStarted:
		return p.mark(d.Elapsed, fmt.Sprintf("CONTAINER START (startup: %.3fs)", d.Startup)), true
	case bus.ProbeArmed:
		return p.render(logLineStyle, "polling "+d.URL), true
	case bus.PhaseDetected:
		return p.mark(d.Elapsed, phaseMarker(d.Name)), true
	case bus.LogLine:
		return p.elapsed(d.Elapsed) + " " + p.render(logLineStyle, p.truncate(d.Line)), true
	case bus.Signal:
		return "\n" + p.render(warnStyle, "Received "+d.Name+", cleaning up..."), true
	case bus.Teardown:
		return p.render(logLineStyle, "stopping and removing "+d.Container), true
	case bus.RunFinished:
		style := markStyle
		if d.Outcome == string(shutdown.ReasonFailed) || d.Outcome == string(shutdown.ReasonInterrupted) {
			style = errorStyle
		}

		return p.render(style, fmt.Sprintf("■ %s after %.3fs", d.Outcome, d.Total)), true
	}

	return "", false
}

// mark renders "[12.345s] ✓ NAME"
func (p *printer) mark(elapsed float64, text string) string {
	return p.elapsed(elapsed) + " " + p.render(markStyle, "✓ "+text)
}

func (p *printer) elapsed(v float64) string {
	return p.render(elapsedStyle, fmt.Sprintf("[%.3fs]", v))
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}

	return style.Render(s)
}

// truncate keeps long log lines on one terminal row
func (p *printer) truncate(line string) string {
	limit := p.width - 14
	runes := []rune(line)

	if p.width == 0 || limit <= 0 || len(runes) <= limit {
		return line
	}

	return string(runes[:limit-1]) + "…"
}

// phaseMarker turns a phase name into its notice text
func phaseMarker(name string) string {
	switch name {
	case config.PhaseServerReady:
		return "SERVER READY (HTTP 200)"
	default:
		return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
	}
}
