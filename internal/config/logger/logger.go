package logger

//go:generate mockgen -source=logger.go -destination=logger_mock.go -package=logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"fastpull/internal/config"
)

// Logger configuration constants
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"

	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"

	TimeFormat = "15:04:05.000"

	componentField = "component"
)

// Logger interface for application logging
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	WithComponent(name string) Logger
}

// AppLogger represents a logger implementation using zerolog
type AppLogger struct {
	log zerolog.Logger
}

// NewLogger creates a logger writing to stderr so stdout stays free for run output
func NewLogger(cfg *config.Config) Logger {
	return NewLoggerWithOutput(cfg, nil)
}

// NewLoggerWithOutput creates a new logger instance with a custom output writer
func NewLoggerWithOutput(cfg *config.Config, out io.Writer) Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	format := strings.ToLower(cfg.Logging.Format)

	output := out
	if output == nil {
		output = os.Stderr
	}

	if format != JSONFormat {
		output = newConsoleWriter(output)
	}

	log := zerolog.
		New(output).
		Level(parseLevel(cfg.Logging.Level)).
		With().
		Timestamp().
		Str("app", config.AppName).
		Logger()

	return &AppLogger{log: log}
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return &AppLogger{log: zerolog.Nop()}
}

func (l *AppLogger) Debug() *zerolog.Event {
	return l.log.Debug()
}

func (l *AppLogger) Info() *zerolog.Event {
	return l.log.Info()
}

func (l *AppLogger) Warn() *zerolog.Event {
	return l.log.Warn()
}

func (l *AppLogger) Error() *zerolog.Event {
	return l.log.Error()
}

// WithComponent creates a child logger tagged with a component name
func (l *AppLogger) WithComponent(name string) Logger {
	return &AppLogger{
		log: l.log.With().Str(componentField, name).Logger(),
	}
}

// newConsoleWriter renders the component as a [NAME] prefix and hides the app field
func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		TimeFormat:    TimeFormat,
		FieldsExclude: []string{"app"},
		FormatFieldName: func(i interface{}) string {
			if s, ok := i.(string); ok && s == componentField {
				return ""
			}

			return fmt.Sprintf("%s=", i)
		},
		FormatPrepare: func(m map[string]interface{}) error {
			if component, ok := m[componentField].(string); ok {
				m[componentField] = fmt.Sprintf("[%s]", component)
			}

			return nil
		},
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			componentField,
			zerolog.MessageFieldName,
		},
	}
}

// parseLevel maps a configured level name to zerolog, falling back to info
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return lvl
}
