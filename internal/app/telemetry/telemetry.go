package telemetry

//go:generate mockgen -source=telemetry.go -destination=telemetry_mock.go -package=telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"fastpull/internal/app/errors"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

// Reporter forwards run failures to an error tracker
type Reporter interface {
	CaptureError(err error, tags map[string]string)
	CaptureMessage(msg string, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// NewReporter returns a Sentry reporter when a DSN is configured, otherwise a no-op
func NewReporter(cfg *config.Config, log logger.Logger) (Reporter, error) {
	if cfg.Telemetry.DSN == "" {
		return NoOp(), nil
	}

	return newSentryReporter(sentry.ClientOptions{
		Dsn:         cfg.Telemetry.DSN,
		Environment: cfg.Telemetry.Environment,
		Release:     config.AppName + "@" + config.Version,
	}, log)
}

type sentryReporter struct {
	hub *sentry.Hub
	log logger.Logger
}

func newSentryReporter(opts sentry.ClientOptions, log logger.Logger) (Reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToInitTelemetry, err)
	}

	return &sentryReporter{
		hub: sentry.NewHub(client, sentry.NewScope()),
		log: log.WithComponent("TELEMETRY"),
	}, nil
}

func (r *sentryReporter) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}

	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)

		if id := r.hub.CaptureException(err); id != nil {
			r.log.Debug().Msgf("Reported error %s", *id)
		}
	})
}

func (r *sentryReporter) CaptureMessage(msg string, tags map[string]string) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelWarning)

		r.hub.CaptureMessage(msg)
	})
}

func (r *sentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// NoOp returns a reporter that drops everything
func NoOp() Reporter {
	return noOpReporter{}
}

type noOpReporter struct{}

func (noOpReporter) CaptureError(err error, tags map[string]string)    {}
func (noOpReporter) CaptureMessage(msg string, tags map[string]string) {}
func (noOpReporter) Flush(timeout time.Duration) bool                  { return true }
