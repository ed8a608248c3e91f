package source

//go:generate mockgen -source=health.go -destination=health_mock.go -package=source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"fastpull/internal/app/errors"
	"fastpull/internal/app/shutdown"
	"fastpull/internal/config"
	"fastpull/internal/config/logger"
)

const maxDrainBytes = 64 * 1024

// HealthCheck performs one readiness request
type HealthCheck interface {
	Poll(ctx context.Context, url string, timeout time.Duration) (int, error)
}

type httpHealthCheck struct {
	client *http.Client
}

// NewHealthCheck creates an HTTP health check
func NewHealthCheck() HealthCheck {
	return &httpHealthCheck{client: &http.Client{}}
}

func (h *httpHealthCheck) Poll(ctx context.Context, url string, timeout time.Duration) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrFailedToCreateRequest, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode, nil
}

// Probe polls a readiness endpoint at a fixed rate until it answers 200
type Probe struct {
	check          HealthCheck
	interval       time.Duration
	requestTimeout time.Duration
	defaultCap     time.Duration
	log            logger.Logger
}

// NewProbe creates the health-probe adapter
func NewProbe(cfg *config.Config, check HealthCheck, log logger.Logger) *Probe {
	return &Probe{
		check:          check,
		interval:       cfg.Probe.Interval,
		requestTimeout: cfg.Probe.RequestTimeout,
		defaultCap:     cfg.Probe.DefaultCap,
		log:            log.WithComponent("PROBE"),
	}
}

// HealthURL builds the local readiness URL of a published port
func HealthURL(port int, path string) string {
	return fmt.Sprintf("http://localhost:%d/%s", port, path)
}

// Run polls url until HTTP 200, the cap elapses, or the run stops.
// A zero limit uses the default cap. It reports whether readiness was observed.
func (p *Probe) Run(url string, limit time.Duration, sd *shutdown.Shutdown) bool {
	defer guard(p.log, "probe")

	if sd.Cancel().IsSet() || sd.Ready().IsSet() {
		return false
	}

	if limit <= 0 {
		limit = p.defaultCap
	}

	ctx := sd.Context()
	deadline := time.Now().Add(limit)
	limiter := rate.NewLimiter(rate.Every(p.interval), 1)

	p.log.Info().Msgf("Polling %s every %s", url, p.interval)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return false
		}

		if sd.Cancel().IsSet() || sd.Ready().IsSet() {
			return false
		}

		if time.Now().After(deadline) {
			p.log.Warn().Msgf("Health polling gave up after %s", limit)
			return false
		}

		status, err := p.check.Poll(ctx, url, p.requestTimeout)
		if err != nil {
			p.log.Debug().Err(err).Msg("Not reachable yet")
			continue
		}

		if status != http.StatusOK {
			p.log.Debug().Int("status", status).Msg("Not ready yet")
			continue
		}

		if sd.MarkReady(time.Now()) {
			p.log.Info().Msg("Readiness endpoint returned 200")
		}

		return true
	}
}
