// Package monitor runs the periodic carbon intensity sampling loop and
// retains the latest sample for serving.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/couchcryptid/carbon-intensity-service/internal/observability"
	"github.com/couchcryptid/carbon-intensity-service/internal/resolver"
)

// Resolver produces carbon intensity results. Resolution never fails; a
// degraded result carries fallback values.
type Resolver interface {
	FetchCarbonIntensity(ctx context.Context, horizon time.Duration) domain.IntensityResult
}

// Sampler polls the resolver on a fixed interval and keeps the most recent
// sample.
type Sampler struct {
	resolver Resolver
	logger   *slog.Logger
	metrics  *observability.Metrics
	interval time.Duration
	horizon  time.Duration

	ready atomic.Bool

	mu        sync.Mutex
	latest    domain.IntensityResult
	sampledAt time.Time
}

// New creates a Sampler that fetches with the given forecast horizon every
// interval.
func New(r Resolver, logger *slog.Logger, metrics *observability.Metrics, interval, horizon time.Duration) *Sampler {
	return &Sampler{
		resolver: r,
		logger:   logger,
		metrics:  metrics,
		interval: interval,
		horizon:  horizon,
	}
}

// CheckReadiness returns nil once at least one sample has been taken, or an
// error describing why the service is not yet ready.
func (s *Sampler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no carbon intensity sample taken yet")
	}
	return nil
}

// Latest returns the most recent sample and when it was taken. ok is false
// until the first sample exists.
func (s *Sampler) Latest() (domain.IntensityResult, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready.Load() {
		return domain.IntensityResult{}, time.Time{}, false
	}
	return s.latest, s.sampledAt, true
}

// Run samples once immediately and then on every interval tick until the
// context is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	s.logger.Info("monitor started", "interval", s.interval, "horizon", s.horizon)
	s.metrics.MonitorRunning.Set(1)
	defer s.metrics.MonitorRunning.Set(0)

	s.sample(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

func (s *Sampler) sample(ctx context.Context) {
	result := s.resolver.FetchCarbonIntensity(ctx, s.horizon)

	// A fetch interrupted by shutdown resolves to a fallback value; don't
	// let it replace the last good sample.
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.latest = result
	s.sampledAt = domain.Now()
	s.mu.Unlock()
	s.ready.Store(true)

	s.metrics.SamplesTaken.Inc()
	s.metrics.LatestIntensity.Set(result.CarbonIntensity)

	s.logger.Info(resolver.Message(result),
		"carbon_intensity", result.CarbonIntensity,
		"is_fetched", result.IsFetched,
		"is_localized", result.IsLocalized,
		"is_prediction", result.IsPrediction,
	)
}
