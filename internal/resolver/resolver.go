// Package resolver implements the three-tier carbon intensity resolution
// chain: live provider fetch, static country average, world average.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/couchcryptid/carbon-intensity-service/internal/observability"
)

// unknownLocation renders in place of the address and country when no
// location could be determined.
const unknownLocation = "Unknown"

// Metric label values for the resolution tier counter.
const (
	tierLive    = "live"
	tierCountry = "country"
	tierWorld   = "world"
)

// Service resolves carbon intensity for the detected location. Geolocation
// runs once, at construction; the static default is computed once from its
// outcome. All fields are write-once at construction, so concurrent callers
// of FetchCarbonIntensity are safe as long as the injected fetcher is itself
// thread-safe.
type Service struct {
	logger        *slog.Logger
	metrics       *observability.Metrics
	fetcher       domain.Fetcher   // nil when no provider is configured
	location      *domain.Location // nil when geolocation failed
	address       string
	country       string
	defaultResult domain.IntensityResult
}

// New constructs a Service. A failed geolocation lookup is a debug-level
// event, not an error: it degrades every later resolution to the static
// tiers. fetcher may be nil.
func New(ctx context.Context, geolocator domain.Geolocator, averages domain.CountryAverages, fetcher domain.Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	s := &Service{
		logger:  logger,
		metrics: metrics,
		fetcher: fetcher,
		address: unknownLocation,
		country: unknownLocation,
	}

	loc, err := geolocator.Locate(ctx)
	if err != nil {
		logger.Debug("geolocation failed", "error", err)
		metrics.GeolocationRequests.WithLabelValues("error").Inc()
	} else {
		metrics.GeolocationRequests.WithLabelValues("success").Inc()
		s.location = &loc
		s.address = loc.Address
		s.country = loc.Country
	}

	s.defaultResult = s.computeDefault(averages)
	s.logState()
	return s
}

// FetchCarbonIntensity resolves a value for the detected location. A
// non-zero horizon requests a forecast averaged over [now, now+horizon].
// Every failure path degrades to the construction-time default; this method
// never returns an error.
func (s *Service) FetchCarbonIntensity(ctx context.Context, horizon time.Duration) domain.IntensityResult {
	if s.fetcher == nil || s.location == nil {
		return s.resolveDefault()
	}

	if !s.fetcher.Suitable(*s.location) {
		s.metrics.FetchRequests.WithLabelValues(s.providerName(), "unsuitable").Inc()
		s.logFetchFailed()
		return s.resolveDefault()
	}

	start := time.Now()
	result, err := s.fetcher.Fetch(ctx, *s.location, horizon)
	s.metrics.FetchAPIDuration.WithLabelValues(s.providerName()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues(s.providerName(), "error").Inc()
		s.logger.Debug("live fetch failed", "provider", s.providerName(), "error", err)
		s.logFetchFailed()
		return s.resolveDefault()
	}

	s.metrics.FetchRequests.WithLabelValues(s.providerName(), "success").Inc()
	s.metrics.Resolutions.WithLabelValues(tierLive).Inc()
	return result
}

// DefaultCarbonIntensity returns the static fallback computed at construction.
func (s *Service) DefaultCarbonIntensity() domain.IntensityResult {
	return s.defaultResult
}

// computeDefault picks the best static fallback: the country average when a
// location resolved and the table has its country, otherwise the world average.
func (s *Service) computeDefault(averages domain.CountryAverages) domain.IntensityResult {
	if s.location == nil {
		return s.worldDefault()
	}

	value, err := averages.Lookup(s.country)
	if err != nil {
		s.logger.Debug("country intensity lookup failed", "country", s.country, "error", err)
		return s.worldDefault()
	}

	return domain.IntensityResult{
		CarbonIntensity: value,
		Address:         s.address,
		Country:         s.country,
		IsLocalized:     true,
	}
}

func (s *Service) worldDefault() domain.IntensityResult {
	return domain.IntensityResult{
		CarbonIntensity: domain.WorldAverageIntensity,
		Address:         s.address,
		Country:         s.country,
	}
}

// resolveDefault returns the cached default and counts its tier.
func (s *Service) resolveDefault() domain.IntensityResult {
	tier := tierWorld
	if s.defaultResult.IsLocalized {
		tier = tierCountry
	}
	s.metrics.Resolutions.WithLabelValues(tier).Inc()
	return s.defaultResult
}

// logState emits the single construction log line describing which default
// tier applies and why. Silent when a provider is configured and a location
// resolved: the default then serves only as a per-call fallback.
func (s *Service) logState() {
	if s.fetcher == nil {
		if !s.defaultResult.IsLocalized {
			s.logger.Info(fmt.Sprintf(
				"No carbon intensity provider specified and no location detected. Defaulting to global average carbon intensity for %d: %.2f gCO2eq/kWh.",
				domain.WorldAverageIntensityYear, domain.WorldAverageIntensity))
			return
		}
		s.logger.Info(fmt.Sprintf(
			"No carbon intensity provider specified. Using average carbon intensity for %s: %.2f gCO2eq/kWh.",
			s.defaultResult.Country, s.defaultResult.CarbonIntensity))
		return
	}

	if s.location == nil {
		s.logger.Info(fmt.Sprintf(
			"Location could not be determined. Using global average carbon intensity for %d: %.2f gCO2eq/kWh.",
			domain.WorldAverageIntensityYear, domain.WorldAverageIntensity))
	}
}

// logFetchFailed emits the user-facing warning for a declined or failed live
// fetch, naming the detected address and the fallback that will be used.
func (s *Service) logFetchFailed() {
	s.logger.Warn(fmt.Sprintf(
		"Fetcher is unable to retrieve carbon intensity data for your detected location %s. Carbon emissions calculations will fall back to the average carbon intensity for %s: %.2f gCO2eq/kWh.",
		s.address, s.defaultResult.Country, s.defaultResult.CarbonIntensity))
}

// providerName returns the fetcher's self-reported name for metric labels
// and diagnostics.
func (s *Service) providerName() string {
	if n, ok := s.fetcher.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unknown"
}
