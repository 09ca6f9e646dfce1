package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/carbonintensitygb"
	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/electricitymaps"
	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/energidataservice"
	httpadapter "github.com/couchcryptid/carbon-intensity-service/internal/adapter/http"
	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/ipinfo"
	"github.com/couchcryptid/carbon-intensity-service/internal/config"
	"github.com/couchcryptid/carbon-intensity-service/internal/dataset"
	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/couchcryptid/carbon-intensity-service/internal/monitor"
	"github.com/couchcryptid/carbon-intensity-service/internal/observability"
	"github.com/couchcryptid/carbon-intensity-service/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geolocator := ipinfo.NewClient(cfg.IPInfoToken, cfg.GeolocationTimeout, logger)

	// Select the live provider (configured via CARBON_PROVIDER).
	fetcher := newFetcher(cfg, logger)
	if fetcher != nil {
		logger.Info("live carbon intensity provider enabled", "provider", cfg.CarbonProvider, "timeout", cfg.FetchTimeout)
	} else {
		logger.Info("no live carbon intensity provider configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := resolver.New(ctx, geolocator, dataset.New(), fetcher, logger, metrics)

	sampler := monitor.New(svc, logger, metrics, cfg.SampleInterval, cfg.ForecastHorizon)
	srv := httpadapter.NewServer(cfg.HTTPAddr, sampler, sampler, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start sampling loop.
	go func() {
		if err := sampler.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newFetcher selects the live provider from configuration. Returns nil when
// none is configured; the resolver then serves static averages only.
func newFetcher(cfg *config.Config, logger *slog.Logger) domain.Fetcher {
	switch cfg.CarbonProvider {
	case config.ProviderElectricityMaps:
		return electricitymaps.NewClient(cfg.ElectricityMapsToken, cfg.FetchTimeout, logger)
	case config.ProviderCarbonIntensityGB:
		return carbonintensitygb.NewClient(cfg.FetchTimeout, logger)
	case config.ProviderEnergiDataService:
		return energidataservice.NewClient(cfg.FetchTimeout, logger)
	default:
		return nil
	}
}
