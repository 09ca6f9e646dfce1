// Command intensity resolves the carbon intensity at the detected location
// once and prints the result.
//
// Usage:
//
//	go run ./cmd/intensity [-horizon 1h] [-json]
//
// A degraded result (static country or world average) is still a result and
// exits zero; only configuration errors exit non-zero.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/carbonintensitygb"
	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/electricitymaps"
	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/energidataservice"
	"github.com/couchcryptid/carbon-intensity-service/internal/adapter/ipinfo"
	"github.com/couchcryptid/carbon-intensity-service/internal/config"
	"github.com/couchcryptid/carbon-intensity-service/internal/dataset"
	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/couchcryptid/carbon-intensity-service/internal/observability"
	"github.com/couchcryptid/carbon-intensity-service/internal/resolver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	horizon := flag.Duration("horizon", 0, "forecast horizon (e.g. 1h); 0 requests the current reading")
	asJSON := flag.Bool("json", false, "print the result as JSON instead of a message")
	flag.Parse()

	if *horizon < 0 {
		return fmt.Errorf("horizon must not be negative")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx := context.Background()

	geolocator := ipinfo.NewClient(cfg.IPInfoToken, cfg.GeolocationTimeout, logger)
	svc := resolver.New(ctx, geolocator, dataset.New(), newFetcher(cfg, logger), logger, metrics)

	result := svc.FetchCarbonIntensity(ctx, *horizon)

	if *asJSON {
		return printJSON(result)
	}
	fmt.Println(resolver.Message(result))
	return nil
}

func printJSON(result domain.IntensityResult) error {
	view := struct {
		CarbonIntensity float64  `json:"carbon_intensity"`
		Unit            string   `json:"unit"`
		Address         string   `json:"address"`
		Country         string   `json:"country"`
		IsFetched       bool     `json:"is_fetched"`
		IsLocalized     bool     `json:"is_localized"`
		IsPrediction    bool     `json:"is_prediction"`
		TimeDurationS   *float64 `json:"time_duration_s,omitempty"`
		Message         string   `json:"message"`
	}{
		CarbonIntensity: result.CarbonIntensity,
		Unit:            "gCO2eq/kWh",
		Address:         result.Address,
		Country:         result.Country,
		IsFetched:       result.IsFetched,
		IsLocalized:     result.IsLocalized,
		IsPrediction:    result.IsPrediction,
		Message:         resolver.Message(result),
	}
	if result.TimeDuration != nil {
		secs := result.TimeDuration.Seconds()
		view.TimeDurationS = &secs
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// newFetcher selects the live provider from configuration. Returns nil when
// none is configured.
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
