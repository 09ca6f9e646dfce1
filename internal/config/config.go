package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by CARBON_PROVIDER. Empty means no live provider:
// resolutions come from the static country table or the world average.
const (
	ProviderElectricityMaps   = "electricitymaps"
	ProviderCarbonIntensityGB = "carbonintensitygb"
	ProviderEnergiDataService = "energidataservice"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CarbonProvider       string
	ElectricityMapsToken string
	IPInfoToken          string

	GeolocationTimeout time.Duration
	FetchTimeout       time.Duration

	SampleInterval  time.Duration
	ForecastHorizon time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	geoTimeout, err := parseDurationEnv("GEOLOCATION_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDurationEnv("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sampleInterval, err := parseDurationEnv("SAMPLE_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	forecastHorizon, err := parseHorizonEnv("FORECAST_HORIZON")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CarbonProvider:       os.Getenv("CARBON_PROVIDER"),
		ElectricityMapsToken: os.Getenv("ELECTRICITYMAPS_TOKEN"),
		IPInfoToken:          os.Getenv("IPINFO_TOKEN"),
		GeolocationTimeout:   geoTimeout,
		FetchTimeout:         fetchTimeout,
		SampleInterval:       sampleInterval,
		ForecastHorizon:      forecastHorizon,
		HTTPAddr:             envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		LogFormat:            envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:      shutdownTimeout,
	}

	switch cfg.CarbonProvider {
	case "", ProviderElectricityMaps, ProviderCarbonIntensityGB, ProviderEnergiDataService:
	default:
		return nil, fmt.Errorf("unknown CARBON_PROVIDER %q", cfg.CarbonProvider)
	}
	if cfg.CarbonProvider == ProviderElectricityMaps && cfg.ElectricityMapsToken == "" {
		return nil, errors.New("CARBON_PROVIDER is electricitymaps but ELECTRICITYMAPS_TOKEN is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDurationEnv parses a required-positive duration env var with a default.
func parseDurationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseHorizonEnv parses an optional forecast horizon. Unset or "0" means no
// forecast is requested; negative values are rejected.
func parseHorizonEnv(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" || v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
