package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// carbon intensity service.
type Metrics struct {
	// Resolution metrics.
	Resolutions      *prometheus.CounterVec   // labels: tier={live,country,world}
	FetchRequests    *prometheus.CounterVec   // labels: provider, outcome={success,unsuitable,error}
	FetchAPIDuration *prometheus.HistogramVec // labels: provider

	// Geolocation metrics.
	GeolocationRequests *prometheus.CounterVec // labels: outcome={success,error}

	// Monitor metrics.
	SamplesTaken    prometheus.Counter
	MonitorRunning  prometheus.Gauge
	LatestIntensity prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon_intensity",
			Name:      "resolutions_total",
			Help:      "Carbon intensity resolutions by fallback tier.",
		}, []string{"tier"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon_intensity",
			Name:      "fetch_requests_total",
			Help:      "Live provider fetch attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		FetchAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carbon_intensity",
			Name:      "fetch_api_duration_seconds",
			Help:      "Provider API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		GeolocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon_intensity",
			Name:      "geolocation_requests_total",
			Help:      "IP geolocation lookups by outcome.",
		}, []string{"outcome"}),
		SamplesTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carbon_intensity",
			Name:      "samples_total",
			Help:      "Total samples taken by the monitor loop.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carbon_intensity",
			Name:      "monitor_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
		LatestIntensity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carbon_intensity",
			Name:      "latest_gco2eq_per_kwh",
			Help:      "Most recently sampled carbon intensity in gCO2eq/kWh.",
		}),
	}

	prometheus.MustRegister(
		m.Resolutions,
		m.FetchRequests,
		m.FetchAPIDuration,
		m.GeolocationRequests,
		m.SamplesTaken,
		m.MonitorRunning,
		m.LatestIntensity,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Resolutions:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "carbon_intensity", Name: "resolutions_total"}, []string{"tier"}),
		FetchRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "carbon_intensity", Name: "fetch_requests_total"}, []string{"provider", "outcome"}),
		FetchAPIDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "carbon_intensity", Name: "fetch_api_duration_seconds"}, []string{"provider"}),
		GeolocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "carbon_intensity", Name: "geolocation_requests_total"}, []string{"outcome"}),
		SamplesTaken:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "carbon_intensity", Name: "samples_total"}),
		MonitorRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "carbon_intensity", Name: "monitor_running"}),
		LatestIntensity:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "carbon_intensity", Name: "latest_gco2eq_per_kwh"}),
	}
}
