package domain

import "time"

// IntensityResult is the outcome of one carbon intensity resolution. It is a
// value type: every resolution produces a fresh result, and results are never
// mutated after they are returned.
type IntensityResult struct {
	// CarbonIntensity is the resolved value in gCO2eq/kWh. Non-negative.
	CarbonIntensity float64

	// Address and Country describe where the value applies. They record the
	// provenance of this result, which is the location the value was resolved
	// for, not necessarily the location the service detected at construction.
	// Both are "Unknown" when no location could be determined.
	Address string
	Country string

	// IsFetched is true only when the value came from a live provider call
	// that succeeded in this resolution.
	IsFetched bool

	// IsLocalized is true when the value is specific to the resolved country
	// or a finer location (live fetch or country-table tier). False only for
	// the world average tier.
	IsLocalized bool

	// IsPrediction is true when the value is a forecast for a future window
	// rather than a current reading.
	IsPrediction bool

	// TimeDuration is the forecast horizon. Nil when the result is not a
	// prediction or the provider reported no horizon; a prediction with a
	// nil horizon is valid.
	TimeDuration *time.Duration
}
