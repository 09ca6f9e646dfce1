package resolver

import (
	"fmt"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
)

// Message renders the human-readable explanation of how a result was
// resolved. Pure function: identical results yield identical strings.
//
// Fetched-but-not-localized cannot be produced by a conforming provider;
// it renders the global-default wording.
func Message(r domain.IntensityResult) string {
	if r.IsPrediction {
		return predictionMessage(r)
	}

	switch {
	case r.IsFetched && r.IsLocalized:
		return fmt.Sprintf("Live carbon intensity fetched for %s: %s.",
			addressOrDetected(r.Address), renderIntensity(r.CarbonIntensity))
	case !r.IsFetched && r.IsLocalized:
		return fmt.Sprintf("Defaulted to average carbon intensity for %s: %s.",
			r.Country, renderIntensity(r.CarbonIntensity))
	default:
		return fmt.Sprintf(
			"Live carbon intensity could not be fetched at detected location: %s. Defaulted to average global carbon intensity: %s (%d).",
			r.Address, renderIntensity(r.CarbonIntensity), domain.WorldAverageIntensityYear)
	}
}

func predictionMessage(r domain.IntensityResult) string {
	if r.IsFetched {
		if r.TimeDuration != nil {
			return fmt.Sprintf("Forecasted carbon intensity for the next %s: %s.",
				formatClock(*r.TimeDuration), renderIntensity(r.CarbonIntensity))
		}
		return fmt.Sprintf("Forecasted carbon intensity: %s.", renderIntensity(r.CarbonIntensity))
	}

	if r.TimeDuration != nil {
		return fmt.Sprintf("Failed to predict carbon intensity for the next %s, fallback on average measured intensity at detected location: %s.",
			formatClock(*r.TimeDuration), r.Address)
	}
	return fmt.Sprintf("Failed to predict carbon intensity, fallback on average measured intensity at detected location: %s.", r.Address)
}

// renderIntensity formats a value with two decimal places and its unit.
func renderIntensity(v float64) string {
	return fmt.Sprintf("%.2f gCO2eq/kWh", v)
}

// addressOrDetected substitutes a generic phrase when a result carries no
// address text.
func addressOrDetected(address string) string {
	if address == "" {
		return "detected location"
	}
	return address
}

// formatClock renders a non-negative horizon as H:MM:SS, with whole days
// spelled out for horizons of 24h or more, e.g. "1 day, 2:03:04".
func formatClock(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	hms := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	switch {
	case days == 1:
		return "1 day, " + hms
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	default:
		return hms
	}
}
