package report

import (
	"fmt"
	"math"
	"time"
)

const (
	// JoulesPerKWh converts watt-seconds to kilowatt-hours.
	JoulesPerKWh = 3.6e6

	// KgCO2PerCarKm is kg CO2eq emitted per km driven by an average EU
	// passenger car.
	KgCO2PerCarKm = 0.120
)

// Footprint is the energy and emission summary of a training log.
type Footprint struct {
	// Intensity is the carbon intensity applied to the energy figures
	// (gCO2eq/kWh).
	Intensity float64
	Duration  time.Duration
	Energy    float64 // kWh
	CO2       float64 // kg CO2eq
	CarKm     float64 // km driven by an average car with the same emissions
	Epochs    []EpochFootprint
}

// EpochFootprint is one epoch's share of the footprint.
type EpochFootprint struct {
	Number   int
	Duration time.Duration
	Power    float64 // W, summed across components
	Energy   float64 // kWh
	CO2      float64 // kg CO2eq
}

// ComputeFootprint derives energy and emissions from a parsed log. The
// intensity applied is the log's training-wide average when present,
// otherwise the mean of the fetched intensities.
func ComputeFootprint(log *TrainingLog) (*Footprint, error) {
	intensity, err := logIntensity(log)
	if err != nil {
		return nil, err
	}

	fp := &Footprint{
		Intensity: intensity,
		Epochs:    make([]EpochFootprint, 0, len(log.Epochs)),
	}

	for _, epoch := range log.Epochs {
		power := epoch.TotalPower()
		energy := power * epoch.Duration.Seconds() / JoulesPerKWh
		co2 := energy * intensity / 1000

		fp.Duration += epoch.Duration
		fp.Energy += energy
		fp.CO2 += co2
		fp.Epochs = append(fp.Epochs, EpochFootprint{
			Number:   epoch.Number,
			Duration: epoch.Duration,
			Power:    power,
			Energy:   energy,
			CO2:      co2,
		})
	}

	fp.CarKm = fp.CO2 / KgCO2PerCarKm
	return fp, nil
}

func logIntensity(log *TrainingLog) (float64, error) {
	if log.HasAvgIntensity {
		return log.AvgIntensity, nil
	}
	if len(log.Intensities) > 0 {
		return mean(log.Intensities), nil
	}
	return 0, fmt.Errorf("no carbon intensity in log")
}

// FormatDuration renders a duration as e.g. "1h 1min 1s", dropping leading
// units that are zero. Seconds are rounded to the nearest whole second.
func FormatDuration(d time.Duration) string {
	total := int64(math.Round(d.Seconds()))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dmin %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dmin %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
