// Package report parses carbontracker-format training logs and renders a
// carbon footprint summary as a PDF document.
//
// # Log Format
//
// Logs are plain text with one timestamped entry per line:
//
//	2025-11-18 15:53:54 - carbontracker version 2.3.4.dev1+g61759d185.d20251107
//	2025-11-18 15:53:54 - Only predicted and actual consumptions are multiplied by a PUE coefficient of 1.58 (Daniel Bizo, 2023, Uptime Institute Global Data Center Survey).
//	2025-11-18 15:54:28 - Epoch 1:
//	2025-11-18 15:54:28 - Duration: 0:00:33.57
//	2025-11-18 15:54:28 - Average power usage (W) for gpu: 0.019533333333333337
//	2025-11-18 15:54:28 - Average power usage (W) for cpu: 6.785066666666666
//	2025-11-18 15:54:28 - Carbon intensities (gCO2eq/kWh) fetched every 900 s at detected location: Copenhagen, Capital Region, DK: [143.3]
//	2025-11-18 15:54:28 - Average carbon intensity during training was 143.30 gCO2eq/kWh.
//
// Older logs write power draws as per-device lists ("[6.8046]", "None" when
// a component is absent) and label intensities "gCO2/kWh"; both shapes are
// accepted. Every entry outside this vocabulary is ignored, so logs
// interleaved with application output still parse.
package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	// Dev builds carry a suffix like "2.3.4.dev1+g61759d185"; only the
	// numeric release prefix is kept.
	versionRe      = regexp.MustCompile(`carbontracker version (\d+(?:\.\d+)*)`)
	pueRe          = regexp.MustCompile(`PUE coefficient of ([\d.]+)`)
	epochRe        = regexp.MustCompile(`Epoch (\d+):`)
	durationRe     = regexp.MustCompile(`Duration: (\d+):(\d{2}):(\d{1,2}(?:\.\d+)?)`)
	powerRe        = regexp.MustCompile(`Average power usage \(W\) for (\w+): (\[[^\]]*\]|None|[\d.eE+-]+)`)
	intensitiesRe  = regexp.MustCompile(`Carbon intensities \(gCO2(?:eq)?/kWh\) fetched .*: \[([^\]]*)\]`)
	avgIntensityRe = regexp.MustCompile(`Average carbon intensity during training was ([\d.]+) gCO2(?:eq)?/kWh`)
)

// TrainingLog is the extracted content of one training log.
type TrainingLog struct {
	Version string
	// PUE is the power usage effectiveness coefficient announced in the
	// log header, carried for display. The measured power draws already
	// include it.
	PUE    float64
	Epochs []Epoch
	// Intensities holds every fetched carbon intensity in log order
	// (gCO2eq/kWh).
	Intensities []float64
	// AvgIntensity is the summary line's training-wide average intensity.
	// Valid only when HasAvgIntensity is true.
	AvgIntensity    float64
	HasAvgIntensity bool
	Start, End      time.Time
}

// Epoch is one training epoch's measurements.
type Epoch struct {
	Number   int
	Duration time.Duration
	// AvgPower maps a component name (gpu, cpu) to its average power draw
	// in watts, averaged across the component's devices.
	AvgPower map[string]float64
}

// TotalPower returns the epoch's power draw summed across components.
func (e Epoch) TotalPower() float64 {
	var total float64
	for _, w := range e.AvgPower {
		total += w
	}
	return total
}

// Parse extracts a TrainingLog from r. It fails when the log contains no
// epochs, since there is nothing to report on.
func Parse(r io.Reader) (*TrainingLog, error) {
	log := &TrainingLog{}

	var current *Epoch

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		log.observeTimestamp(line)

		switch {
		case versionRe.MatchString(line):
			log.Version = versionRe.FindStringSubmatch(line)[1]

		case pueRe.MatchString(line):
			pue, err := strconv.ParseFloat(pueRe.FindStringSubmatch(line)[1], 64)
			if err == nil {
				log.PUE = pue
			}

		case epochRe.MatchString(line):
			n, _ := strconv.Atoi(epochRe.FindStringSubmatch(line)[1])
			log.Epochs = append(log.Epochs, Epoch{Number: n, AvgPower: map[string]float64{}})
			current = &log.Epochs[len(log.Epochs)-1]

		case durationRe.MatchString(line):
			if current == nil {
				continue
			}
			current.Duration = parseClock(durationRe.FindStringSubmatch(line))

		case powerRe.MatchString(line):
			if current == nil {
				continue
			}
			m := powerRe.FindStringSubmatch(line)
			if m[2] == "None" {
				continue
			}
			values := parseFloatList(m[2])
			if len(values) > 0 {
				current.AvgPower[m[1]] = mean(values)
			}

		case intensitiesRe.MatchString(line):
			log.Intensities = append(log.Intensities, parseFloatList(intensitiesRe.FindStringSubmatch(line)[1])...)

		case avgIntensityRe.MatchString(line):
			avg, err := strconv.ParseFloat(avgIntensityRe.FindStringSubmatch(line)[1], 64)
			if err == nil {
				log.AvgIntensity = avg
				log.HasAvgIntensity = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if len(log.Epochs) == 0 {
		return nil, fmt.Errorf("no epochs found in log")
	}
	return log, nil
}

// observeTimestamp tracks the first and last entry timestamps.
func (l *TrainingLog) observeTimestamp(line string) {
	if len(line) < len(timestampLayout) {
		return
	}
	ts, err := time.Parse(timestampLayout, line[:len(timestampLayout)])
	if err != nil {
		return
	}
	if l.Start.IsZero() {
		l.Start = ts
	}
	l.End = ts
}

// parseClock converts a H:MM:SS[.ff] duration match to a time.Duration.
func parseClock(m []string) time.Duration {
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.ParseFloat(m[3], 64)
	seconds := float64(h)*3600 + float64(min)*60 + s
	return time.Duration(seconds * float64(time.Second))
}

// parseFloatList reads a bracketed or bare comma-separated float list,
// skipping entries that do not parse.
func parseFloatList(s string) []float64 {
	s = strings.Trim(s, "[]")
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var values []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
