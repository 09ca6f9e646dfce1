package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `2025-11-18 15:53:54 - carbontracker version 2.3.4.dev1+g61759d185.d20251107
2025-11-18 15:53:54 - Only predicted and actual consumptions are multiplied by a PUE coefficient of 1.58 (Daniel Bizo, 2023, Uptime Institute Global Data Center Survey).
2025-11-18 15:53:54 - The following components were found: GPU with device(s) GPU, ANE. CPU with device(s) CPU.
2025-11-18 15:53:54 - Monitoring thread started.
2025-11-18 15:54:28 - Epoch 1:
2025-11-18 15:54:28 - Duration: 0:00:33.57
2025-11-18 15:54:28 - Average power usage (W) for gpu: 0.019533333333333337
2025-11-18 15:54:28 - Average power usage (W) for cpu: 6.785066666666666
2025-11-18 15:54:28 - Carbon intensities (gCO2eq/kWh) fetched every 900 s at detected location: Copenhagen, Capital Region, DK: [143.3]
2025-11-18 15:54:28 - Average carbon intensity during training was 143.30 gCO2eq/kWh.
2025-11-18 15:54:28 - Monitoring thread ended.
`

func TestParse_FullLog(t *testing.T) {
	log, err := report.Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)

	assert.Equal(t, "2.3.4", log.Version)
	assert.InEpsilon(t, 1.58, log.PUE, 1e-9)

	require.Len(t, log.Epochs, 1)
	epoch := log.Epochs[0]
	assert.Equal(t, 1, epoch.Number)
	assert.Equal(t, 33570*time.Millisecond, epoch.Duration)
	assert.Equal(t, 0.019533333333333337, epoch.AvgPower["gpu"])
	assert.Equal(t, 6.785066666666666, epoch.AvgPower["cpu"])
	assert.InDelta(t, 6.8046, epoch.TotalPower(), 1e-9)

	assert.Equal(t, []float64{143.3}, log.Intensities)
	assert.True(t, log.HasAvgIntensity)
	assert.InEpsilon(t, 143.3, log.AvgIntensity, 1e-9)

	assert.Equal(t, time.Date(2025, 11, 18, 15, 53, 54, 0, time.UTC), log.Start)
	assert.Equal(t, time.Date(2025, 11, 18, 15, 54, 28, 0, time.UTC), log.End)
}

func TestParse_OlderListFormat(t *testing.T) {
	older := `2024-05-15 10:30:00 - carbontracker version 1.2.5
2024-05-15 10:30:05 - Epoch 1:
2024-05-15 10:30:38 - Duration: 0:00:33.57
2024-05-15 10:30:38 - Average power usage (W) for gpu: [6.8046]
2024-05-15 10:30:38 - Average power usage (W) for cpu: None
2024-05-15 10:30:39 - Carbon intensities (gCO2/kWh) fetched every 900 s at detected location: [143.3]
2024-05-15 10:31:12 - Epoch 2:
2024-05-15 10:31:45 - Duration: 0:00:33.00
2024-05-15 10:31:45 - Average power usage (W) for gpu: [7.0, 9.0]
2024-05-15 10:31:46 - Carbon intensities (gCO2/kWh) fetched every 900 s at detected location: [143.3]
2024-05-15 10:32:00 - Average carbon intensity during training was 143.30 gCO2/kWh.
`
	log, err := report.Parse(strings.NewReader(older))
	require.NoError(t, err)

	assert.Equal(t, "1.2.5", log.Version)
	require.Len(t, log.Epochs, 2)

	first := log.Epochs[0]
	assert.Equal(t, 33570*time.Millisecond, first.Duration)
	assert.InEpsilon(t, 6.8046, first.AvgPower["gpu"], 1e-9)
	assert.NotContains(t, first.AvgPower, "cpu")

	// Multi-device lists average across devices.
	second := log.Epochs[1]
	assert.Equal(t, 33*time.Second, second.Duration)
	assert.InEpsilon(t, 8.0, second.AvgPower["gpu"], 1e-9)

	assert.Equal(t, []float64{143.3, 143.3}, log.Intensities)
	assert.True(t, log.HasAvgIntensity)
}

func TestParse_DevVersionTruncatedToRelease(t *testing.T) {
	log, err := report.Parse(strings.NewReader(
		"2025-11-18 15:53:54 - carbontracker version 2.3.4.dev1+g61759d185.d20251107\n" +
			"2025-11-18 15:54:28 - Epoch 1:\n" +
			"2025-11-18 15:54:28 - Duration: 0:00:10\n",
	))
	require.NoError(t, err)
	assert.Equal(t, "2.3.4", log.Version)
}

func TestParse_IgnoresUnknownLines(t *testing.T) {
	noisy := `training run starting
2024-05-15 10:30:05 - Epoch 1:
loss=0.234 acc=0.91
2024-05-15 10:30:38 - Duration: 0:01:00
2024-05-15 10:30:38 - Average power usage (W) for gpu: 100.0
done
`
	log, err := report.Parse(strings.NewReader(noisy))
	require.NoError(t, err)

	require.Len(t, log.Epochs, 1)
	assert.Equal(t, time.Minute, log.Epochs[0].Duration)
	assert.InEpsilon(t, 100.0, log.Epochs[0].AvgPower["gpu"], 1e-9)
}

func TestParse_MeasurementsBeforeFirstEpochIgnored(t *testing.T) {
	orphan := `2024-05-15 10:30:38 - Duration: 0:01:00
2024-05-15 10:30:38 - Average power usage (W) for gpu: 100.0
2024-05-15 10:31:00 - Epoch 1:
2024-05-15 10:32:00 - Duration: 0:02:00
2024-05-15 10:32:00 - Average power usage (W) for gpu: 50.0
`
	log, err := report.Parse(strings.NewReader(orphan))
	require.NoError(t, err)

	require.Len(t, log.Epochs, 1)
	assert.Equal(t, 2*time.Minute, log.Epochs[0].Duration)
	assert.InEpsilon(t, 50.0, log.Epochs[0].AvgPower["gpu"], 1e-9)
}

func TestParse_NoEpochs(t *testing.T) {
	_, err := report.Parse(strings.NewReader("2024-05-15 10:30:00 - carbontracker version 1.2.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no epochs found")
}

func TestParse_EmptyLog(t *testing.T) {
	_, err := report.Parse(strings.NewReader(""))
	require.Error(t, err)
}
