package monitor_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/couchcryptid/carbon-intensity-service/internal/monitor"
	"github.com/couchcryptid/carbon-intensity-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockResolver struct {
	result     domain.IntensityResult
	calls      atomic.Int64
	gotHorizon atomic.Int64
}

func (m *mockResolver) FetchCarbonIntensity(_ context.Context, horizon time.Duration) domain.IntensityResult {
	m.calls.Add(1)
	m.gotHorizon.Store(int64(horizon))
	return m.result
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveResult() domain.IntensityResult {
	return domain.IntensityResult{
		CarbonIntensity: 143.3,
		Address:         "Copenhagen, Capital Region, DK",
		Country:         "DK",
		IsFetched:       true,
		IsLocalized:     true,
	}
}

// --- tests ---

func TestSampler_ImmediateFirstSample(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	res := &mockResolver{result: liveResult()}
	s := monitor.New(res, testLogger(), newTestMetrics(), time.Hour, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.calls.Load())
	require.NoError(t, s.CheckReadiness(context.Background()))

	latest, sampledAt, ok := s.Latest()
	require.True(t, ok)
	assert.True(t, sampledAt.Equal(fakeClock.Now()))
	if diff := cmp.Diff(liveResult(), latest); diff != "" {
		t.Errorf("latest sample mismatch (-want +got):\n%s", diff)
	}
}

func TestSampler_SamplesOnInterval(t *testing.T) {
	res := &mockResolver{result: liveResult()}
	s := monitor.New(res, testLogger(), newTestMetrics(), 20*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.calls.Load(), int64(3))
}

func TestSampler_PassesHorizonToResolver(t *testing.T) {
	res := &mockResolver{result: liveResult()}
	s := monitor.New(res, testLogger(), newTestMetrics(), time.Hour, 30*time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, int64(30*time.Minute), res.gotHorizon.Load())
}

func TestSampler_NotReadyBeforeFirstSample(t *testing.T) {
	res := &mockResolver{result: liveResult()}
	s := monitor.New(res, testLogger(), newTestMetrics(), time.Hour, 0)

	err := s.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no carbon intensity sample taken yet")

	_, _, ok := s.Latest()
	assert.False(t, ok)
}

func TestSampler_CancelledContextTakesNoSample(t *testing.T) {
	res := &mockResolver{result: liveResult()}
	s := monitor.New(res, testLogger(), newTestMetrics(), time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	require.NoError(t, err)

	_, _, ok := s.Latest()
	assert.False(t, ok)
	assert.Error(t, s.CheckReadiness(context.Background()))
}
