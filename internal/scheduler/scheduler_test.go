package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
	"github.com/m04kA/SMC-CarWashService/pkg/metrics"
)

type fakeSource struct {
	mu    sync.Mutex
	now   time.Time
	err   error
	dates []time.Time
}

func (f *fakeSource) Now() time.Time { return f.now }

func (f *fakeSource) SlotFillPercentage(_ context.Context, date time.Time) ([]availability.SlotFill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, date)
	if f.err != nil {
		return nil, f.err
	}
	return []availability.SlotFill{
		{StartTime: date.Add(8 * time.Hour), Percentage: 0.5},
		{StartTime: date.Add(14 * time.Hour), Percentage: 1},
	}, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dates)
}

func TestRefreshSlotFill(t *testing.T) {
	src := &fakeSource{now: time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC)}
	m := metrics.NewWithRegisterer("carwash", prometheus.NewRegistry())

	s, err := New(src, m, time.Hour, logger.NewNop())
	require.NoError(t, err)
	defer s.Stop()

	require.NoError(t, s.RefreshSlotFill(context.Background()))

	require.Len(t, src.dates, 2)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), src.dates[0])
	assert.Equal(t, time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), src.dates[1])

	assert.Equal(t, 0.5, testutil.ToFloat64(m.SlotFillRatio.WithLabelValues("carwash", "2024-05-06", "8")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotFillRatio.WithLabelValues("carwash", "2024-05-07", "14")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.SlotFillRatio))
}

func TestRefreshSlotFill_SourceError(t *testing.T) {
	src := &fakeSource{now: time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC), err: errors.New("db down")}
	m := metrics.NewWithRegisterer("carwash", prometheus.NewRegistry())

	s, err := New(src, m, time.Hour, logger.NewNop())
	require.NoError(t, err)
	defer s.Stop()

	err = s.RefreshSlotFill(context.Background())
	require.ErrorIs(t, err, ErrRefresh)
	assert.Contains(t, err.Error(), "2024-05-06")
	assert.Equal(t, 0, testutil.CollectAndCount(m.SlotFillRatio))
}

func TestNew_InvalidInterval(t *testing.T) {
	_, err := New(&fakeSource{}, metrics.NewWithRegisterer("carwash", prometheus.NewRegistry()), 0, logger.NewNop())
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestStart_RunsImmediately(t *testing.T) {
	src := &fakeSource{now: time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC)}
	m := metrics.NewWithRegisterer("carwash", prometheus.NewRegistry())

	s, err := New(src, m, time.Hour, logger.NewNop())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return src.calls() >= 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
