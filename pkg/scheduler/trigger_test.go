package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/whodis/pkg/logger"
)

func TestExpiry(t *testing.T) {
	tests := []struct {
		interval time.Duration
		want     time.Duration
	}{
		{interval: 30 * time.Minute, want: 450 * time.Second},
		{interval: 15 * time.Minute, want: 225 * time.Second},
		{interval: 30 * time.Second, want: 10 * time.Second},
		{interval: time.Second, want: 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Expiry(tt.interval), "interval %s", tt.interval)
	}
}

func TestNewTriggerValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := NewMockJob(ctrl)

	_, err := NewTrigger(0, job, nil, logger.NewTestLogger())
	assert.Error(t, err)

	_, err = NewTrigger(time.Minute, nil, nil, logger.NewTestLogger())
	assert.Error(t, err)

	tr, err := NewTrigger(time.Minute, job, nil, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, tr.expiry)
}

func TestTriggerRunsJobOnStartAndTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	ticker := NewMockTicker(ctrl)
	job := NewMockJob(ctrl)

	now := time.Now()
	tickCh := make(chan time.Time)

	clock.EXPECT().Now().Return(now).AnyTimes()
	clock.EXPECT().Ticker(time.Minute).Return(ticker)
	ticker.EXPECT().Chan().Return((<-chan time.Time)(tickCh)).AnyTimes()
	ticker.EXPECT().Stop()

	ran := make(chan struct{}, 4)
	job.EXPECT().Run(gomock.Any()).DoAndReturn(func(context.Context) (int, error) {
		ran <- struct{}{}
		return 1, nil
	}).Times(2)

	tr, err := NewTrigger(time.Minute, job, clock, logger.NewTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- tr.Start(ctx) }()

	// Immediate firing on start, then one per tick. Wait for the in-flight
	// flag to clear so the tick is not treated as overlapping.
	<-ran
	require.Eventually(t, func() bool { return !tr.inFlight.Load() }, time.Second, time.Millisecond)
	tickCh <- now
	<-ran

	cancel()

	err = <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExecuteDropsStaleFiring(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	job := NewMockJob(ctrl)

	tr, err := NewTrigger(time.Minute, job, clock, logger.NewTestLogger())
	require.NoError(t, err)

	scheduled := time.Now()

	// Picked up 16s after scheduling with a 15s expiry: dropped, job never runs.
	clock.EXPECT().Now().Return(scheduled.Add(16 * time.Second))

	tr.inFlight.Store(true)
	tr.execute(context.Background(), firing{scheduledAt: scheduled})

	assert.False(t, tr.inFlight.Load(), "in-flight flag must clear after a dropped firing")
}

func TestExecuteRunsFreshFiring(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	job := NewMockJob(ctrl)

	tr, err := NewTrigger(time.Minute, job, clock, logger.NewTestLogger())
	require.NoError(t, err)

	scheduled := time.Now()

	clock.EXPECT().Now().Return(scheduled.Add(time.Second))
	job.EXPECT().Run(gomock.Any()).Return(3, nil)

	tr.inFlight.Store(true)
	tr.execute(context.Background(), firing{scheduledAt: scheduled})

	assert.False(t, tr.inFlight.Load())
}

func TestDispatchDropsOverlappingFiring(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	job := NewMockJob(ctrl)

	tr, err := NewTrigger(time.Minute, job, clock, logger.NewTestLogger())
	require.NoError(t, err)

	// A run is still in flight: the firing is dropped without consulting the
	// clock or queueing anything.
	tr.inFlight.Store(true)
	tr.dispatch()

	assert.Empty(t, tr.firings)
}

func TestJobFailureDoesNotStopTrigger(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	job := NewMockJob(ctrl)

	tr, err := NewTrigger(time.Minute, job, clock, logger.NewTestLogger())
	require.NoError(t, err)

	scheduled := time.Now()

	clock.EXPECT().Now().Return(scheduled).Times(2)
	job.EXPECT().Run(gomock.Any()).Return(0, errors.New("scan failed")).Times(2)

	tr.inFlight.Store(true)
	tr.execute(context.Background(), firing{scheduledAt: scheduled})

	// The next firing proceeds normally.
	tr.inFlight.Store(true)
	tr.execute(context.Background(), firing{scheduledAt: scheduled})
}
