package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	times []time.Time
	err   error
}

func (f *fakeSubmitter) ScheduleNightly(now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times = append(f.times, now)
	return f.err
}

func TestNewCronTrigger_InvalidSchedule(t *testing.T) {
	_, err := NewCronTrigger("every night", &fakeSubmitter{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid cron schedule "every night"`)
}

func TestCronTrigger_Next(t *testing.T) {
	trigger, err := NewCronTrigger("0 2 * * *", &fakeSubmitter{}, zap.NewNop())
	require.NoError(t, err)

	afternoon := time.Date(2026, 4, 10, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 11, 2, 0, 0, 0, time.UTC), trigger.Next(afternoon))

	early := time.Date(2026, 4, 10, 1, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 10, 2, 0, 0, 0, time.UTC), trigger.Next(early))

	daily, err := NewCronTrigger("@daily", &fakeSubmitter{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC), daily.Next(afternoon))
}

func TestCronTrigger_Fire(t *testing.T) {
	sub := &fakeSubmitter{}
	core, logs := observer.New(zap.InfoLevel)
	trigger, err := NewCronTrigger("0 2 * * *", sub, zap.New(core))
	require.NoError(t, err)

	at := time.Date(2026, 4, 11, 2, 0, 0, 0, time.UTC)
	trigger.fire(at)
	assert.Equal(t, []time.Time{at}, sub.times)
	assert.Equal(t, at, trigger.LastRun())
	assert.Equal(t, 1, logs.FilterMessage("Nightly jobs scheduled").Len())

	sub.err = ErrJobQueueFull
	trigger.fire(at.AddDate(0, 0, 1))
	assert.Equal(t, 1, logs.FilterMessage("Failed to schedule nightly jobs").Len())
}

func TestCronTrigger_StartStop(t *testing.T) {
	trigger, err := NewCronTrigger("@every 1h", &fakeSubmitter{}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	stop(t, trigger)
	assert.NoError(t, trigger.Stop(context.Background()))
	assert.True(t, trigger.LastRun().IsZero())
}

func TestCronTrigger_FiresWithScheduler(t *testing.T) {
	exec := newFakeExecutor(0)
	s := NewScheduler(Config{MaxConcurrentJobs: 1}, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer stop(t, s)

	trigger, err := NewCronTrigger("0 2 * * *", s, zap.NewNop())
	require.NoError(t, err)
	trigger.fire(time.Date(2026, 4, 11, 2, 0, 0, 0, time.UTC))

	assert.Equal(t, JobDailyRollup, receive(t, exec.calls).kind)
	assert.Equal(t, JobPurgeRawEvents, receive(t, exec.calls).kind)

	failing := &fakeSubmitter{err: errors.New("stopped")}
	trigger.submitter = failing
	trigger.fire(time.Date(2026, 4, 12, 2, 0, 0, 0, time.UTC))
	assert.Len(t, failing.times, 1)
}
