package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/application/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type call struct {
	kind JobKind
	date time.Time
}

// fakeExecutor fails the first failures executions, then succeeds
type fakeExecutor struct {
	failures int32
	calls    chan call
	block    bool
	started  chan struct{}
	runs     atomic.Int32
}

func newFakeExecutor(failures int32) *fakeExecutor {
	return &fakeExecutor{failures: failures, calls: make(chan call, 16), started: make(chan struct{}, 16)}
}

func (e *fakeExecutor) Execute(ctx context.Context, job *Job) error {
	n := e.runs.Add(1)
	e.started <- struct{}{}
	if e.block {
		<-ctx.Done()
		return ctx.Err()
	}
	e.calls <- call{kind: job.Kind, date: job.Date}
	if n <= e.failures {
		return errors.New("database unavailable")
	}
	return nil
}

func receive(t *testing.T, ch <-chan call) call {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job execution")
		return call{}
	}
}

func stop(t *testing.T, s interface{ Stop(context.Context) error }) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_ScheduleNightly(t *testing.T) {
	exec := newFakeExecutor(0)
	s := NewScheduler(Config{MaxConcurrentJobs: 1}, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer stop(t, s)

	now := time.Date(2026, 4, 11, 2, 0, 0, 0, time.UTC)
	require.NoError(t, s.ScheduleNightly(now))

	rollup := receive(t, exec.calls)
	assert.Equal(t, JobDailyRollup, rollup.kind)
	assert.Equal(t, time.Date(2026, 4, 10, 2, 0, 0, 0, time.UTC), rollup.date)
	assert.Equal(t, JobPurgeRawEvents, receive(t, exec.calls).kind)
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	exec := newFakeExecutor(1)
	core, logs := observer.New(zap.InfoLevel)
	s := NewScheduler(Config{RetryAttempts: 2, RetryDelay: 10 * time.Millisecond}, exec, zap.New(core))
	require.NoError(t, s.Start(context.Background()))

	job := NewJob(JobPurgeRawEvents, time.Now(), 2)
	require.NoError(t, s.Submit(job))
	receive(t, exec.calls)
	receive(t, exec.calls)
	stop(t, s)

	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, 1, logs.FilterMessage("Job failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Job completed").Len())
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	exec := newFakeExecutor(100)
	s := NewScheduler(Config{RetryDelay: time.Millisecond}, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	job := NewJob(JobDailyRollup, time.Now(), 1)
	require.NoError(t, s.Submit(job))
	receive(t, exec.calls)
	receive(t, exec.calls)

	select {
	case <-exec.calls:
		t.Fatal("job retried past its limit")
	case <-time.After(50 * time.Millisecond):
	}
	stop(t, s)

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "database unavailable", job.Error)
	assert.False(t, job.ShouldRetry())
}

func TestScheduler_SubmitErrors(t *testing.T) {
	exec := newFakeExecutor(0)
	exec.block = true
	s := NewScheduler(Config{MaxConcurrentJobs: 1, QueueSize: 1}, exec, zap.NewNop())

	assert.ErrorIs(t, s.Submit(NewJob(JobDailyRollup, time.Now(), 0)), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Submit(NewJob(JobDailyRollup, time.Now(), 0)))
	select {
	case <-exec.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the job")
	}
	require.NoError(t, s.Submit(NewJob(JobDailyRollup, time.Now(), 0)))
	assert.ErrorIs(t, s.Submit(NewJob(JobDailyRollup, time.Now(), 0)), ErrJobQueueFull)

	stop(t, s)
	assert.NoError(t, s.Stop(context.Background()))
}

type fakeMaintenance struct {
	rollupDate time.Time
	err        error
}

func (m *fakeMaintenance) RunDailyRollup(_ context.Context, date time.Time) (*analytics.RollupResult, error) {
	m.rollupDate = date
	if m.err != nil {
		return nil, m.err
	}
	return &analytics.RollupResult{Date: date.Format(time.DateOnly), Events: 12, Rows: 3}, nil
}

func (m *fakeMaintenance) PurgeRawEvents(context.Context) (int64, error) {
	return 7, m.err
}

func TestAnalyticsExecutor(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	m := &fakeMaintenance{}
	exec := NewAnalyticsExecutor(m, zap.NewNop())
	require.NoError(t, exec.Execute(ctx, NewJob(JobDailyRollup, day, 0)))
	assert.Equal(t, day, m.rollupDate)
	require.NoError(t, exec.Execute(ctx, NewJob(JobPurgeRawEvents, day, 0)))

	err := exec.Execute(ctx, NewJob("REINDEX", day, 0))
	assert.ErrorIs(t, err, ErrUnknownJobKind)

	m.err = errors.New("timeout")
	err = exec.Execute(ctx, NewJob(JobDailyRollup, day, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollup 2026-04-10")
	err = exec.Execute(ctx, NewJob(JobPurgeRawEvents, day, 0))
	assert.Contains(t, err.Error(), "purge raw events")
}
