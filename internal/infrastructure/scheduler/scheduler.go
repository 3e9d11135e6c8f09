// Package scheduler runs the nightly analytics maintenance jobs.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind identifies the maintenance task a job performs
type JobKind string

const (
	// JobDailyRollup condenses one day of raw analytics events
	JobDailyRollup JobKind = "DAILY_ROLLUP"
	// JobPurgeRawEvents drops raw events past the retention window
	JobPurgeRawEvents JobKind = "PURGE_RAW_EVENTS"
)

// Job is one unit of scheduled work
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	Date        time.Time // day to roll up; unused by purge
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a pending job
func NewJob(kind JobKind, date time.Time, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		Date:       date,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.Error = err.Error()
	j.CompletedAt = &now
}

// ShouldRetry reports whether a failed job has attempts left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// JobExecutor performs a job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Config tunes the worker pool
type Config struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	QueueSize         int
}

// DefaultConfig returns the default pool settings
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
		QueueSize:         16,
	}
}

// Scheduler executes submitted jobs on a fixed pool of workers, retrying
// failures after RetryDelay
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	queue   chan *Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler; zero config values take defaults
func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) *Scheduler {
	def := DefaultConfig()
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = def.MaxConcurrentJobs
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = def.JobTimeout
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = def.RetryDelay
	}
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	return &Scheduler{config: config, executor: executor, logger: logger}
}

// Start launches the workers
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.queue = make(chan *Job, s.config.QueueSize)
	s.running = true

	for i := range s.config.MaxConcurrentJobs {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	s.logger.Info("Scheduler started", zap.Int("workers", s.config.MaxConcurrentJobs))
	return nil
}

// Stop cancels in-flight work and waits for the workers, or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues a job without blocking
func (s *Scheduler) Submit(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleNightly queues the rollup of the day before now (UTC) and the raw event purge
func (s *Scheduler) ScheduleNightly(now time.Time) error {
	yesterday := now.UTC().AddDate(0, 0, -1)
	if err := s.Submit(NewJob(JobDailyRollup, yesterday, s.config.RetryAttempts)); err != nil {
		return err
	}
	return s.Submit(NewJob(JobPurgeRawEvents, now.UTC(), s.config.RetryAttempts))
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.process(ctx, job, id)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job *Job, workerID int) {
	job.start()
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int("worker", workerID),
	}

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err == nil {
		job.complete()
		s.logger.Info("Job completed", fields...)
		return
	}

	job.fail(err)
	s.logger.Error("Job failed", append(fields, zap.Int("attempt", job.RetryCount+1), zap.Error(err))...)
	if !job.ShouldRetry() || ctx.Err() != nil {
		return
	}
	job.RetryCount++
	job.Status = JobStatusPending

	// retries run on the same worker after RetryDelay
	select {
	case <-ctx.Done():
	case <-time.After(s.config.RetryDelay):
		s.process(ctx, job, workerID)
	}
}
