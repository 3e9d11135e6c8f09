package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NightlySubmitter queues the nightly jobs
type NightlySubmitter interface {
	ScheduleNightly(now time.Time) error
}

// CronTrigger fires the nightly jobs on a standard five-field cron
// schedule evaluated in UTC
type CronTrigger struct {
	spec      string
	schedule  cron.Schedule
	submitter NightlySubmitter
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastRun time.Time
}

// NewCronTrigger parses spec (e.g. "0 2 * * *" or "@daily")
func NewCronTrigger(spec string, submitter NightlySubmitter, logger *zap.Logger) (*CronTrigger, error) {
	expr := spec
	if !strings.HasPrefix(expr, "TZ=") && !strings.HasPrefix(expr, "CRON_TZ=") {
		expr = "CRON_TZ=UTC " + expr
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return &CronTrigger{
		spec:      spec,
		schedule:  schedule,
		submitter: submitter,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Next returns the next firing time after t
func (c *CronTrigger) Next(t time.Time) time.Time {
	return c.schedule.Next(t.UTC())
}

// LastRun returns when the trigger last fired
func (c *CronTrigger) LastRun() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

// Start begins waiting for the schedule
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go c.loop(ctx)

	c.logger.Info("Cron trigger started",
		zap.String("schedule", c.spec),
		zap.Time("next_run", c.Next(c.now())))
	return nil
}

// Stop ends the loop and waits for it, or for ctx to expire
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) loop(ctx context.Context) {
	defer c.wg.Done()
	for {
		now := c.now()
		timer := time.NewTimer(c.Next(now).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case at := <-timer.C:
			c.fire(at.UTC())
		}
	}
}

func (c *CronTrigger) fire(at time.Time) {
	c.mu.Lock()
	c.lastRun = at
	c.mu.Unlock()

	if err := c.submitter.ScheduleNightly(at); err != nil {
		c.logger.Error("Failed to schedule nightly jobs", zap.Error(err))
		return
	}
	c.logger.Info("Nightly jobs scheduled", zap.Time("at", at))
}
