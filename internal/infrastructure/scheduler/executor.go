package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdir/backend/internal/application/analytics"
	"go.uber.org/zap"
)

// AnalyticsMaintenance is the analytics service surface the jobs drive
type AnalyticsMaintenance interface {
	RunDailyRollup(ctx context.Context, date time.Time) (*analytics.RollupResult, error)
	PurgeRawEvents(ctx context.Context) (int64, error)
}

// AnalyticsExecutor runs rollup and purge jobs against the analytics service
type AnalyticsExecutor struct {
	service AnalyticsMaintenance
	logger  *zap.Logger
}

// NewAnalyticsExecutor creates the executor
func NewAnalyticsExecutor(service AnalyticsMaintenance, logger *zap.Logger) *AnalyticsExecutor {
	return &AnalyticsExecutor{service: service, logger: logger}
}

// Execute dispatches on the job kind
func (e *AnalyticsExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobDailyRollup:
		res, err := e.service.RunDailyRollup(ctx, job.Date)
		if err != nil {
			return fmt.Errorf("rollup %s: %w", job.Date.Format(time.DateOnly), err)
		}
		e.logger.Debug("Rollup job finished",
			zap.String("date", res.Date),
			zap.Int("events", res.Events),
			zap.Int("rows", res.Rows))
		return nil
	case JobPurgeRawEvents:
		n, err := e.service.PurgeRawEvents(ctx)
		if err != nil {
			return fmt.Errorf("purge raw events: %w", err)
		}
		e.logger.Debug("Purge job finished", zap.Int64("deleted", n))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}

var _ JobExecutor = (*AnalyticsExecutor)(nil)
