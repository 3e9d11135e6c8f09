package persistence

import (
	"context"
	"time"

	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const rollupBatchSize = 500

// GormAnalyticsRepository implements analytics.Repository using GORM
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// Record inserts a raw event
func (r *GormAnalyticsRepository) Record(ctx context.Context, e *analytics.Event) error {
	return r.db.WithContext(ctx).Create(models.AnalyticsEventModelFromDomain(e)).Error
}

// Find returns raw events inside the query window
func (r *GormAnalyticsRepository) Find(ctx context.Context, q analytics.EventQuery) ([]analytics.Event, error) {
	query := r.db.WithContext(ctx).Model(&models.AnalyticsEventModel{}).
		Where("occurred_at >= ? AND occurred_at < ?", q.Period.Start.UTC(), q.Period.End.UTC())
	if len(q.Types) > 0 {
		query = query.Where("type IN ?", q.Types)
	}
	if len(q.ListingIDs) > 0 {
		query = query.Where("listing_id IN ?", q.ListingIDs)
	}

	var rows []models.AnalyticsEventModel
	if err := query.Order("occurred_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]analytics.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events, nil
}

// DeleteBefore purges raw events older than cutoff
func (r *GormAnalyticsRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("occurred_at < ?", cutoff.UTC()).
		Delete(&models.AnalyticsEventModel{})
	return result.RowsAffected, result.Error
}

// SaveDailyStats replaces the rollup rows of one day in a single transaction
func (r *GormAnalyticsRepository) SaveDailyStats(ctx context.Context, date time.Time, stats []analytics.DailyStat) error {
	day := utcDay(date)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", day).Delete(&models.DailyStatModel{}).Error; err != nil {
			return err
		}
		if len(stats) == 0 {
			return nil
		}
		rows := make([]*models.DailyStatModel, len(stats))
		for i, s := range stats {
			s.Date = day
			rows[i] = models.DailyStatModelFromDomain(s)
		}
		return tx.CreateInBatches(rows, rollupBatchSize).Error
	})
}

// FindDailyStats returns rollup rows for the days in period
func (r *GormAnalyticsRepository) FindDailyStats(ctx context.Context, period analytics.Period, listingIDs []uuid.UUID) ([]analytics.DailyStat, error) {
	query := r.db.WithContext(ctx).Model(&models.DailyStatModel{}).
		Where("date >= ? AND date < ?", utcDay(period.Start), utcDay(period.End))
	if len(listingIDs) > 0 {
		query = query.Where("listing_id IN ?", listingIDs)
	}

	var rows []models.DailyStatModel
	if err := query.Order("date").Find(&rows).Error; err != nil {
		return nil, err
	}
	stats := make([]analytics.DailyStat, len(rows))
	for i := range rows {
		stats[i] = rows[i].ToDomain()
	}
	return stats, nil
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ analytics.Repository = (*GormAnalyticsRepository)(nil)
