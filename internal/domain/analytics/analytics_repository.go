package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventQuery selects raw events
type EventQuery struct {
	Period     Period
	Types      []EventType
	ListingIDs []uuid.UUID
}

// Repository persists raw events and daily rollups
type Repository interface {
	Record(ctx context.Context, e *Event) error
	Find(ctx context.Context, q EventQuery) ([]Event, error)
	// DeleteBefore purges raw events older than cutoff and returns how many were removed
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// SaveDailyStats replaces all rollup rows for the given date
	SaveDailyStats(ctx context.Context, date time.Time, stats []DailyStat) error
	// FindDailyStats returns rollup rows in period. With listingIDs set only
	// those per-listing rows are returned, otherwise site-wide and per-listing rows.
	FindDailyStats(ctx context.Context, period Period, listingIDs []uuid.UUID) ([]DailyStat, error)
}
