package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/google/uuid"
)

// AnalyticsEventModel is a raw tracked event. Rows are purged after the retention window.
type AnalyticsEventModel struct {
	ID         uuid.UUID           `gorm:"type:uuid;primary_key"`
	Type       analytics.EventType `gorm:"type:varchar(20);not null;index:idx_analytics_events_type_time,priority:1"`
	Path       string              `gorm:"type:varchar(500);not null"`
	ListingID  *uuid.UUID          `gorm:"type:uuid;index"`
	Query      string              `gorm:"type:varchar(200)"`
	VisitorID  string              `gorm:"type:varchar(64)"`
	UserID     *uuid.UUID          `gorm:"type:uuid"`
	Referrer   string              `gorm:"type:varchar(500)"`
	OccurredAt time.Time           `gorm:"not null;index:idx_analytics_events_type_time,priority:2;index"`
}

// TableName returns the table name for GORM
func (AnalyticsEventModel) TableName() string {
	return "analytics_events"
}

// ToDomain converts the persistence model to a domain Event.
func (m *AnalyticsEventModel) ToDomain() analytics.Event {
	return analytics.Event{
		ID:         m.ID,
		Type:       m.Type,
		Path:       m.Path,
		ListingID:  m.ListingID,
		Query:      m.Query,
		VisitorID:  m.VisitorID,
		UserID:     m.UserID,
		Referrer:   m.Referrer,
		OccurredAt: m.OccurredAt,
	}
}

// AnalyticsEventModelFromDomain creates a new persistence model from a domain Event.
func AnalyticsEventModelFromDomain(e *analytics.Event) *AnalyticsEventModel {
	return &AnalyticsEventModel{
		ID:         e.ID,
		Type:       e.Type,
		Path:       e.Path,
		ListingID:  e.ListingID,
		Query:      e.Query,
		VisitorID:  e.VisitorID,
		UserID:     e.UserID,
		Referrer:   e.Referrer,
		OccurredAt: e.OccurredAt.UTC(),
	}
}

// DailyStatModel is one rollup row. A nil ListingID is the site-wide row.
type DailyStatModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	Date           time.Time  `gorm:"type:date;not null;index"`
	ListingID      *uuid.UUID `gorm:"type:uuid;index"`
	PageViews      int64      `gorm:"not null;default:0"`
	ListingViews   int64      `gorm:"not null;default:0"`
	Searches       int64      `gorm:"not null;default:0"`
	UniqueVisitors int64      `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DailyStatModel) TableName() string {
	return "analytics_daily_stats"
}

// ToDomain converts the persistence model to a domain DailyStat.
func (m *DailyStatModel) ToDomain() analytics.DailyStat {
	return analytics.DailyStat{
		Date:           time.Date(m.Date.Year(), m.Date.Month(), m.Date.Day(), 0, 0, 0, 0, time.UTC),
		ListingID:      m.ListingID,
		PageViews:      m.PageViews,
		ListingViews:   m.ListingViews,
		Searches:       m.Searches,
		UniqueVisitors: m.UniqueVisitors,
	}
}

// DailyStatModelFromDomain creates a new persistence model from a domain DailyStat.
func DailyStatModelFromDomain(s analytics.DailyStat) *DailyStatModel {
	return &DailyStatModel{
		ID:             uuid.New(),
		Date:           time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC),
		ListingID:      s.ListingID,
		PageViews:      s.PageViews,
		ListingViews:   s.ListingViews,
		Searches:       s.Searches,
		UniqueVisitors: s.UniqueVisitors,
	}
}
