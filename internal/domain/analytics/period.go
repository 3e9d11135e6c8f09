package analytics

import (
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
)

const (
	day           = 24 * time.Hour
	MaxPeriodDays = 366
)

// Period is a half-open time window [Start, End) aligned to UTC days
type Period struct {
	Start time.Time
	End   time.Time
}

// Preset period names accepted by the API
const (
	Preset7Days  = "7d"
	Preset30Days = "30d"
	Preset90Days = "90d"
)

// PresetPeriod returns the window of n whole days ending with today (inclusive)
func PresetPeriod(preset string, now time.Time) (Period, error) {
	var days int
	switch preset {
	case Preset7Days, "":
		days = 7
	case Preset30Days:
		days = 30
	case Preset90Days:
		days = 90
	default:
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Period must be 7d, 30d or 90d")
	}
	end := truncateDay(now).Add(day)
	return Period{Start: end.Add(-time.Duration(days) * day), End: end}, nil
}

// CustomPeriod builds a window from inclusive from/to dates
func CustomPeriod(from, to time.Time) (Period, error) {
	start := truncateDay(from)
	end := truncateDay(to).Add(day)
	if !end.After(start) {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Period end must not be before its start")
	}
	if end.Sub(start) > MaxPeriodDays*day {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Period cannot exceed 366 days")
	}
	return Period{Start: start, End: end}, nil
}

// Days returns the number of whole days covered
func (p Period) Days() int {
	return int(p.End.Sub(p.Start) / day)
}

// Previous returns the window of equal length immediately before p
func (p Period) Previous() Period {
	length := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-length), End: p.Start}
}

// Contains reports whether t falls inside the window
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Key returns a stable cache key fragment
func (p Period) Key() string {
	return p.Start.Format("20060102") + "-" + p.End.Format("20060102")
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
