package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTopN = 10
	MaxTopN     = 50
)

// Ranked is one row of a top-N list
type Ranked struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Count int64  `json:"count"`
}

// Totals are the headline counters of a period
type Totals struct {
	PageViews      int64 `json:"page_views"`
	ListingViews   int64 `json:"listing_views"`
	Searches       int64 `json:"searches"`
	UniqueVisitors int64 `json:"unique_visitors"`
}

// Changes are percentage changes against the previous period
type Changes struct {
	PageViews      float64 `json:"page_views"`
	ListingViews   float64 `json:"listing_views"`
	Searches       float64 `json:"searches"`
	UniqueVisitors float64 `json:"unique_visitors"`
}

// DailyPoint is one day of the trend series
type DailyPoint struct {
	Date         string `json:"date"`
	PageViews    int64  `json:"page_views"`
	ListingViews int64  `json:"listing_views"`
	Searches     int64  `json:"searches"`
}

// Summary is the aggregated dashboard for one period
type Summary struct {
	Period      Period       `json:"-"`
	Totals      Totals       `json:"totals"`
	Previous    Totals       `json:"previous"`
	Changes     Changes      `json:"changes"`
	TopPages    []Ranked     `json:"top_pages"`
	TopListings []Ranked     `json:"top_listings"`
	TopSearches []Ranked     `json:"top_searches"`
	Daily       []DailyPoint `json:"daily"`
}

// Options tune the aggregation
type Options struct {
	TopN int
	// ViewSearchTerms ranks the query attached to listing views instead of
	// search events. Owner dashboards use it to show which terms led to their listings.
	ViewSearchTerms bool
	// ListingScoped marks summaries restricted to a set of listings
	ListingScoped bool
}

// Aggregate folds raw events into a Summary for period, comparing with the
// previous window. Events outside their window are ignored and events with
// a repeated ID are counted once.
func Aggregate(period Period, current, previous []Event, opts Options) Summary {
	topN := clampTopN(opts.TopN)

	cur := dedupe(current, period)
	prev := dedupe(previous, period.Previous())

	pages := make(map[string]int64)
	listings := make(map[string]int64)
	searches := make(map[string]int64)

	daily := newDailySeries(period)
	totals := countTotals(cur, func(e Event) {
		point := daily.point(e.OccurredAt)
		switch e.Type {
		case EventPageView:
			pages[e.Path]++
			point.PageViews++
		case EventListingView:
			listings[e.ListingID.String()]++
			point.ListingViews++
			if opts.ViewSearchTerms && e.Query != "" {
				searches[e.Query]++
			}
		case EventSearch:
			point.Searches++
			if !opts.ViewSearchTerms {
				searches[e.Query]++
			}
		}
	})
	prevTotals := countTotals(prev, nil)

	return Summary{
		Period:      period,
		Totals:      totals,
		Previous:    prevTotals,
		Changes:     compare(totals, prevTotals),
		TopPages:    rank(pages, topN),
		TopListings: rank(listings, topN),
		TopSearches: rank(searches, topN),
		Daily:       daily.points,
	}
}

// WithPrevious replaces the comparison totals and recomputes the changes
func (s Summary) WithPrevious(prev Totals) Summary {
	s.Previous = prev
	s.Changes = compare(s.Totals, prev)
	return s
}

// PercentChange returns the change from prev to cur in percent, rounded to one decimal.
// A rise from zero is reported as 100.
func PercentChange(cur, prev int64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	pct := float64(cur-prev) / float64(prev) * 100
	return math.Round(pct*10) / 10
}

func compare(cur, prev Totals) Changes {
	return Changes{
		PageViews:      PercentChange(cur.PageViews, prev.PageViews),
		ListingViews:   PercentChange(cur.ListingViews, prev.ListingViews),
		Searches:       PercentChange(cur.Searches, prev.Searches),
		UniqueVisitors: PercentChange(cur.UniqueVisitors, prev.UniqueVisitors),
	}
}

func countTotals(events []Event, visit func(Event)) Totals {
	var t Totals
	visitors := make(map[string]struct{})
	for _, e := range events {
		switch e.Type {
		case EventPageView:
			t.PageViews++
		case EventListingView:
			t.ListingViews++
		case EventSearch:
			t.Searches++
		default:
			continue
		}
		if e.VisitorID != "" {
			visitors[e.VisitorID] = struct{}{}
		}
		if visit != nil {
			visit(e)
		}
	}
	t.UniqueVisitors = int64(len(visitors))
	return t
}

// dedupe drops events outside the window, unknown types, events missing
// their type's key field, and repeated IDs
func dedupe(events []Event, window Period) []Event {
	seen := make(map[uuid.UUID]struct{}, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.Type.IsValid() || !window.Contains(e.OccurredAt) {
			continue
		}
		if e.Type == EventListingView && e.ListingID == nil {
			continue
		}
		if e.ID != uuid.Nil {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
		}
		out = append(out, e)
	}
	return out
}

// rank sorts by count descending then key ascending and keeps the first n
func rank(counts map[string]int64, n int) []Ranked {
	out := make([]Ranked, 0, len(counts))
	for k, c := range counts {
		if k == "" {
			continue
		}
		out = append(out, Ranked{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func clampTopN(n int) int {
	if n <= 0 {
		return DefaultTopN
	}
	if n > MaxTopN {
		return MaxTopN
	}
	return n
}

type dailySeries struct {
	start  time.Time
	points []DailyPoint
}

func newDailySeries(p Period) *dailySeries {
	n := p.Days()
	if n < 0 {
		n = 0
	}
	points := make([]DailyPoint, n)
	for i := range points {
		points[i].Date = p.Start.Add(time.Duration(i) * day).Format("2006-01-02")
	}
	return &dailySeries{start: p.Start, points: points}
}

// point returns the bucket for t. Callers only pass times inside the period.
func (d *dailySeries) point(t time.Time) *DailyPoint {
	i := int(t.Sub(d.start) / day)
	if i < 0 || i >= len(d.points) {
		return &DailyPoint{}
	}
	return &d.points[i]
}
