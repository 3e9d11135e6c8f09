package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DailyStat is a rolled-up day of events. ListingID is nil for the site-wide row.
type DailyStat struct {
	Date           time.Time
	ListingID      *uuid.UUID
	PageViews      int64
	ListingViews   int64
	Searches       int64
	UniqueVisitors int64
}

// Rollup condenses one day of events into a site-wide row plus one row per viewed listing
func Rollup(date time.Time, events []Event) []DailyStat {
	date = truncateDay(date)
	window := Period{Start: date, End: date.Add(day)}
	events = dedupe(events, window)

	site := DailyStat{Date: date}
	siteVisitors := make(map[string]struct{})
	perListing := make(map[uuid.UUID]*DailyStat)
	listingVisitors := make(map[uuid.UUID]map[string]struct{})

	for _, e := range events {
		if e.VisitorID != "" {
			siteVisitors[e.VisitorID] = struct{}{}
		}
		switch e.Type {
		case EventPageView:
			site.PageViews++
		case EventSearch:
			site.Searches++
		case EventListingView:
			site.ListingViews++
			id := *e.ListingID
			row, ok := perListing[id]
			if !ok {
				lid := id
				row = &DailyStat{Date: date, ListingID: &lid}
				perListing[id] = row
				listingVisitors[id] = make(map[string]struct{})
			}
			row.ListingViews++
			if e.VisitorID != "" {
				listingVisitors[id][e.VisitorID] = struct{}{}
			}
		}
	}
	site.UniqueVisitors = int64(len(siteVisitors))

	out := make([]DailyStat, 0, len(perListing)+1)
	out = append(out, site)
	ids := make([]uuid.UUID, 0, len(perListing))
	for id := range perListing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		row := perListing[id]
		row.UniqueVisitors = int64(len(listingVisitors[id]))
		out = append(out, *row)
	}
	return out
}

// SummaryFromDaily builds a summary from rolled-up rows. Page and search
// rankings are not kept by the rollup, and unique visitors are summed per day.
// With opts.ListingScoped the totals come from per-listing rows instead of the site row.
func SummaryFromDaily(period Period, current, previous []DailyStat, opts Options) Summary {
	topN := clampTopN(opts.TopN)
	daily := newDailySeries(period)
	listings := make(map[string]int64)

	var totals Totals
	for _, s := range current {
		if !period.Contains(s.Date) {
			continue
		}
		if s.ListingID != nil {
			listings[s.ListingID.String()] += s.ListingViews
		}
		if (s.ListingID != nil) != opts.ListingScoped {
			continue
		}
		p := daily.point(s.Date)
		p.PageViews += s.PageViews
		p.ListingViews += s.ListingViews
		p.Searches += s.Searches
		totals.PageViews += s.PageViews
		totals.ListingViews += s.ListingViews
		totals.Searches += s.Searches
		totals.UniqueVisitors += s.UniqueVisitors
	}

	prev := DailyTotals(period.Previous(), previous, opts.ListingScoped)

	return Summary{
		Period:      period,
		Totals:      totals,
		Previous:    prev,
		Changes:     compare(totals, prev),
		TopPages:    []Ranked{},
		TopListings: rank(listings, topN),
		TopSearches: []Ranked{},
		Daily:       daily.points,
	}
}

// DailyTotals sums rolled-up rows inside window. listingScoped selects the
// per-listing rows instead of the site row.
func DailyTotals(window Period, rows []DailyStat, listingScoped bool) Totals {
	var t Totals
	for _, s := range rows {
		if (s.ListingID != nil) != listingScoped || !window.Contains(s.Date) {
			continue
		}
		t.PageViews += s.PageViews
		t.ListingViews += s.ListingViews
		t.Searches += s.Searches
		t.UniqueVisitors += s.UniqueVisitors
	}
	return t
}
