package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollup(t *testing.T) {
	date := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	a := uuid.New()
	at := date.Add(5 * time.Hour)

	events := []Event{
		pageView("/", "v1", at),
		pageView("/", "v2", at),
		listingView(a, "v1", "", at),
		listingView(a, "v1", "", at),
		search("pizza", "v3", at),
		pageView("/", "v4", date.Add(25*time.Hour)), // next day
	}

	stats := Rollup(date, events)
	require.Len(t, stats, 2)

	site := stats[0]
	assert.Nil(t, site.ListingID)
	assert.Equal(t, int64(2), site.PageViews)
	assert.Equal(t, int64(2), site.ListingViews)
	assert.Equal(t, int64(1), site.Searches)
	assert.Equal(t, int64(3), site.UniqueVisitors)

	row := stats[1]
	require.NotNil(t, row.ListingID)
	assert.Equal(t, a, *row.ListingID)
	assert.Equal(t, int64(2), row.ListingViews)
	assert.Equal(t, int64(1), row.UniqueVisitors)
}

func TestSummaryFromDaily(t *testing.T) {
	period, err := CustomPeriod(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	a := uuid.New()
	d1 := period.Start
	d2 := period.Start.Add(24 * time.Hour)
	prevDay := period.Previous().Start

	current := []DailyStat{
		{Date: d1, PageViews: 10, ListingViews: 4, Searches: 2, UniqueVisitors: 5},
		{Date: d2, PageViews: 6, ListingViews: 2, Searches: 0, UniqueVisitors: 3},
		{Date: d1, ListingID: &a, ListingViews: 4, UniqueVisitors: 2},
		{Date: d2, ListingID: &a, ListingViews: 1, UniqueVisitors: 1},
	}
	previous := []DailyStat{
		{Date: prevDay, PageViews: 8, ListingViews: 3, Searches: 2, UniqueVisitors: 4},
		{Date: prevDay, ListingID: &a, ListingViews: 5, UniqueVisitors: 4},
	}

	site := SummaryFromDaily(period, current, previous, Options{})
	assert.Equal(t, Totals{PageViews: 16, ListingViews: 6, Searches: 2, UniqueVisitors: 8}, site.Totals)
	assert.Equal(t, 100.0, site.Changes.PageViews)
	assert.Equal(t, []Ranked{{Key: a.String(), Count: 5}}, site.TopListings)
	assert.Equal(t, int64(10), site.Daily[0].PageViews)

	owner := SummaryFromDaily(period, current[2:], previous[1:], Options{ListingScoped: true})
	assert.Equal(t, int64(5), owner.Totals.ListingViews)
	assert.Equal(t, int64(0), owner.Totals.PageViews)
	assert.Equal(t, 0.0, owner.Changes.ListingViews)
	assert.Equal(t, int64(4), owner.Daily[0].ListingViews)
}
