package builder

import (
	"testing"

	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineAnalyses_Empty(t *testing.T) {
	d := CombineAnalyses(nil)
	assert.Equal(t, "", d.Title)
	assert.Equal(t, 0.0, d.Confidence)
	assert.NotNil(t, d.Tags)
	assert.NotNil(t, d.Hours)
	assert.Empty(t, d.Warnings)
}

func TestCombineAnalyses_Merge(t *testing.T) {
	menu := DocumentAnalysis{
		BusinessName: "Blue Door Bakery",
		Description:  "Bakery.",
		Category:     "bakery",
		Tags:         []string{"Bread", "pastries", " "},
		Hours: listing.Hours{
			"monday":  {Open: "07:00", Close: "15:00"},
			"tuesday": {Open: "07:00", Close: "15:00"},
		},
		Amenities:  []string{"Wi-Fi"},
		Confidence: 0.6,
		Source:     "menu.pdf",
		Warnings:   []string{"low resolution"},
	}
	flyer := DocumentAnalysis{
		BusinessName: "  ",
		Description:  "Neighborhood bakery with sourdough, croissants and coffee.",
		Location:     listing.Location{Address: "12 Oak St", City: "Portland"},
		Contact:      listing.Contact{Phone: "555-0100", Website: "https://bluedoor.example"},
		Tags:         []string{"bread", "Coffee"},
		Hours:        listing.Hours{"monday": {Open: "08:00", Close: "14:00"}, "Saturday": {Closed: true}},
		Amenities:    []string{"wi-fi", "Outdoor seating"},
		PriceRange:   "$$",
		Confidence:   0.9,
		Source:       "flyer.png",
	}
	card := DocumentAnalysis{
		BusinessName: "Blue Door Bakery LLC",
		Category:     "Cafe",
		Contact:      listing.Contact{Phone: "555-0100", Email: "hi@bluedoor.example"},
		Hours:        listing.Hours{"funday": {Open: "01:00", Close: "02:00"}},
		Confidence:   0.6,
		Source:       "card.jpg",
	}

	d := CombineAnalyses([]DocumentAnalysis{menu, flyer, card})

	// flyer (0.9) first, then menu and card keep input order on the 0.6 tie
	assert.Equal(t, []string{"flyer.png", "menu.pdf", "card.jpg"}, d.Sources)

	assert.Equal(t, "Blue Door Bakery", d.Title, "blank flyer name is skipped")
	assert.Equal(t, "Bakery", d.Category)
	assert.Equal(t, "$$", d.PriceRange)
	assert.Equal(t, flyer.Description, d.Description, "longest description wins")

	assert.Equal(t, "12 Oak St", d.Location.Address)
	assert.Equal(t, "Portland", d.Location.City)
	assert.Equal(t, "555-0100", d.Contact.Phone)
	assert.Equal(t, "hi@bluedoor.example", d.Contact.Email)
	assert.Equal(t, "https://bluedoor.example", d.Contact.Website)

	assert.Equal(t, []string{"bread", "Coffee", "pastries"}, d.Tags)
	assert.Equal(t, []string{"wi-fi", "Outdoor seating"}, d.Amenities)

	require.Len(t, d.Hours, 3)
	assert.Equal(t, listing.DayHours{Open: "08:00", Close: "14:00"}, d.Hours["monday"])
	assert.Equal(t, listing.DayHours{Open: "07:00", Close: "15:00"}, d.Hours["tuesday"])
	assert.True(t, d.Hours["saturday"].Closed)

	assert.InDelta(t, 0.7, d.Confidence, 1e-9)
	assert.Equal(t, []string{"conflict:title", "conflict:category", "low resolution"}, d.Warnings)
}

func TestCombineAnalyses_SameValueDifferentCaseIsNotConflict(t *testing.T) {
	d := CombineAnalyses([]DocumentAnalysis{
		{BusinessName: "Joe's Pizza", Confidence: 0.5},
		{BusinessName: "JOE'S PIZZA", Confidence: 0.5},
	})
	assert.Equal(t, "Joe's Pizza", d.Title)
	assert.Empty(t, d.Warnings)
}

func TestCombineAnalyses_DaySpellingsResolveDeterministically(t *testing.T) {
	in := []DocumentAnalysis{{
		Confidence: 0.5,
		Hours: listing.Hours{
			"Monday":   {Open: "10:00", Close: "18:00"},
			"monday":   {Open: "09:00", Close: "17:00"},
			" MONDAY ": {Closed: true},
			"FRIDAY":   {Open: "12:00", Close: "20:00"},
			"Friday":   {Open: "11:00", Close: "19:00"},
		},
	}}
	for i := 0; i < 50; i++ {
		d := CombineAnalyses(in)
		require.Len(t, d.Hours, 2)
		assert.Equal(t, listing.DayHours{Open: "09:00", Close: "17:00"}, d.Hours["monday"])
		assert.Equal(t, listing.DayHours{Open: "12:00", Close: "20:00"}, d.Hours["friday"])
	}
}

func TestCombineAnalyses_ClampsConfidence(t *testing.T) {
	d := CombineAnalyses([]DocumentAnalysis{
		{BusinessName: "A", Confidence: 3},
		{BusinessName: "B", Confidence: -1},
	})
	assert.Equal(t, "A", d.Title)
	assert.InDelta(t, 0.5, d.Confidence, 1e-9)
}

func TestCombineAnalyses_DoesNotMutateInput(t *testing.T) {
	in := []DocumentAnalysis{{Source: "a", Confidence: 0.1}, {Source: "b", Confidence: 0.9}}
	CombineAnalyses(in)
	assert.Equal(t, "a", in[0].Source)
}

func TestListingDraft_ToDetails(t *testing.T) {
	d := ListingDraft{
		Title:      "Blue Door",
		PriceRange: "cheap",
		Hours: listing.Hours{
			"monday":  {Open: "08:00", Close: "14:00"},
			"tuesday": {Open: "8am", Close: "2pm"},
		},
	}
	details := d.ToDetails()
	assert.Equal(t, listing.PriceRangeUnknown, details.PriceRange)
	assert.Len(t, details.Hours, 1)
	assert.Contains(t, details.Hours, "monday")
}
