package listing

import (
	"errors"
	"testing"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{
		Title:       "  Blue   Door Bakery ",
		Description: "Sourdough and pastries",
		Category:    "bakery  & cafe",
		Tags:        []string{"Bread", "bread ", "coffee"},
		Location:    Location{Address: "1 Main St", City: " Portland "},
		Hours:       Hours{"monday": {Open: "07:00", Close: "15:00"}},
		PriceRange:  PriceRangeMid,
	}
}

func newTestListing(t *testing.T) *Listing {
	t.Helper()
	l, err := NewListing(uuid.New(), validDetails())
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func codeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestNewListing(t *testing.T) {
	t.Run("creates normalized draft", func(t *testing.T) {
		owner := uuid.New()
		l, err := NewListing(owner, validDetails())
		require.NoError(t, err)

		assert.Equal(t, owner, l.OwnerID)
		assert.Equal(t, StatusDraft, l.Status)
		assert.Equal(t, "Blue Door Bakery", l.Title)
		assert.Equal(t, "blue-door-bakery", l.Slug)
		assert.Equal(t, "Bakery & Cafe", l.Category)
		assert.Equal(t, []string{"bread", "coffee"}, l.Tags)
		assert.Equal(t, "Portland", l.Location.City)
		require.Len(t, l.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeListingCreated, l.GetDomainEvents()[0].EventType())
	})

	t.Run("requires owner", func(t *testing.T) {
		_, err := NewListing(uuid.Nil, validDetails())
		assert.Equal(t, "INVALID_OWNER", codeOf(err))
	})

	t.Run("rejects short title", func(t *testing.T) {
		d := validDetails()
		d.Title = "ab"
		_, err := NewListing(uuid.New(), d)
		assert.Equal(t, "INVALID_TITLE", codeOf(err))
	})

	t.Run("rejects bad hours", func(t *testing.T) {
		d := validDetails()
		d.Hours = Hours{"funday": {Open: "09:00", Close: "10:00"}}
		_, err := NewListing(uuid.New(), d)
		assert.Equal(t, "INVALID_HOURS", codeOf(err))

		d.Hours = Hours{"monday": {Open: "9am", Close: "10:00"}}
		_, err = NewListing(uuid.New(), d)
		assert.Equal(t, "INVALID_HOURS", codeOf(err))
	})

	t.Run("rejects half coordinates", func(t *testing.T) {
		d := validDetails()
		lat := 45.5
		d.Location.Latitude = &lat
		_, err := NewListing(uuid.New(), d)
		assert.Equal(t, "INVALID_LOCATION", codeOf(err))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		d := validDetails()
		p := decimal.NewFromInt(-1)
		d.PriceFrom = &p
		_, err := NewListing(uuid.New(), d)
		assert.Equal(t, "INVALID_PRICE", codeOf(err))
	})
}

func TestListing_ModerationFlow(t *testing.T) {
	t.Run("submit approve", func(t *testing.T) {
		l := newTestListing(t)
		require.NoError(t, l.Submit())
		assert.Equal(t, StatusPendingReview, l.Status)

		require.NoError(t, l.Approve())
		assert.Equal(t, StatusActive, l.Status)
		assert.NotNil(t, l.PublishedAt)
		assert.True(t, l.IsPublic())

		events := l.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeListingSubmitted, events[0].EventType())
		assert.Equal(t, EventTypeListingApproved, events[1].EventType())
	})

	t.Run("reject requires reason and allows resubmit", func(t *testing.T) {
		l := newTestListing(t)
		require.NoError(t, l.Submit())

		assert.Equal(t, "REASON_REQUIRED", codeOf(l.Reject("  ")))
		require.NoError(t, l.Reject("Missing photos"))
		assert.Equal(t, StatusRejected, l.Status)
		assert.Equal(t, "Missing photos", l.RejectionReason)

		require.NoError(t, l.Submit())
		assert.Empty(t, l.RejectionReason)
	})

	t.Run("submit requires city", func(t *testing.T) {
		l := newTestListing(t)
		l.Location.City = ""
		err := l.Submit()
		assert.Equal(t, "INCOMPLETE_LISTING", codeOf(err))
		assert.Contains(t, err.Error(), "city")
	})

	t.Run("invalid transitions", func(t *testing.T) {
		l := newTestListing(t)
		assert.Equal(t, "INVALID_STATE", codeOf(l.Approve()))
		assert.Equal(t, "INVALID_STATE", codeOf(l.Reject("x")))
		assert.Equal(t, "INVALID_STATE", codeOf(l.Suspend("x")))
		assert.Equal(t, "INVALID_STATE", codeOf(l.Reinstate()))
	})

	t.Run("suspend clears featured and reinstate restores active", func(t *testing.T) {
		l := newTestListing(t)
		l.Status = StatusActive
		l.Featured = true

		require.NoError(t, l.Suspend("fraud"))
		assert.False(t, l.Featured)
		require.NoError(t, l.Reinstate())
		assert.Equal(t, StatusActive, l.Status)
	})

	t.Run("archive is terminal", func(t *testing.T) {
		l := newTestListing(t)
		require.NoError(t, l.Archive())
		assert.Equal(t, "INVALID_STATE", codeOf(l.Archive()))
		assert.Equal(t, "INVALID_STATE", codeOf(l.Update(validDetails())))
		assert.False(t, l.CountsTowardPlanLimit())
	})
}

func TestListing_Update(t *testing.T) {
	l := newTestListing(t)
	l.Status = StatusActive
	d := validDetails()
	d.Title = "Blue Door Bakery & Cafe"

	require.NoError(t, l.Update(d))
	assert.Equal(t, StatusActive, l.Status)
	assert.Equal(t, "Blue Door Bakery & Cafe", l.Title)
	assert.Equal(t, "blue-door-bakery", l.Slug, "slug is stable across edits")

	l.Status = StatusPendingReview
	assert.Equal(t, "INVALID_STATE", codeOf(l.Update(d)))
}

func TestListing_Featured(t *testing.T) {
	l := newTestListing(t)
	assert.False(t, l.SetFeatured(true), "drafts cannot be featured")

	l.Status = StatusActive
	assert.True(t, l.SetFeatured(true))
	assert.False(t, l.SetFeatured(true))
	assert.True(t, l.SetFeatured(false))
}

func TestListing_Photos(t *testing.T) {
	l := newTestListing(t)
	for i := 0; i < MaxPhotos; i++ {
		require.NoError(t, l.AttachPhoto(uuid.NewString()))
	}
	assert.Equal(t, "TOO_MANY_PHOTOS", codeOf(l.AttachPhoto("one-more")))

	first := l.Photos[0]
	require.NoError(t, l.AttachPhoto(first), "re-attaching is a no-op")
	require.NoError(t, l.RemovePhoto(first))
	assert.Len(t, l.Photos, MaxPhotos-1)
	assert.ErrorIs(t, l.RemovePhoto("missing"), shared.ErrNotFound)
}

func TestListing_ApplyRating(t *testing.T) {
	l := newTestListing(t)
	l.ApplyRating(decimal.RequireFromString("4.3333"), 3)
	assert.Equal(t, "4.33", l.RatingAverage.StringFixed(2))
	assert.Equal(t, 3, l.ReviewCount)

	l.ApplyRating(decimal.NewFromInt(5), 0)
	assert.True(t, l.RatingAverage.IsZero())
	assert.Equal(t, 0, l.ReviewCount)
}
