package review

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	listingID, authorID := uuid.New(), uuid.New()

	t.Run("valid review is published", func(t *testing.T) {
		r, err := NewReview(listingID, authorID, 4, " Great ", "Lovely staff and quick service")
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, r.Status)
		assert.Equal(t, "Great", r.Title)
		assert.True(t, r.IsAuthoredBy(authorID))
		require.Len(t, r.GetDomainEvents(), 1)
		ev := r.GetDomainEvents()[0].(*ReviewEvent)
		assert.Equal(t, listingID, ev.ListingID)
	})

	for _, rating := range []int{0, 6, -1} {
		_, err := NewReview(listingID, authorID, rating, "", "Lovely staff and quick service")
		assert.Error(t, err, "rating %d", rating)
	}

	_, err := NewReview(listingID, authorID, 5, "", "too short")
	assert.Error(t, err)

	_, err = NewReview(listingID, authorID, 5, "", strings.Repeat("x", maxContentLength+1))
	assert.Error(t, err)
}

func TestReview_EditHideRespond(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), 3, "", "It was fine, nothing special")
	require.NoError(t, err)
	r.ClearDomainEvents()

	require.NoError(t, r.Edit(5, "Changed my mind", "Went back and it was excellent"))
	assert.Equal(t, 5, r.Rating)

	assert.Error(t, r.Respond("  "))
	require.NoError(t, r.Respond("Thanks for coming back!"))
	require.NotNil(t, r.OwnerResponse)
	assert.Equal(t, "Thanks for coming back!", r.OwnerResponse.Content)

	require.NoError(t, r.Hide())
	assert.False(t, r.IsPublished())
	assert.Error(t, r.Hide())
	assert.Error(t, r.Edit(4, "", "Trying to edit a hidden review"))

	types := []string{}
	for _, e := range r.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{EventTypeReviewUpdated, EventTypeReviewHidden}, types)
}
