package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("EST", -5*3600))
	listingID := uuid.New()
	userID := uuid.New()

	t.Run("page view requires path", func(t *testing.T) {
		_, err := NewEvent(EventPageView, " ", nil, "", "v1", nil, "", at)
		assert.Error(t, err)

		e, err := NewEvent(EventPageView, "/listings", nil, "", "v1", nil, "", at)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, e.OccurredAt.Location())
	})

	t.Run("listing view requires listing", func(t *testing.T) {
		_, err := NewEvent(EventListingView, "", nil, "", "v1", nil, "", at)
		assert.Error(t, err)

		nilID := uuid.Nil
		_, err = NewEvent(EventListingView, "", &nilID, "", "v1", nil, "", at)
		assert.Error(t, err)

		e, err := NewEvent(EventListingView, "", &listingID, " Tacos ", "v1", nil, "", at)
		require.NoError(t, err)
		assert.Equal(t, "tacos", e.Query)
	})

	t.Run("search requires query", func(t *testing.T) {
		_, err := NewEvent(EventSearch, "", nil, "   ", "v1", nil, "", at)
		assert.Error(t, err)
	})

	t.Run("visitor falls back to user", func(t *testing.T) {
		e, err := NewEvent(EventSearch, "", nil, "coffee", "", &userID, "", at)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), e.VisitorID)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewEvent("click", "/", nil, "", "v1", nil, "", at)
		assert.Error(t, err)
	})
}
