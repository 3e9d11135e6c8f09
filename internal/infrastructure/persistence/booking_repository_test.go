package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/domain/booking"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBookingRepository(t *testing.T) {
	repo := NewGormBookingRepository(newSQLiteDB(t))
	ctx := context.Background()
	listingID, customer, owner := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	later, err := booking.NewBooking(listingID, customer, owner, now.Add(72*time.Hour), 2, "", now)
	require.NoError(t, err)
	sooner, err := booking.NewBooking(listingID, customer, owner, now.Add(24*time.Hour), 4, "window seat", now)
	require.NoError(t, err)
	other, err := booking.NewBooking(uuid.New(), uuid.New(), uuid.New(), now.Add(48*time.Hour), 1, "", now)
	require.NoError(t, err)
	for _, b := range []*booking.Booking{later, sooner, other} {
		require.NoError(t, repo.Create(ctx, b))
	}

	items, total, err := repo.List(ctx, booking.ListFilter{OwnerID: &owner})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, sooner.ID, items[0].ID)
	assert.Equal(t, "window seat", items[0].Notes)

	require.NoError(t, later.Confirm("see you then"))
	require.NoError(t, repo.Update(ctx, later))

	confirmed := booking.StatusConfirmed
	items, total, err = repo.List(ctx, booking.ListFilter{CustomerID: &customer, Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, later.ID, items[0].ID)

	found, err := repo.FindByID(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, found.Status)
	assert.Equal(t, 2, found.PartySize)
}
