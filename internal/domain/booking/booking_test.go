package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPending(t *testing.T, now time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), now.Add(48*time.Hour), 2, "window seat", now)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	b := newPending(t, now)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "window seat", b.Notes)
	require.Len(t, b.GetDomainEvents(), 1)

	owner := uuid.New()
	_, err := NewBooking(uuid.New(), owner, owner, now.Add(time.Hour), 2, "", now)
	assert.Error(t, err)

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), now, 2, "", now)
	assert.Error(t, err, "scheduled time must be strictly in the future")

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), now.Add(time.Hour), 0, "", now)
	assert.Error(t, err)
	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), now.Add(time.Hour), 51, "", now)
	assert.Error(t, err)
}

func TestBooking_Transitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("confirm then complete after scheduled time", func(t *testing.T) {
		b := newPending(t, now)
		require.NoError(t, b.Confirm("see you"))
		assert.Equal(t, "see you", b.DecisionNote)
		assert.Error(t, b.Confirm(""))

		assert.Error(t, b.Complete(now))
		require.NoError(t, b.Complete(b.ScheduledAt.Add(time.Minute)))
		assert.Equal(t, StatusCompleted, b.Status)
		assert.Error(t, b.Cancel(""))
	})

	t.Run("decline only from pending", func(t *testing.T) {
		b := newPending(t, now)
		require.NoError(t, b.Decline("fully booked"))
		assert.Equal(t, StatusDeclined, b.Status)
		assert.Error(t, b.Cancel(""))
	})

	t.Run("cancel from confirmed", func(t *testing.T) {
		b := newPending(t, now)
		require.NoError(t, b.Confirm(""))
		require.NoError(t, b.Cancel("plans changed"))
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Error(t, b.Complete(b.ScheduledAt.Add(time.Hour)))
	})
}
